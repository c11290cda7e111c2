// Package virtio is a probe-only collaborator stub for the virtio-mmio
// block device at memlayout.VIRTIO0. spec.md's non-goals exclude a
// filesystem and any block I/O path, so this package implements exactly
// the part original_source/src/disk.rs shows above the layer this kernel
// doesn't build: read the device's magic/version/device-id registers
// enough to recognize a real virtio block device is present, and fail
// loudly if one ever raises the interrupt this kernel has no driver for.
package virtio

import (
	"fmt"

	"rv6/internal/memlayout"
	"rv6/internal/mmio"
)

const (
	regMagic      = 0x000
	regVersion    = 0x004
	regDeviceID   = 0x008
	magicValue    = 0x74726976 // "virt" little-endian
	blockDeviceID = 2
)

func reg(offset uint64) uint64 { return memlayout.VIRTIO0 + offset }

// Probe reads the virtio-mmio header and reports whether a block device
// is present, without touching any queue or issuing any request — this
// kernel has no block I/O path to drive one.
func Probe() bool {
	if mmio.ReadU32Fn(reg(regMagic)) != magicValue {
		return false
	}
	if mmio.ReadU32Fn(reg(regVersion)) == 0 {
		return false
	}
	return mmio.ReadU32Fn(reg(regDeviceID)) == blockDeviceID
}

// HandleInterrupt is installed for VIRTIO0's PLIC source but this kernel
// has no block I/O path to service it with; its only job is to fail
// loudly rather than silently drop the interrupt, matching spec.md's
// "unrecognized source" panic discipline for interrupt_handler.
func HandleInterrupt() {
	panic(fmt.Sprintf("virtio: unhandled interrupt on irq %d; no block I/O driver is implemented", memlayout.VIRTIO0IRQ))
}
