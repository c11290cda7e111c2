// Package mmio provides the raw memory-mapped register load/store primitive
// every device driver in this kernel (PLIC, UART, the virtio probe) builds
// on. No third-party package in the example pack targets bare MMIO on a
// RISC-V "virt" platform the way usbarmory/tamago's internal/reg package
// does for ARM SoCs — tamago is wired to a specific family of ARM/i.MX
// boards and has no RISC-V backend — so this is one of the few corners of
// the kernel implemented directly on unsafe.Pointer rather than an
// imported register-access library. See DESIGN.md.
package mmio

import "unsafe"

// ReadU32Fn and WriteU32Fn indirect every register access through
// package-level variables, mirroring gopheros/device/video/console's
// portWriteByteFn seam: production code calls through them unconditionally,
// and tests substitute a fake backing store so driver logic is exercised
// without real hardware.
var (
	ReadU32Fn  = volatileLoad32
	WriteU32Fn = volatileStore32
)

func volatileLoad32(addr uint64) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

func volatileStore32(addr uint64, v uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = v
}
