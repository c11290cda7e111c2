// Package memlayout describes the physical and virtual address map of the
// QEMU "virt" machine this kernel targets, grounded on
// original_source/src/memorylayout.rs.
package memlayout

import "rv6/internal/riscv"

const (
	// UART0 is the NS16550-compatible console's MMIO base.
	UART0    = 0x1000_0000
	UART0IRQ = 10

	// VIRTIO0 is the virtio-mmio block device's register header.
	VIRTIO0    = 0x1000_1000
	VIRTIO0IRQ = 1

	// CLINT is the core-local interruptor, source of mtime/mtimecmp.
	CLINT      = 0x0200_0000
	clintMtime = CLINT + 0xbff8
)

// ClintMtimecmp returns the address of the per-hart mtimecmp register.
func ClintMtimecmp(hart uint64) uint64 { return CLINT + 0x4000 + 8*hart }

const (
	// PLICBase is the Platform-Level Interrupt Controller's MMIO base.
	PLICBase      = 0x0c00_0000
	plicWindow    = 0x0040_0000 // 4 MiB
	plicPriority  = PLICBase
	plicPending   = PLICBase + 0x1000
	plicEnable    = PLICBase + 0x2000
	plicThreshold = PLICBase + 0x20_0000
	plicClaim     = PLICBase + 0x20_0004
)

// PlicPriorityAddr returns the address of irq's priority register.
func PlicPriorityAddr(irq uint64) uint64 { return plicPriority + 4*irq }

// PlicEnableAddr returns the address of the enable-bit word for
// (hart, ctx, irq).
func PlicEnableAddr(hart uint64, ctx uint64, irq uint64) uint64 {
	return plicEnable + hart*0x100 + ctx*0x80 + (irq/32)*4
}

// PlicThresholdAddr returns the address of the priority threshold register
// for (hart, ctx).
func PlicThresholdAddr(hart, ctx uint64) uint64 {
	return plicThreshold + hart*0x2000 + ctx*0x1000
}

// PlicClaimAddr returns the address of the claim/complete register for
// (hart, ctx).
func PlicClaimAddr(hart, ctx uint64) uint64 {
	return plicClaim + hart*0x2000 + ctx*0x1000
}

// PLIC contexts: one per (hart, privilege level) pair the PLIC multiplexes.
const (
	PlicContextMachine    = 0
	PlicContextSupervisor = 1
)

const (
	// KernelBase is where QEMU's boot ROM jumps into -kernel-loaded code,
	// and where kernel text/data/heap begin.
	KernelBase = 0x8000_0000
	// PhysTop bounds usable physical RAM; 128 MiB matches the teacher's
	// default QEMU "virt" memory size.
	PhysTop = KernelBase + 128*1024*1024
)

// Trampoline sits at the top of the virtual address space in both the
// kernel and every user page table, so it stays executable across the
// satp switch on trap entry/exit.
const Trampoline = riscv.MaxVA - riscv.PageSize

// Trapframe sits directly below the trampoline in each user page table.
const Trapframe = Trampoline - riscv.PageSize

// Kstack returns the kernel-stack virtual address for process slot i,
// below the trampoline with a guard page beneath each stack.
func Kstack(i int) uint64 {
	return Trampoline - uint64(i+1)*2*riscv.PageSize
}
