// Package plic drives the Platform-Level Interrupt Controller: per-IRQ
// priority, per-(hart,context) enable bits and threshold, and the
// claim/complete handshake the trap path uses to learn which device
// raised a SupervisorExternal interrupt. Grounded on
// original_source/src/plic.rs, with address arithmetic taken from
// internal/memlayout rather than re-derived here.
package plic

import (
	"fmt"

	"rv6/internal/memlayout"
	"rv6/internal/mmio"
	"rv6/internal/riscv"
)

// Context selects which privilege level's enable/threshold/claim window a
// call addresses; the PLIC multiplexes a separate register set per
// (hart, context).
type Context uint64

const (
	ContextMachine    Context = memlayout.PlicContextMachine
	ContextSupervisor Context = memlayout.PlicContextSupervisor
)

// SetPriority sets irq's global priority; priority 0 disables the source
// regardless of its enable bit.
func SetPriority(irq uint64, priority uint32) {
	mmio.WriteU32Fn(memlayout.PlicPriorityAddr(irq), priority)
}

// SetEnable enables irq for (hart, ctx), leaving every other bit in the
// enable word untouched.
func SetEnable(hart uint64, ctx Context, irq uint64) {
	if irq >= riscv.MaxInterrupt {
		panic(fmt.Sprintf("plic: irq %d out of range", irq))
	}
	addr := memlayout.PlicEnableAddr(hart, uint64(ctx), irq)
	v := mmio.ReadU32Fn(addr)
	mmio.WriteU32Fn(addr, v|(1<<(irq%32)))
}

// SetDisable clears irq's enable bit for (hart, ctx).
func SetDisable(hart uint64, ctx Context, irq uint64) {
	if irq >= riscv.MaxInterrupt {
		panic(fmt.Sprintf("plic: irq %d out of range", irq))
	}
	addr := memlayout.PlicEnableAddr(hart, uint64(ctx), irq)
	v := mmio.ReadU32Fn(addr)
	mmio.WriteU32Fn(addr, v&^(1<<(irq%32)))
}

// SetThreshold sets the priority threshold below which (hart, ctx) will
// not be interrupted.
func SetThreshold(hart uint64, ctx Context, threshold uint32) {
	mmio.WriteU32Fn(memlayout.PlicThresholdAddr(hart, uint64(ctx)), threshold)
}

// GetClaim returns the id of the highest-priority pending interrupt for
// (hart, ctx), or 0 if none is pending, and implicitly marks it as
// claimed (in-service) until SetComplete is called.
func GetClaim(hart uint64, ctx Context) uint32 {
	return mmio.ReadU32Fn(memlayout.PlicClaimAddr(hart, uint64(ctx)))
}

// SetComplete signals that this hart has finished servicing irq,
// re-arming it for future claims.
func SetComplete(hart uint64, ctx Context, irq uint32) {
	if uint64(irq) >= riscv.MaxInterrupt {
		panic(fmt.Sprintf("plic: irq %d out of range", irq))
	}
	mmio.WriteU32Fn(memlayout.PlicClaimAddr(hart, uint64(ctx)), irq)
}

// Init sets the global priority of every IRQ source this kernel knows
// about. Called once, from hart 0, before any hart enables interrupts.
func Init() {
	SetPriority(memlayout.UART0IRQ, 1)
	SetPriority(memlayout.VIRTIO0IRQ, 1)
}

// InitHart enables this kernel's IRQ sources for the calling hart's
// supervisor context and sets its threshold to 0 (accept every nonzero
// priority). Called once per hart, after Init has run on hart 0.
func InitHart(hart uint64) {
	SetEnable(hart, ContextSupervisor, memlayout.UART0IRQ)
	SetEnable(hart, ContextSupervisor, memlayout.VIRTIO0IRQ)
	SetThreshold(hart, ContextSupervisor, 0)
}
