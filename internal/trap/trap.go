// Package trap implements the supervisor trap pipeline: kerneltrap (traps
// taken while already in the kernel), usertrap/usertrapret (the user↔
// kernel boundary reached via the trampoline), and the shared
// interrupt_handler dispatch both paths funnel through. Grounded on
// original_source/src/trap.rs; kernelvec/uservec/userret themselves are
// assembly collaborators per spec.md §1 and are not implemented here.
package trap

import (
	"fmt"
	"sync"

	"rv6/internal/memlayout"
	"rv6/internal/plic"
	"rv6/internal/proc"
	"rv6/internal/riscv"
	"rv6/internal/stats"
	"rv6/internal/uart"
	"rv6/internal/virtio"
	"rv6/internal/vm"
)

var (
	tickMu sync.Mutex
	ticks  uint64
)

// tick increments the global tick counter under its own lock, matching
// original_source's lazy_static Mutex<u64>. Only hart 0 calls this, per
// spec.md §4.3, but the lock keeps the counter safe to read from anywhere.
func tick() {
	tickMu.Lock()
	ticks++
	tickMu.Unlock()
}

// Ticks returns the current tick count.
func Ticks() uint64 {
	tickMu.Lock()
	defer tickMu.Unlock()
	return ticks
}

// clearSoftwarePendingFn indirects the sip CSR write that re-arms the
// supervisor software interrupt, the same seam internal/proc/cpu.go and
// internal/mmio use: a host build never needs the real CSR access to
// exercise HandleSoftwareInterrupt's tick-counting behavior.
var clearSoftwarePendingFn = func() { panic("trap: no interrupt backend installed for this GOARCH") }

// HandleExternalInterrupt claims this hart's highest-priority pending PLIC
// interrupt and dispatches it: UART0 to the console driver, VIRTIO0 to the
// (unimplemented) block driver, anything else is ignored. It always
// completes a nonzero claim. Grounded on trap.rs's handle_external_interrupt.
func HandleExternalInterrupt(hart uint64) {
	stats.Counters.ExternalInterrupts.Inc()
	irq := plic.GetClaim(hart, plic.ContextSupervisor)
	switch irq {
	case memlayout.UART0IRQ:
		uart.HandleInterrupt()
	case memlayout.VIRTIO0IRQ:
		virtio.HandleInterrupt()
	case 0:
		// nothing pending
	default:
		// unrecognized source: ignored, per spec.md §4.3
	}
	if irq != 0 {
		plic.SetComplete(hart, plic.ContextSupervisor, irq)
	}
}

// HandleSoftwareInterrupt increments the tick counter (hart 0 only, the
// sole owner of wall-clock bookkeeping) and clears the pending bit so the
// same interrupt is not redelivered.
func HandleSoftwareInterrupt(hart uint64) {
	stats.Counters.SoftwareInterrupts.Inc()
	if hart == 0 {
		tick()
	}
	clearSoftwarePendingFn()
}

// InterruptHandler dispatches a trap already known to be an interrupt
// (isInterrupt) with the given scause code, and reports whether it was
// the supervisor-software source — kerneltrap/usertrap use that to decide
// whether to yield. Taking the decoded cause rather than reading scause
// itself keeps this function's dispatch logic host-testable. An
// unrecognized interrupt code is fatal, matching spec.md's panic
// discipline for unhandled conditions.
func InterruptHandler(hart uint64, isInterrupt bool, code uint64) (wasSoftware bool) {
	if !isInterrupt {
		return false
	}
	switch riscv.Interrupt(code) {
	case riscv.SupervisorExternal:
		HandleExternalInterrupt(hart)
	case riscv.SupervisorSoftware:
		HandleSoftwareInterrupt(hart)
		return true
	default:
		panic(fmt.Sprintf("interrupt_handler: unrecognized interrupt code %d", code))
	}
	return false
}

// KernelTrap handles a trap taken while already running in supervisor
// mode: it asserts the trap arrived from supervisor mode with interrupts
// disabled (kernelvec is only ever entered that way), dispatches via
// InterruptHandler, and yields the current hart's process if the cause
// was the software interrupt that drives cooperative scheduling.
// Grounded on trap.rs's kerneltrap; sepc/sstatus are saved on entry and
// restored before returning, since handling may nest.
func KernelTrap(cpu *proc.Cpu) {
	savedSepc := riscv.ReadSepc()
	savedSstatus := riscv.ReadSstatus()

	if savedSstatus.PrevMode() != riscv.SupervisorMode {
		panic("kerneltrap: not from supervisor mode")
	}
	if savedSstatus.InterruptsEnabled() {
		panic("kerneltrap: interrupts enabled")
	}

	scause := riscv.ReadScause()
	wasSoftware := InterruptHandler(riscv.Tp(), scause.IsInterrupt(), scause.Code())

	if wasSoftware && cpu.Proc != nil && cpu.Proc.State == proc.Running {
		proc.YieldProc(cpu)
	}

	// Restore, since handling a nested trap (e.g. an interrupt serviced
	// while this one was in progress) may have clobbered sepc/sstatus.
	riscv.WriteSepc(savedSepc)
	savedSstatus.Write()
}

// UserTrap handles a trap reached via the trampoline from user mode: it
// asserts the trap came from user mode, records the faulting pc into the
// trapframe, then either dispatches an interrupt (yielding on the
// software source) or, for an ECALL from U-mode, advances past the ecall
// instruction and re-enables interrupts before invoking the syscall
// dispatcher passed in via syscallFn (internal/syscall.Dispatch — taken as
// a parameter to avoid an import cycle, since internal/syscall already
// depends on internal/proc and internal/vm). Any other exception is fatal.
// Grounded on trap.rs and spec.md §4.3's usertrap description; stvec is
// pointed back at kernelvec on entry, and every handled trap ends with
// UserTrapRet.
func UserTrap(cpu *proc.Cpu, k *vm.Kernel, syscallFn func(*vm.Kernel, *proc.Proc)) {
	p := cpu.Proc
	if p == nil {
		panic("usertrap: no current process")
	}

	sstatus := riscv.ReadSstatus()
	if sstatus.PrevMode() != riscv.UserMode {
		panic("usertrap: not from user mode")
	}

	riscv.WriteStvec(kernelvecAddr())
	p.Trapframe.SetEPC(riscv.ReadSepc())

	scause := riscv.ReadScause()
	if scause.IsInterrupt() {
		if InterruptHandler(riscv.Tp(), true, scause.Code()) {
			proc.YieldProc(cpu)
		}
		UserTrapRet(p)
		return
	}

	if riscv.Exception(scause.Code()) == riscv.EnvironmentCallFromUMode {
		p.Trapframe.SetEPC(p.Trapframe.EPC() + 4)
		enableInterruptsFn()
		syscallFn(k, p)
		UserTrapRet(p)
		return
	}

	panic(fmt.Sprintf("usertrap: unhandled exception code %d", scause.Code()))
}

// UserTrapRet prepares p's trapframe and CSR state for the return to user
// mode and jumps into the trampoline's userret entry. Grounded on
// trap.rs/spec.md §4.3's usertrapret: disable interrupts, point stvec back
// at uservec, populate the trapframe's kernel-side fields, clear SPP
// (return to user mode) and set SPIE, write sepc from the trapframe's
// saved epc, then hand off to userret(TRAPFRAME, user_satp).
//
// jumpToUserretFn is the final, never-returning handoff into the
// trampoline; on riscv64 this package's own init (trap_riscv64.go) wires
// it to the assembly stub callUserret, since Go has no way to express
// "jump to this address with these two arguments and never return"
// portably.
func UserTrapRet(p *proc.Proc) {
	disableInterruptsFn()
	riscv.WriteStvec(uservecAddr())

	p.Trapframe.SetKernelSATP(kernelSatpValue)
	p.Trapframe.SetKernelSP(p.KStackVA + riscv.PageSize)
	p.Trapframe.SetKernelTrap(userTrapEntryAddr)
	p.Trapframe.SetKernelHartid(riscv.Tp())

	sstatus := riscv.ReadSstatus()
	sstatus.SetPrevMode(riscv.UserMode)
	sstatus.SetPrevInterruptsEnabled(true)
	sstatus.Write()

	riscv.WriteSepc(p.Trapframe.EPC())

	userSatp := riscv.MakeSv39Satp(uint64(p.PageTablePA)).Bits()
	jumpToUserretFn(uint64(memlayout.Trapframe), userSatp)
}

// kernelvecAddr, uservecAddr, kernelSatpValue, and userTrapEntryAddr are
// boot-seeded values: the linked addresses of kernelvec/uservec, the
// kernel's own satp value, and the address usertrap's trampoline entry
// stub jumps to. cmd/kernel sets each exactly once before releasing any
// hart into the scheduler.
var (
	kernelvecAddrValue uint64
	uservecAddrValue   uint64
	kernelSatpValue    uint64
	userTrapEntryAddr  uint64
)

func kernelvecAddr() uint64 { return kernelvecAddrValue }
func uservecAddr() uint64   { return uservecAddrValue }

// SetKernelvecAddr records kernelvec's linked address; called once during
// boot (cmd/kernel) before any trap can occur.
func SetKernelvecAddr(addr uint64) { kernelvecAddrValue = addr }

// SetUservecAddr records uservec's linked address within the trampoline.
func SetUservecAddr(addr uint64) { uservecAddrValue = addr }

// SetKernelSatp records the kernel's own satp value, installed into every
// process's trapframe so uservec can restore it on the next trap in.
func SetKernelSatp(satp uint64) { kernelSatpValue = satp }

// SetUserTrapEntryAddr records the address of the entry function uservec
// jumps to on trap entry, which in turn calls UserTrap.
func SetUserTrapEntryAddr(addr uint64) { userTrapEntryAddr = addr }

var enableInterruptsFn = func() { panic("trap: no interrupt backend installed for this GOARCH") }
var disableInterruptsFn = func() { panic("trap: no interrupt backend installed for this GOARCH") }

// jumpToUserretFn hands control to the trampoline's userret entry with
// (TRAPFRAME, user_satp) as its two arguments; implemented in
// usertrapret_riscv64.s, since it ends in sret and never returns to Go.
var jumpToUserretFn = func(trapframeVA, userSatp uint64) {
	panic("trap: no interrupt backend installed for this GOARCH")
}
