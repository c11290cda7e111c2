package proc

// Cpu holds per-hart state: the process currently running on this hart
// (if any), the scheduler's own context for this hart, and the nested
// interrupt-disable bookkeeping push_off/pop_off maintain. Grounded on
// spec.md §3/§5 and biscuit's convention of one small mutable struct per
// CPU indexed by a runtime CPU hint.
type Cpu struct {
	Proc *Proc
	Ctx  Context

	// interruptBase records whether supervisor interrupts were already
	// enabled when the outermost push_off began.
	interruptBase bool
	// pushCount is the nesting depth of push_off calls still
	// outstanding. Invariant (spec.md §3): pushCount > 0 implies
	// supervisor interrupts are disabled.
	pushCount int
}

// PushOff disables supervisor interrupts, remembering the prior
// enabled/disabled state on the first (outermost) call so the matching
// PopOff sequence can restore it. This is the locking discipline
// spec.md §5 requires before taking any spinlock from code that might
// run in interrupt-adjacent context.
func (c *Cpu) PushOff() {
	wasEnabled := interruptsEnabledFn()
	setInterruptsEnabledFn(false)
	if c.pushCount == 0 {
		c.interruptBase = wasEnabled
	}
	c.pushCount++
}

// PopOff reverses one PushOff. It panics if interrupts are currently
// enabled (PushOff/PopOff must bracket a region with interrupts off
// throughout) or if called with no matching PushOff outstanding.
func (c *Cpu) PopOff() {
	if interruptsEnabledFn() {
		panic("pop_off: interrupts enabled")
	}
	if c.pushCount == 0 {
		panic("pop_off: not locked")
	}
	c.pushCount--
	if c.pushCount == 0 && c.interruptBase {
		setInterruptsEnabledFn(true)
	}
}

// interruptsEnabledFn and setInterruptsEnabledFn indirect every sstatus.SIE
// access through package-level variables instead of calling into
// internal/riscv directly, the same seam gopheros/kernel/mm/vmm uses for
// its CSR-adjacent page-table helpers (ptePtrFn, nextAddrFn in map.go):
// the riscv64 build supplies the real CSR-backed functions (see
// cpu_riscv64.go), and scheduler_test.go supplies a fake so push_off/
// pop_off can be exercised on any host.
var (
	interruptsEnabledFn    = func() bool { panic("proc: no interrupt backend installed for this GOARCH") }
	setInterruptsEnabledFn = func(on bool) { panic("proc: no interrupt backend installed for this GOARCH") }
)
