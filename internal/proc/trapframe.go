// Package proc implements the process table, per-process trapframe and
// context, the per-hart Cpu state, and the round-robin scheduler.
// Grounded on original_source/src/proc_util.rs (TrapFrame/Context field
// layout), src/proc.rs and src/scheduler.rs (process/scheduler shape),
// and biscuit's habit of pairing a raw fixed-layout type with named
// accessor methods (mem.Pmap_t, mem.Pg_t in mem/mem.go).
package proc

// TrapFrame is the fixed-layout per-process record the trampoline
// assembly reads and writes directly via sscratch. Its field order is
// contract with uservec/userret and must never change: kernel_satp,
// kernel_sp, kernel_trap, epc, kernel_hartid, then the 31 user GPRs in
// the exact order original_source's proc_util.rs declares them.
type TrapFrame [36]uint64

const (
	tfKernelSATP = iota
	tfKernelSP
	tfKernelTrap
	tfEPC
	tfKernelHartid
	tfRA
	tfSP
	tfGP
	tfTP
	tfT0
	tfT1
	tfT2
	tfS0
	tfS1
	tfA0
	tfA1
	tfA2
	tfA3
	tfA4
	tfA5
	tfA6
	tfA7
	tfS2
	tfS3
	tfS4
	tfS5
	tfS6
	tfS7
	tfS8
	tfS9
	tfS10
	tfS11
	tfT3
	tfT4
)

// The struct is sized for 34 fields above plus t5, t6 which follow t4;
// add them explicitly since iota above stops at tfT4 for readability.
const (
	tfT5 = tfT4 + 1
	tfT6 = tfT4 + 2
)

func (tf *TrapFrame) KernelSATP() uint64       { return tf[tfKernelSATP] }
func (tf *TrapFrame) SetKernelSATP(v uint64)   { tf[tfKernelSATP] = v }
func (tf *TrapFrame) KernelSP() uint64         { return tf[tfKernelSP] }
func (tf *TrapFrame) SetKernelSP(v uint64)     { tf[tfKernelSP] = v }
func (tf *TrapFrame) KernelTrap() uint64       { return tf[tfKernelTrap] }
func (tf *TrapFrame) SetKernelTrap(v uint64)   { tf[tfKernelTrap] = v }
func (tf *TrapFrame) EPC() uint64              { return tf[tfEPC] }
func (tf *TrapFrame) SetEPC(v uint64)          { tf[tfEPC] = v }
func (tf *TrapFrame) KernelHartid() uint64     { return tf[tfKernelHartid] }
func (tf *TrapFrame) SetKernelHartid(v uint64) { tf[tfKernelHartid] = v }

func (tf *TrapFrame) SP() uint64     { return tf[tfSP] }
func (tf *TrapFrame) SetSP(v uint64) { tf[tfSP] = v }

// A0..A5 back get_arg's argument registers (spec.md §4.6).
func (tf *TrapFrame) Arg(i int) uint64 {
	if i < 0 || i > 5 {
		panic("proc: arg index out of range")
	}
	return tf[tfA0+i]
}

// SetArg writes one of the six argument registers; callers (mainly
// tests driving a syscall path without a real ecall) use it to stage a0..a5
// before dispatch the same way a trampoline-entered usertrap would find them.
func (tf *TrapFrame) SetArg(i int, v uint64) {
	if i < 0 || i > 5 {
		panic("proc: arg index out of range")
	}
	tf[tfA0+i] = v
}

func (tf *TrapFrame) A0() uint64     { return tf[tfA0] }
func (tf *TrapFrame) SetA0(v uint64) { tf[tfA0] = v }
func (tf *TrapFrame) A7() uint64     { return tf[tfA7] }
func (tf *TrapFrame) SetA7(v uint64) { tf[tfA7] = v }

// Reset clears the trapframe to its zero value.
func (tf *TrapFrame) Reset() { *tf = TrapFrame{} }

// Context is the callee-saved kernel register set switch() swaps in and
// out: return address, stack pointer, and s0..s11. Layout is contract
// with the switch assembly collaborator.
type Context [14]uint64

const (
	ctxRA = iota
	ctxSP
	ctxS0
)

func (c *Context) RA() uint64     { return c[ctxRA] }
func (c *Context) SetRA(v uint64) { c[ctxRA] = v }
func (c *Context) SP() uint64     { return c[ctxSP] }
func (c *Context) SetSP(v uint64) { c[ctxSP] = v }

// Reset clears the context to its zero value.
func (c *Context) Reset() { *c = Context{} }
