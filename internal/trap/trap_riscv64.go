package trap

import "rv6/internal/riscv"

// init wires the CSR-backed seams to real hardware access on the only
// GOARCH this kernel boots on, kept out of trap.go so host builds never
// reference riscv64-only assembly symbols.
func init() {
	clearSoftwarePendingFn = func() {
		sip := riscv.ReadSip()
		sip.ClearPending(riscv.SupervisorSoftware)
		sip.Write()
	}
	enableInterruptsFn = func() {
		s := riscv.ReadSstatus()
		s.SetInterruptsEnabled(true)
		s.Write()
	}
	disableInterruptsFn = func() {
		s := riscv.ReadSstatus()
		s.SetInterruptsEnabled(false)
		s.Write()
	}
	jumpToUserretFn = callUserret
}

// callUserret is implemented in usertrapret_riscv64.s: it jumps to the
// trampoline's userret entry with trapframeVA in a0 and userSatp in a1,
// matching the trampoline contract spec.md §4.3 describes, and never
// returns.
func callUserret(trapframeVA, userSatp uint64)
