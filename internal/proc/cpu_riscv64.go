package proc

import "rv6/internal/riscv"

// init wires interruptsEnabledFn/setInterruptsEnabledFn to the real sstatus
// CSR on the only GOARCH this kernel actually boots on. Kept in its own
// riscv64-suffixed file so host builds (go test on amd64/arm64) never
// reference riscv64-only assembly symbols.
func init() {
	interruptsEnabledFn = func() bool { return riscv.ReadSstatus().InterruptsEnabled() }
	setInterruptsEnabledFn = func(on bool) {
		s := riscv.ReadSstatus()
		s.SetInterruptsEnabled(on)
		s.Write()
	}
}
