package proc

// forkretBodyFn completes a process's first-ever scheduling. cmd/kernel
// wires it to trap.UserTrapRet; it is taken as an indirection rather
// than an import because internal/trap already imports internal/proc.
var forkretBodyFn = func(p *Proc) { panic("proc: no forkret body installed") }

// SetForkretBody installs the function Forkret calls for the current
// hart's process. Called once during boot, before any process is ever
// scheduled.
func SetForkretBody(fn func(p *Proc)) { forkretBodyFn = fn }

// forkretGo is Forkret's Go half: Forkret (forkret_riscv64.s) is the raw
// program counter AllocProcess seeds into a fresh process's Ctx.RA, so
// Switch's bare RET lands here with no arguments — forkretGo recovers
// the process's identity via Mycpu(), exactly as original_source's
// forkret does via its own tp-derived hart lookup.
func forkretGo() {
	forkretBodyFn(Mycpu().Proc)
}

// Forkret is the synthetic return address a freshly allocated process's
// context carries until its first switch. Implemented in
// forkret_riscv64.s; cmd/kernel takes its address (via reflect, since Go
// has no portable "address of this function" operator) and assigns it to
// ForkretPC before any process is created.
func Forkret()
