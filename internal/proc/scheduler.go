package proc

import (
	"errors"
	"sync"

	"rv6/internal/memlayout"
	"rv6/internal/riscv"
	"rv6/internal/vm"
)

// Switch saves the caller's callee-saved registers into old and restores
// them from new, landing the caller wherever new.RA points. Implemented
// in switch_riscv64.s; Go never sees the body, only the call contract.
func Switch(old, new *Context)

var errNoFreeProc = errors.New("scheduler: no free process slot")

// Scheduler owns the process table: an intrusive free list of Procs not
// yet assigned an identity (unused) and a FIFO of runnable Procs (used);
// a Running Proc is on neither list. Grounded on spec.md §4.4/§4.5 and original_source's
// scheduler.rs, generalized from its single global list into a struct so
// tests can construct an isolated instance.
type Scheduler struct {
	mu sync.Mutex

	unused *Proc
	used   *Proc
	usedTl *Proc

	procs   []Proc
	nextPid int64
}

// NewScheduler pre-allocates nproc Procs, each seeded with its kernel-stack
// virtual address, and threads them onto the unused list. nproc is the
// hard cap on simultaneously-live processes spec.md §3 assumes (no
// dynamic process table growth); slot i's kernel stack is
// memlayout.Kstack(i), the same addresses InitKVM mapped.
func NewScheduler(nproc int) *Scheduler {
	s := &Scheduler{procs: make([]Proc, nproc)}
	for i := range s.procs {
		s.procs[i].KStackVA = memlayout.Kstack(i)
		s.procs[i].next = s.unused
		s.unused = &s.procs[i]
	}
	return s
}

// InitUserproc pops a Proc off the unused list, builds its address space
// via AllocProcess, maps the given page into its image at address 0, and
// seeds its trapframe so the first return-to-user lands at VA 0 with a
// fresh user stack. It is called exactly once at boot, for the single
// init process this kernel runs (spec.md §1 non-goals: no fork/exec).
func (s *Scheduler) InitUserproc(k *vm.Kernel, initcode []byte) (*Proc, error) {
	s.mu.Lock()
	p := s.unused
	if p == nil {
		s.mu.Unlock()
		return nil, errNoFreeProc
	}
	s.unused = p.next
	p.next = nil
	pid := s.nextPid
	s.nextPid++
	s.mu.Unlock()

	if err := p.AllocProcess(k); err != nil {
		s.mu.Lock()
		p.next = s.unused
		s.unused = p
		s.mu.Unlock()
		return nil, err
	}

	k.InitUVM(p.PageTable, initcode)
	p.MemorySize = riscv.PageSize
	p.Pid = pid
	p.SetName("initcode")
	p.Trapframe.SetEPC(0)
	p.Trapframe.SetSP(riscv.PageSize)
	p.State = Runnable

	s.enqueueUsed(p)
	return p, nil
}

func (s *Scheduler) enqueueUsed(p *Proc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.next = nil
	if s.usedTl == nil {
		s.used = p
		s.usedTl = p
		return
	}
	s.usedTl.next = p
	s.usedTl = p
}

func (s *Scheduler) dequeueUsed() *Proc {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.used
	if p == nil {
		return nil
	}
	s.used = p.next
	if s.used == nil {
		s.usedTl = nil
	}
	p.next = nil
	return p
}

// Schedule is the per-hart scheduler loop: forever, pop a runnable
// process off used, mark it Running, switch into it, and when it yields
// back re-enqueue it at the tail (round robin, per spec.md §4.4). With no
// runnable process it waits for an interrupt rather than busy-spinning,
// matching original_source's idle-hart behavior.
func (s *Scheduler) Schedule(cpu *Cpu) {
	for {
		enableInterrupts()

		p := s.dequeueUsed()
		if p == nil {
			riscv.WaitForInterrupt()
			continue
		}

		p.State = Running
		cpu.Proc = p
		Switch(&cpu.Ctx, &p.Ctx)
		cpu.Proc = nil

		if p.State == Runnable {
			s.enqueueUsed(p)
		}
	}
}

// YieldProc gives up the current hart's process voluntarily: it marks
// itself Runnable and switches back into the scheduler's own context,
// which re-enqueues it once Schedule resumes. Called from the trap path
// (spec.md §4.3) whenever a timer interrupt finds a process Running.
func YieldProc(cpu *Cpu) {
	p := cpu.Proc
	if p == nil {
		return
	}
	p.State = Runnable
	Switch(&p.Ctx, &cpu.Ctx)
}

func enableInterrupts() { setInterruptsEnabledFn(true) }
