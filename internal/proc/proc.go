package proc

import (
	"fmt"
	"unsafe"

	"rv6/internal/kalloc"
	"rv6/internal/riscv"
	"rv6/internal/vm"
)

// State is a process's scheduling state. xv6-style kernels historically
// also have ZOMBIE/SLEEPING; this spec's non-goals (no fork/exec, no
// blocking syscalls) leave only the two states spec.md §3 names.
type State int

const (
	Runnable State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "runnable"
}

const nameLen = 16

// Proc is one process: its identity, scheduling state, saved kernel
// context, and its exclusive trapframe and page table. Grounded on
// original_source/src/proc.rs's Proc plus the trapframe/pagetable
// pointers spec.md §3 adds on top of that early sketch.
type Proc struct {
	Pid  int64
	name [nameLen]byte

	State State
	Ctx   Context

	KStackVA   uint64
	MemorySize uint64

	TrapFramePA vm.PhysAddr
	Trapframe   *TrapFrame

	PageTablePA vm.PhysAddr
	PageTable   *vm.PageTable

	// next links this Proc into whichever intrusive queue currently
	// owns it (Scheduler.unused or Scheduler.used). Exactly one of
	// those, or "currently Running on some Cpu", holds true at a time
	// (spec.md §3's Scheduler invariant).
	next *Proc
}

// SetName copies s (truncated to 15 bytes plus a NUL) into the process's
// fixed-size name field, mirroring original_source's [char;LEN_PROCNAME].
func (p *Proc) SetName(s string) {
	p.name = [nameLen]byte{}
	n := copy(p.name[:nameLen-1], s)
	_ = n
}

// Name returns the process name as a string, stopping at the first NUL.
func (p *Proc) Name() string {
	for i, b := range p.name {
		if b == 0 {
			return string(p.name[:i])
		}
	}
	return string(p.name[:])
}

// reset clears identity and kernel-visible state. If freeTrapframe is
// true (the process is being destroyed, not merely initialized for the
// first time) its trapframe page is returned to the allocator.
func (p *Proc) reset(pm *vm.PhysMem, freeTrapframe bool) {
	p.Pid = 0
	p.name = [nameLen]byte{}
	p.State = Runnable
	p.Ctx.Reset()
	p.MemorySize = 0
	if freeTrapframe && p.Trapframe != nil {
		pm.FreePage(p.TrapFramePA)
	}
	p.Trapframe = nil
	p.TrapFramePA = 0
	p.PageTable = nil
	p.PageTablePA = 0
}

func trapFrameAt(page *kalloc.Page) *TrapFrame {
	return (*TrapFrame)(unsafe.Pointer(page))
}

// AllocProcess allocates a trapframe page and a user page table for p,
// installs the trampoline+trapframe mappings, and seeds p's kernel
// context so that the first switch into it lands in forkret. Grounded on
// kvm.rs's init_user_pagetable plus spec.md §4.5's alloc_process
// description; any failure unwinds every partial allocation, per
// spec.md §9's note that these paths should be unified.
func (p *Proc) AllocProcess(k *vm.Kernel) error {
	tfPA, ok := k.PM.AllocPage()
	if !ok {
		return fmt.Errorf("alloc_process: %w", vm.ErrKallocFailed)
	}
	p.TrapFramePA = tfPA
	p.Trapframe = trapFrameAt(k.PM.BytesAt(tfPA))
	p.Trapframe.Reset()

	root, ok := k.InitUserPagetable(tfPA)
	if !ok {
		k.PM.FreePage(tfPA)
		p.TrapFramePA = 0
		p.Trapframe = nil
		return fmt.Errorf("alloc_process: init_user_pagetable: %w", vm.ErrKallocFailed)
	}
	p.PageTable = root
	p.PageTablePA = k.PM.AddrOf(root)

	p.Ctx.Reset()
	p.Ctx.SetRA(ForkretPC)
	p.Ctx.SetSP(p.KStackVA + riscv.PageSize)
	p.State = Runnable
	return nil
}

// ClearUserPagetable tears down p's address space: unmaps the
// trampoline/trapframe, frees the user image, and frees the table
// itself. The trapframe page is not freed here, since it is not part of
// the mapped user image; reset with freeTrapframe set frees it.
func (p *Proc) ClearUserPagetable(k *vm.Kernel) {
	k.ClearUserPagetable(p.PageTable, p.PageTablePA, p.MemorySize)
	p.PageTable = nil
	p.PageTablePA = 0
}

// ForkretPC is the return address AllocProcess seeds into a fresh
// process's context. Go cannot portably name "the address of a function,
// as a raw register value", so cmd/kernel sets this once at boot from
// reflect.ValueOf(Forkret).Pointer() (Forkret lives in
// forkret_riscv64.s), matching original_source's synthetic-ra
// description in spec.md §4.4.
var ForkretPC uint64
