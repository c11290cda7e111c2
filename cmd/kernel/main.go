// Command kernel is riscv6's supervisor-mode kernel image: it boots on
// every hart of a QEMU "virt" machine, brings up Sv39 paging, the trap
// pipeline, the process scheduler, and the single init process, then
// drops every hart into its scheduling loop forever.
//
// Boot proceeds per-hart assembly stub (an external collaborator this
// repository does not assemble, per spec.md §1) → start (machine mode,
// start.go) → main (supervisor mode, this file). Hart 0 performs every
// one-time initialization step and releases kernelStarted; every other
// hart busy-waits on it before installing its own page table, trap
// vector, and PLIC enable. Grounded on spec.md §2 and
// original_source/src/main.rs's analogous (single-hart) sequence.
package main

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"rv6/internal/initcode"
	"rv6/internal/kalloc"
	"rv6/internal/memlayout"
	"rv6/internal/plic"
	"rv6/internal/proc"
	"rv6/internal/riscv"
	"rv6/internal/syscall"
	"rv6/internal/trap"
	"rv6/internal/uart"
	"rv6/internal/virtio"
	"rv6/internal/vm"
)

const (
	// nproc and ncpu match original_source/src/param.rs; this kernel
	// runs exactly one process, so nproc only needs to exceed 1 to
	// leave room for AllocProcess's error path to be meaningful.
	nproc = 2
	ncpu  = 8

	// physPages sizes the physical allocator's arena. A real boot
	// computes this from the linker's _end symbol to PHYSTOP; absent
	// a linker here, it is carved out of memlayout's PhysTop/KernelBase
	// span directly.
	physPages = (memlayout.PhysTop - memlayout.KernelBase) / riscv.PageSize

	// etextPlaceholder stands in for the linker's _etext symbol (the
	// boundary between kernel text and kernel data/heap). A real build
	// reads it from the link step; this one reserves a fixed 1 MiB
	// image size instead.
	etextPlaceholder = memlayout.KernelBase + 1024*1024
)

// kernelStarted is hart 0's readiness fence: spec.md §2/§9 describes it
// as a sync_synchronize()-guarded flag other harts busy-wait on.
// atomic.Bool gives the same acquire/release ordering portably.
var kernelStarted atomic.Bool

var (
	physMem   *vm.PhysMem
	kernel    *vm.Kernel
	scheduler *proc.Scheduler
	cpus      []*proc.Cpu
)

// main is supervisor-mode entry, reached via start's mepc+mret handoff.
// It never returns.
func main() {
	hart := riscv.Tp()

	if hart == 0 {
		bootHartZero()
		kernelStarted.Store(true)
	} else {
		for !kernelStarted.Load() {
			// spin until hart 0's one-time init has published
			// KERNELPAGE/SCHEDULER/CPU[NCPU], per spec.md §9.
		}
	}

	kernel.InitPage()
	riscv.WriteStvec(uint64(reflect.ValueOf(kernelTrapEntry).Pointer()))
	plic.InitHart(hart)

	scheduler.Schedule(cpus[hart])
}

// bootHartZero performs every one-time initialization step spec.md §2
// assigns to hart 0: physical allocator, kernel page table, process
// table, trap vector addresses, PLIC priorities, virtio probe, and the
// first (and only) user process.
func bootHartZero() {
	allocator := kalloc.NewAllocator(physPages)
	physMem = vm.NewPhysMem(allocator)
	kernel = vm.NewKernel(physMem, nproc)
	kernel.InitKVM(etextPlaceholder, memlayout.PhysTop)

	scheduler = proc.NewScheduler(nproc)
	cpus = proc.RegisterCpus(ncpu)

	trap.SetKernelSatp(riscv.MakeSv39Satp(uint64(physMem.AddrOf(kernel.Root))).Bits())
	trap.SetKernelvecAddr(uint64(reflect.ValueOf(kernelTrapEntry).Pointer()))
	trap.SetUservecAddr(uservecAddr())
	trap.SetUserTrapEntryAddr(uint64(reflect.ValueOf(userTrapEntry).Pointer()))
	proc.ForkretPC = uint64(reflect.ValueOf(proc.Forkret).Pointer())
	proc.SetForkretBody(func(p *proc.Proc) { trap.UserTrapRet(p) })

	uart.Init()
	plic.Init()

	if virtio.Probe() {
		fmt.Fprintf(uart.Writer{}, "riscv6: virtio0 block device present\n")
	} else {
		fmt.Fprintf(uart.Writer{}, "riscv6: virtio0 not present\n")
	}

	if _, err := scheduler.InitUserproc(kernel, initcode.Blob); err != nil {
		panic("main: init_userproc: " + err.Error())
	}

	fmt.Fprintf(uart.Writer{}, "riscv6: booted, %d harts, %d process slots\n", ncpu, nproc)
}

// kernelTrapEntry is kernelvec's Go-side target: kernelvec.S itself is
// an external assembly collaborator (spec.md §1) this repository does
// not assemble, but the supervisor trap it would call into is real.
func kernelTrapEntry() { trap.KernelTrap(proc.Mycpu()) }

// userTrapEntry is uservec's Go-side target, reached after a trap from
// user mode. It wires internal/syscall.Dispatch into the trap pipeline
// without internal/trap importing internal/syscall directly (which
// would cycle back through internal/proc and internal/vm).
func userTrapEntry() { trap.UserTrap(proc.Mycpu(), kernel, syscall.Dispatch) }

// uservecOffset is uservec's offset within the trampoline page;
// trampoline.S (unassembled here, see vm.TrampolineBlob) would place it
// at a fixed, known offset in a real build.
const uservecOffset = 0x10

func uservecAddr() uint64 { return memlayout.Trampoline + uservecOffset }
