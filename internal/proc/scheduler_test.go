package proc

import (
	"testing"

	"rv6/internal/kalloc"
	"rv6/internal/vm"
)

func newTestKernel(t *testing.T, npages, nproc int) *vm.Kernel {
	t.Helper()
	pm := vm.NewPhysMem(kalloc.NewAllocator(npages))
	return vm.NewKernel(pm, nproc)
}

func TestNewSchedulerThreadsUnusedList(t *testing.T) {
	s := NewScheduler(4)
	count := 0
	for p := s.unused; p != nil; p = p.next {
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 procs on the unused list, got %d", count)
	}
	if s.used != nil {
		t.Fatalf("expected empty used list on a fresh scheduler")
	}
}

func TestInitUserprocEnqueuesRunnable(t *testing.T) {
	k := newTestKernel(t, 64, 4)
	s := NewScheduler(4)

	initcode := []byte{0x13, 0x00, 0x00, 0x00} // addi x0, x0, 0 (placeholder)
	p, err := s.InitUserproc(k, initcode)
	if err != nil {
		t.Fatalf("InitUserproc: %v", err)
	}
	if p.State != Runnable {
		t.Fatalf("expected new process to be Runnable, got %v", p.State)
	}
	if p.Name() != "initcode" {
		t.Fatalf("expected process name %q, got %q", "initcode", p.Name())
	}
	if p.Trapframe.EPC() != 0 {
		t.Fatalf("expected epc 0, got %#x", p.Trapframe.EPC())
	}
	if got, want := p.Trapframe.SP(), uint64(4096); got != want {
		t.Fatalf("expected sp %#x, got %#x", want, got)
	}
	if s.used != p {
		t.Fatalf("expected the new process at the head of the used queue")
	}
}

func TestInitUserprocFailsWhenProcessTableFull(t *testing.T) {
	k := newTestKernel(t, 64, 1)
	s := NewScheduler(1)

	if _, err := s.InitUserproc(k, []byte{0}); err != nil {
		t.Fatalf("first InitUserproc: %v", err)
	}
	if _, err := s.InitUserproc(k, []byte{0}); err == nil {
		t.Fatalf("expected the second InitUserproc to fail, process table has only one slot")
	}
}

func TestDequeueUsedIsFIFO(t *testing.T) {
	k := newTestKernel(t, 64, 4)
	s := NewScheduler(4)

	first, err := s.InitUserproc(k, []byte{0})
	if err != nil {
		t.Fatalf("InitUserproc: %v", err)
	}
	second := s.unused
	if second == nil {
		t.Fatalf("expected a second free proc to build on directly")
	}
	s.enqueueUsed(second)

	if got := s.dequeueUsed(); got != first {
		t.Fatalf("expected FIFO order: first out should be %p, got %p", first, got)
	}
	if got := s.dequeueUsed(); got != second {
		t.Fatalf("expected FIFO order: second out should be %p, got %p", second, got)
	}
	if got := s.dequeueUsed(); got != nil {
		t.Fatalf("expected an empty queue, got %p", got)
	}
}

// withFakeInterrupts replaces the sstatus.SIE seam with an in-memory flag
// starting at on, so PushOff/PopOff run without the real CSR.
func withFakeInterrupts(t *testing.T, on bool) {
	t.Helper()
	enabled := on
	origGet, origSet := interruptsEnabledFn, setInterruptsEnabledFn
	interruptsEnabledFn = func() bool { return enabled }
	setInterruptsEnabledFn = func(v bool) { enabled = v }
	t.Cleanup(func() {
		interruptsEnabledFn = origGet
		setInterruptsEnabledFn = origSet
	})
}

func TestCpuPushOffPopOffNesting(t *testing.T) {
	withFakeInterrupts(t, true)
	var cpu Cpu
	cpu.PushOff()
	cpu.PushOff()
	if cpu.pushCount != 2 {
		t.Fatalf("expected pushCount 2 after two PushOff calls, got %d", cpu.pushCount)
	}
	cpu.PopOff()
	if cpu.pushCount != 1 {
		t.Fatalf("expected pushCount 1 after one PopOff call, got %d", cpu.pushCount)
	}
	cpu.PopOff()
	if cpu.pushCount != 0 {
		t.Fatalf("expected pushCount 0 after unwinding every PushOff call, got %d", cpu.pushCount)
	}
}

func TestCpuPopOffWithoutPushPanics(t *testing.T) {
	withFakeInterrupts(t, false)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected PopOff with no matching PushOff to panic")
		}
	}()
	var cpu Cpu
	cpu.PopOff()
}

func TestYieldProcClearsNothingWithoutAProcess(t *testing.T) {
	var cpu Cpu
	YieldProc(&cpu) // must not panic when no process is attached
}
