package plic

import (
	"testing"

	"rv6/internal/memlayout"
	"rv6/internal/mmio"
)

// fakeRegs stands in for the PLIC's MMIO window: a sparse map keyed by
// register address, restored after every test.
func withFakeRegs(t *testing.T) map[uint64]uint32 {
	t.Helper()
	regs := map[uint64]uint32{}
	origRead, origWrite := mmio.ReadU32Fn, mmio.WriteU32Fn
	mmio.ReadU32Fn = func(addr uint64) uint32 { return regs[addr] }
	mmio.WriteU32Fn = func(addr uint64, v uint32) { regs[addr] = v }
	t.Cleanup(func() {
		mmio.ReadU32Fn = origRead
		mmio.WriteU32Fn = origWrite
	})
	return regs
}

func TestSetPriority(t *testing.T) {
	regs := withFakeRegs(t)
	SetPriority(10, 3)
	if got := regs[memlayout.PlicPriorityAddr(10)]; got != 3 {
		t.Fatalf("expected priority register to read back 3, got %d", got)
	}
}

func TestSetEnablePreservesOtherBits(t *testing.T) {
	regs := withFakeRegs(t)
	addr := memlayout.PlicEnableAddr(0, uint64(ContextSupervisor), 10)
	regs[addr] = 1 << 3 // some unrelated irq already enabled

	SetEnable(0, ContextSupervisor, 10)
	if got, want := regs[addr], uint32(1<<3|1<<10); got != want {
		t.Fatalf("expected enable word %#x, got %#x", want, got)
	}

	SetDisable(0, ContextSupervisor, 10)
	if got, want := regs[addr], uint32(1<<3); got != want {
		t.Fatalf("expected enable word %#x after disable, got %#x", want, got)
	}
}

func TestClaimAndComplete(t *testing.T) {
	regs := withFakeRegs(t)
	addr := memlayout.PlicClaimAddr(0, uint64(ContextSupervisor))
	regs[addr] = 10 // simulate a pending UART claim

	if got := GetClaim(0, ContextSupervisor); got != 10 {
		t.Fatalf("expected claim to read 10, got %d", got)
	}

	SetComplete(0, ContextSupervisor, 10)
	if got := regs[addr]; got != 10 {
		t.Fatalf("expected complete write to land at the claim register, got %d", got)
	}
}

func TestSetEnableRejectsOutOfRangeIRQ(t *testing.T) {
	withFakeRegs(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected SetEnable to panic on an out-of-range irq")
		}
	}()
	SetEnable(0, ContextSupervisor, 99999)
}

func TestInitSetsKnownSourcePriorities(t *testing.T) {
	regs := withFakeRegs(t)
	Init()
	if regs[memlayout.PlicPriorityAddr(10)] != 1 {
		t.Fatalf("expected UART0 irq priority to be set to 1")
	}
	if regs[memlayout.PlicPriorityAddr(1)] != 1 {
		t.Fatalf("expected VIRTIO0 irq priority to be set to 1")
	}
}
