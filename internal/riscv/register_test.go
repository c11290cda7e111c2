package riscv

import "testing"

func TestSstatusInterruptsEnabled(t *testing.T) {
	var s Sstatus
	if s.InterruptsEnabled() {
		t.Fatalf("zero-value sstatus should report interrupts disabled")
	}
	s.SetInterruptsEnabled(true)
	if !s.InterruptsEnabled() {
		t.Fatalf("expected interrupts enabled after SetInterruptsEnabled(true)")
	}
	s.SetInterruptsEnabled(false)
	if s.InterruptsEnabled() {
		t.Fatalf("expected interrupts disabled after SetInterruptsEnabled(false)")
	}
}

func TestSstatusPrevMode(t *testing.T) {
	var s Sstatus
	if s.PrevMode() != UserMode {
		t.Fatalf("zero-value sstatus should report UserMode, got %v", s.PrevMode())
	}
	s.SetPrevMode(SupervisorMode)
	if s.PrevMode() != SupervisorMode {
		t.Fatalf("expected SupervisorMode after SetPrevMode")
	}
	s.SetPrevMode(UserMode)
	if s.PrevMode() != UserMode {
		t.Fatalf("expected UserMode after SetPrevMode")
	}
}

func TestSstatusSetPrevModeRejectsMachine(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected SetPrevMode(MachineMode) to panic")
		}
	}()
	var s Sstatus
	s.SetPrevMode(MachineMode)
}

func TestSstatusSetPrevInterruptsEnabled(t *testing.T) {
	var s Sstatus
	s.SetPrevInterruptsEnabled(true)
	if s.bits&sstatusSPIE == 0 {
		t.Fatalf("expected SPIE set")
	}
	s.SetPrevInterruptsEnabled(false)
	if s.bits&sstatusSPIE != 0 {
		t.Fatalf("expected SPIE cleared")
	}
}

func TestMstatusMPP(t *testing.T) {
	var m Mstatus
	m.SetMPP(SupervisorMode)
	if m.MPP() != SupervisorMode {
		t.Fatalf("MPP() = %v, want SupervisorMode", m.MPP())
	}
	m.SetMPP(MachineMode)
	if m.MPP() != MachineMode {
		t.Fatalf("MPP() = %v, want MachineMode", m.MPP())
	}
}

func TestMakeSv39Satp(t *testing.T) {
	s := MakeSv39Satp(0x8000_3000)
	if s.bits>>satpModeShift != satpModeSv39 {
		t.Fatalf("expected mode field to select Sv39")
	}
	wantPPN := uint64(0x8000_3000) >> PageShift
	if s.bits&satpPPNMask != wantPPN {
		t.Fatalf("PPN field = %#x, want %#x", s.bits&satpPPNMask, wantPPN)
	}
}

func TestScauseIsInterruptAndCode(t *testing.T) {
	s := Scause{bits: (1 << 63) | uint64(SupervisorExternal)}
	if !s.IsInterrupt() {
		t.Fatalf("expected IsInterrupt to report true")
	}
	if s.Code() != uint64(SupervisorExternal) {
		t.Fatalf("Code() = %d, want %d", s.Code(), SupervisorExternal)
	}

	exc := Scause{bits: uint64(EnvironmentCallFromUMode)}
	if exc.IsInterrupt() {
		t.Fatalf("expected IsInterrupt to report false for an exception cause")
	}
	if exc.Code() != uint64(EnvironmentCallFromUMode) {
		t.Fatalf("Code() = %d, want %d", exc.Code(), EnvironmentCallFromUMode)
	}
}

func TestSieEnable(t *testing.T) {
	var s Sie
	s.Enable(SupervisorSoftware)
	s.Enable(SupervisorExternal)
	if s.bits&(1<<uint(SupervisorSoftware)) == 0 {
		t.Fatalf("expected SupervisorSoftware bit set")
	}
	if s.bits&(1<<uint(SupervisorExternal)) == 0 {
		t.Fatalf("expected SupervisorExternal bit set")
	}
}

func TestMieSetMTIE(t *testing.T) {
	var m Mie
	m.SetMTIE(true)
	if m.bits&mieMTIE == 0 {
		t.Fatalf("expected MTIE set")
	}
	m.SetMTIE(false)
	if m.bits&mieMTIE != 0 {
		t.Fatalf("expected MTIE cleared")
	}
}

func TestSipClearAndSetPending(t *testing.T) {
	var s Sip
	s.SetPending(SupervisorSoftware)
	if s.bits&(1<<uint(SupervisorSoftware)) == 0 {
		t.Fatalf("expected pending bit set")
	}
	s.ClearPending(SupervisorSoftware)
	if s.bits&(1<<uint(SupervisorSoftware)) != 0 {
		t.Fatalf("expected pending bit cleared")
	}
}
