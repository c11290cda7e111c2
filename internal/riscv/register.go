package riscv

// Sstatus wraps the supervisor status register, tracking interrupt-enable
// and previous-privilege bits. Grounded on original_source's
// riscv/register/mstatus.rs (the same bit layout, supervisor-level
// subset) and its Mode/get_mpp/set_mpp accessor style.
type Sstatus struct{ bits uint64 }

const (
	sstatusSIE  = 1 << 1 // supervisor interrupt enable
	sstatusSPIE = 1 << 5 // supervisor previous interrupt enable
	sstatusSPP  = 1 << 8 // supervisor previous privilege
)

// ReadSstatus reads the current sstatus register.
func ReadSstatus() Sstatus { return Sstatus{readSstatus()} }

// Write commits this value back to sstatus.
func (s Sstatus) Write() { writeSstatus(s.bits) }

// InterruptsEnabled reports the SIE bit.
func (s Sstatus) InterruptsEnabled() bool { return s.bits&sstatusSIE != 0 }

// SetInterruptsEnabled sets or clears SIE.
func (s *Sstatus) SetInterruptsEnabled(on bool) {
	if on {
		s.bits |= sstatusSIE
	} else {
		s.bits &^= sstatusSIE
	}
}

// SetPrevInterruptsEnabled sets or clears SPIE.
func (s *Sstatus) SetPrevInterruptsEnabled(on bool) {
	if on {
		s.bits |= sstatusSPIE
	} else {
		s.bits &^= sstatusSPIE
	}
}

// PrevMode returns the privilege mode recorded in SPP: User or Supervisor.
func (s Sstatus) PrevMode() PrivilegeMode {
	if s.bits&sstatusSPP != 0 {
		return SupervisorMode
	}
	return UserMode
}

// SetPrevMode sets SPP. RISC-V only records U or S in sstatus (unlike
// mstatus.MPP, which also allows M).
func (s *Sstatus) SetPrevMode(mode PrivilegeMode) {
	switch mode {
	case SupervisorMode:
		s.bits |= sstatusSPP
	case UserMode:
		s.bits &^= sstatusSPP
	default:
		panic("sstatus: SPP cannot record machine mode")
	}
}

// Mstatus wraps the machine status register.
type Mstatus struct{ bits uint64 }

const mstatusMPPShift = 11
const mstatusMPPMask = 0x3 << mstatusMPPShift

// ReadMstatus reads the current mstatus register.
func ReadMstatus() Mstatus { return Mstatus{readMstatus()} }

// Write commits this value back to mstatus.
func (m Mstatus) Write() { writeMstatus(m.bits) }

// SetMPP sets the machine-previous-privilege field.
func (m *Mstatus) SetMPP(mode PrivilegeMode) {
	m.bits &^= mstatusMPPMask
	m.bits |= uint64(mode) << mstatusMPPShift
}

// MPP returns the machine-previous-privilege field.
func (m Mstatus) MPP() PrivilegeMode {
	return PrivilegeMode((m.bits & mstatusMPPMask) >> mstatusMPPShift)
}

// Satp builds and decodes the supervisor address translation and
// protection register (mode + root page table PPN).
type Satp struct{ bits uint64 }

const (
	satpModeShift = 60
	satpModeSv39  = 8
	satpPPNMask   = (uint64(1) << 44) - 1
)

// ReadSatp reads the current satp register.
func ReadSatp() Satp { return Satp{readSatp()} }

// Write commits this value back to satp.
func (s Satp) Write() { writeSatp(s.bits) }

// MakeSv39Satp builds an satp value selecting Sv39 mode with the given
// root page table physical address (must be page aligned).
func MakeSv39Satp(rootPA uint64) Satp {
	ppn := (rootPA >> PageShift) & satpPPNMask
	return Satp{bits: uint64(satpModeSv39)<<satpModeShift | ppn}
}

// Bits returns the raw encoded register value, e.g. for building a user
// satp to hand to the trampoline without installing it locally.
func (s Satp) Bits() uint64 { return s.bits }

// ReadSepc reads the supervisor exception program counter.
func ReadSepc() uint64 { return readSepc() }

// WriteSepc sets the supervisor exception program counter, the address
// sret jumps to.
func WriteSepc(addr uint64) { writeSepc(addr) }

// Scause decodes the supervisor cause register.
type Scause struct{ bits uint64 }

// ReadScause reads the current scause register.
func ReadScause() Scause { return Scause{readScause()} }

// IsInterrupt reports whether the top bit (interrupt vs. exception) is set.
func (s Scause) IsInterrupt() bool { return s.bits&(1<<63) != 0 }

// Code returns the cause code with the interrupt bit masked off.
func (s Scause) Code() uint64 { return s.bits &^ (1 << 63) }

// Sie wraps the supervisor interrupt enable register.
type Sie struct{ bits uint64 }

// ReadSie reads the current sie register.
func ReadSie() Sie { return Sie{readSie()} }

// Write commits this value back to sie.
func (s Sie) Write() { writeSie(s.bits) }

// Enable sets the enable bit for the given interrupt source.
func (s *Sie) Enable(i Interrupt) { s.bits |= 1 << uint(i) }

// Mie wraps the machine-mode interrupt enable register. Unlike sie's bit
// positions (which this package's Interrupt constants already match),
// the machine-level enable bits sit two positions higher per source
// (MTIE is bit 7, not bit 5), so Mie gets its own bit constant rather
// than reusing Interrupt.
type Mie struct{ bits uint64 }

const mieMTIE = 1 << 7 // machine timer interrupt enable

// ReadMie reads the current mie register.
func ReadMie() Mie { return Mie{readMie()} }

// Write commits this value back to mie.
func (m Mie) Write() { writeMie(m.bits) }

// SetMTIE sets or clears the machine-timer-interrupt enable bit. start()
// sets this so timervec's mtimecmp-driven SSIP injection (spec.md §4.3)
// ever fires.
func (m *Mie) SetMTIE(on bool) {
	if on {
		m.bits |= mieMTIE
	} else {
		m.bits &^= mieMTIE
	}
}

// Sip wraps the supervisor interrupt pending register.
type Sip struct{ bits uint64 }

// ReadSip reads the current sip register.
func ReadSip() Sip { return Sip{readSip()} }

// Write commits this value back to sip.
func (s Sip) Write() { writeSip(s.bits) }

// ClearPending clears the pending bit for the given interrupt source.
func (s *Sip) ClearPending(i Interrupt) { s.bits &^= 1 << uint(i) }

// SetPending sets the pending bit for the given interrupt source. Used by
// the machine-mode timer vector to raise a supervisor software interrupt.
func (s *Sip) SetPending(i Interrupt) { s.bits |= 1 << uint(i) }

// WriteStvec installs the supervisor trap vector address (must be 4-byte
// aligned; this kernel always uses direct, not vectored, mode).
func WriteStvec(addr uint64) { writeStvec(addr) }

// WriteMtvec installs the machine-mode trap vector address.
func WriteMtvec(addr uint64) { writeMtvec(addr) }

// WriteMepc sets the machine exception program counter, the address mret
// jumps to.
func WriteMepc(addr uint64) { writeMepc(addr) }

// WriteMedeleg delegates the given exception bitmask to supervisor mode.
func WriteMedeleg(mask uint64) { writeMedeleg(mask) }

// WriteMideleg delegates the given interrupt bitmask to supervisor mode.
func WriteMideleg(mask uint64) { writeMideleg(mask) }

// WriteMscratch stores the per-hart machine-mode scratch pointer used by
// timervec.
func WriteMscratch(addr uint64) { writeMscratch(addr) }

// Hartid reads mhartid (machine mode only; used once at boot to seed tp).
func Hartid() uint64 { return readMhartid() }

// Tp reads the per-hart id this kernel stashed in tp at boot.
func Tp() uint64 { return readTp() }

// WriteTp seeds tp with the hart id. Called once per hart during start().
func WriteTp(hartid uint64) { writeTp(hartid) }

// PMPAllMemoryRWX grants supervisor/user mode full access to all of
// physical memory via a single top-of-range PMP region, matching
// original_source's start.rs PMP setup (address = all-ones >> 10, config =
// R|W|X|TOR).
func PMPAllMemoryRWX() {
	writePmpaddr0(^uint64(0) >> 10)
	const (
		pmpR   = 1 << 0
		pmpW   = 1 << 1
		pmpX   = 1 << 2
		pmpTOR = 1 << 3
	)
	writePmpcfg0(pmpR | pmpW | pmpX | pmpTOR)
}

// SfenceVMA flushes the TLB after a satp write.
func SfenceVMA() { sfenceVMA() }

// WaitForInterrupt parks the hart until an interrupt arrives.
func WaitForInterrupt() { wfi() }

// Mret performs the mode transition mret instruction.
func Mret() { mret() }
