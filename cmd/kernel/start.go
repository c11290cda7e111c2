package main

import (
	"reflect"
	"unsafe"

	"rv6/internal/memlayout"
	"rv6/internal/riscv"
)

// timervecPlaceholder stands in for the machine-mode timer vector's
// linked address. timervec itself — bump *mtimecmp by the scratch
// area's interval, raise supervisor-software-pending, mret — is an
// assembly collaborator per spec.md §1/§4.3 this repository does not
// assemble.
const timervecPlaceholder = memlayout.KernelBase + 0x800

// mtimeInterval is the machine-cycle gap between timer interrupts,
// matching spec.md §4.3's stated default.
const mtimeInterval = 1_000_000

// hartScratch holds, per hart, the [mtimecmp_addr, interval] pair
// timervec indexes via mscratch — xv6-style kernels give every hart its
// own scratch line so concurrent timer interrupts never share a cache
// line. Only the first two words are used; the rest mirror xv6's
// five-word scratch area, kept for parity with timervec's expected
// layout even though this kernel's reflected dispatch never reads them.
var hartScratch [ncpu][5]uint64

// start runs in machine mode, once per hart, immediately after the
// (unimplemented) boot-assembly entry stub sets up an early stack and
// calls in here. It performs the one-time machine-mode setup every hart
// needs before dropping to supervisor mode: delegate traps and
// interrupts, arm this hart's timer scratch, enable the machine timer
// interrupt so timervec ever fires, grant PMP access to all of memory,
// and mret into main.
//
// Grounded on original_source/src/start.rs, generalized from its
// single-hart sketch to additionally seed timervec's per-hart scratch
// area (spec.md §4.3's machine-timer-vector contract, which the Rust
// original leaves unimplemented).
func start() {
	ms := riscv.ReadMstatus()
	ms.SetMPP(riscv.SupervisorMode)
	ms.Write()

	riscv.WriteMepc(uint64(reflect.ValueOf(main).Pointer()))

	// Disable paging until main runs InitPage.
	riscv.Satp{}.Write()

	riscv.WriteMedeleg(0xffff)
	riscv.WriteMideleg(0xffff)

	sie := riscv.ReadSie()
	sie.Enable(riscv.SupervisorSoftware)
	sie.Enable(riscv.SupervisorTimer)
	sie.Enable(riscv.SupervisorExternal)
	sie.Write()

	hartid := riscv.Hartid()
	riscv.WriteTp(hartid)

	scratch := &hartScratch[hartid]
	scratch[0] = memlayout.ClintMtimecmp(hartid)
	scratch[1] = mtimeInterval
	riscv.WriteMscratch(uint64(uintptr(unsafe.Pointer(scratch))))
	riscv.WriteMtvec(timervecPlaceholder)

	mie := riscv.ReadMie()
	mie.SetMTIE(true)
	mie.Write()

	riscv.PMPAllMemoryRWX()

	riscv.Mret()
}
