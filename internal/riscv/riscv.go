// Package riscv holds RISC-V constants and control-and-status-register
// wrappers shared by the rest of the kernel. It has no dependency on any
// other kernel package so that address arithmetic and CSR encoding can be
// unit tested on the host.
package riscv

const (
	// PageShift is the base-2 exponent of the page size.
	PageShift = 12
	// PageSize is the size in bytes of a single page.
	PageSize = 1 << PageShift
	// PageOffsetMask masks the in-page offset bits of an address.
	PageOffsetMask = PageSize - 1

	// Sv39 has three 9-bit page-table levels below the 12-bit offset.
	// MaxVA is the first virtual address not representable by Sv39.
	MaxVA = 1 << (9 + 9 + 9 + PageShift - 1)

	// MaxInterrupt bounds the PLIC interrupt id space.
	MaxInterrupt = 1024
)

// Interrupt enumerates the scause interrupt codes this kernel handles.
type Interrupt uint64

const (
	SupervisorSoftware Interrupt = 1
	SupervisorTimer    Interrupt = 5
	SupervisorExternal Interrupt = 9
)

// Exception enumerates the scause exception codes this kernel recognizes.
type Exception uint64

const (
	InstructionAddressMisaligned Exception = 0
	InstructionAccessFault       Exception = 1
	IllegalInstruction           Exception = 2
	Breakpoint                   Exception = 3
	LoadAddressMisaligned        Exception = 4
	LoadAccessFault              Exception = 5
	StoreAddressMisaligned       Exception = 6
	StoreAccessFault             Exception = 7
	EnvironmentCallFromUMode     Exception = 8
	EnvironmentCallFromSMode     Exception = 9
	InstructionPageFault         Exception = 12
	LoadPageFault                Exception = 13
	StorePageFault               Exception = 15
)

// PrivilegeMode is the M/S/U mode encoding used by mstatus.MPP and sstatus.SPP.
type PrivilegeMode uint8

const (
	UserMode       PrivilegeMode = 0
	SupervisorMode PrivilegeMode = 1
	MachineMode    PrivilegeMode = 3
)
