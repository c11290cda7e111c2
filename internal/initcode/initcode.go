// Package initcode holds the single pre-built user program this kernel
// ever runs. cmd/mkinitcode (SPEC_FULL.md §4.7) regenerates Blob from an
// assembled user binary; user-space ELF loading is explicitly out of
// scope (spec.md §1), so this is the kernel's only user image.
package initcode

// Blob is copied into virtual address 0 of the init process's address
// space by Scheduler.InitUserproc; it must fit within a single page.
// This placeholder issues one ecall to the single write syscall
// (internal/syscall's sysWrite, a7=0) and then spins, the same role
// vm.TrampolineBlob plays for the unassembled trampoline.
var Blob = []byte{
	0x13, 0x05, 0x00, 0x00, // li a0, 0
	0x93, 0x05, 0x00, 0x00, // li a1, 0
	0x13, 0x06, 0x00, 0x00, // li a2, 0
	0x93, 0x08, 0x00, 0x00, // li a7, 0
	0x73, 0x00, 0x00, 0x00, // ecall
	0x6f, 0x00, 0x00, 0x00, // j . (spin forever)
}
