// This file documents the host-simulation model used throughout
// internal/vm: a "physical address" is simply the host process address
// of a page kalloc.Allocator handed out, not a real RISC-V physical
// address behind an MMU. That lets the Sv39 walk/map/unmap/translate
// logic — the core of this spec — run and be asserted against directly
// in `go test`, which is exactly the split SPEC_FULL.md's ambient-stack
// section calls for ("host-runnable logic... without requiring the
// RISC-V MMIO/CSR environment"). A real boot instead runs this same code
// atop DRAM identity-mapped before paging is enabled, where the
// arithmetic is identical; only riscv.SfenceVMA, riscv.MakeSv39Satp.Write
// and friends require real hardware.
package vm
