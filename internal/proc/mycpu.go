package proc

import "rv6/internal/riscv"

// cpus is the fixed-size per-hart Cpu table; one entry per hart this
// kernel was booted with. Registered once, from hart 0, before any hart
// reaches Schedule.
var cpus []Cpu

// RegisterCpus allocates the per-hart Cpu table and returns a pointer to
// each slot in hart order, for cmd/kernel to hand one to each hart's
// Schedule call. Must run exactly once, before any hart calls Mycpu.
func RegisterCpus(nhart int) []*Cpu {
	cpus = make([]Cpu, nhart)
	ptrs := make([]*Cpu, nhart)
	for i := range cpus {
		ptrs[i] = &cpus[i]
	}
	return ptrs
}

// Mycpu returns the calling hart's Cpu, found via the hart id start()
// stashed in tp at boot. Grounded on original_source's mycpu(), which
// does the same indexing off its own tp-derived hart id.
func Mycpu() *Cpu {
	return &cpus[riscv.Tp()]
}
