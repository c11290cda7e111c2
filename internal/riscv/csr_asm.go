package riscv

// The functions below read and write individual control-and-status
// registers. Each CSR name is baked into its own instruction (csrr/csrw
// take an immediate CSR number, not a register), so unlike most of this
// package they cannot be expressed in portable Go and are implemented in
// csr_asm_riscv64.s, one function per register, in the same spirit as
// original_source's riscv/register/*.rs modules (one file per CSR) and
// biscuit's runtime-linked Rdtsc()/Cpuid() primitives in mem/mem.go.
//
// readTp and writeTp access tp, which start() (cmd/kernel) seeds with
// mhartid at boot; they are not themselves CSR accesses.

func readSstatus() uint64
func writeSstatus(v uint64)
func readSepc() uint64
func writeSepc(v uint64)
func readScause() uint64
func readSatp() uint64
func writeSatp(v uint64)
func readSie() uint64
func writeSie(v uint64)
func readSip() uint64
func writeSip(v uint64)
func writeStvec(v uint64)
func readMstatus() uint64
func writeMstatus(v uint64)
func writeMepc(v uint64)
func writeMtvec(v uint64)
func readMie() uint64
func writeMie(v uint64)
func writeMedeleg(v uint64)
func writeMideleg(v uint64)
func writeMscratch(v uint64)
func readMhartid() uint64
func readTp() uint64
func writeTp(v uint64)
func writePmpaddr0(v uint64)
func writePmpcfg0(v uint64)
func sfenceVMA()
func wfi()
func mret()
