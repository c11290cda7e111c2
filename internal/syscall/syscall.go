// Package syscall implements the kernel's table-driven syscall dispatch:
// on ECALL from user mode, the handler reads a7 as the syscall number and
// invokes the matching table entry, writing its return value to a0.
// Grounded on original_source/src/syscall.rs; the sole implemented call
// is write(len, buf), per spec.md §4.6.
package syscall

import (
	"math"

	"rv6/internal/proc"
	"rv6/internal/stats"
	"rv6/internal/uart"
	"rv6/internal/util"
	"rv6/internal/vm"
)

// ArgIndex selects one of a process's six syscall argument registers
// (a0..a5), per spec.md §4.6's get_arg.
type ArgIndex int

const (
	Arg0 ArgIndex = iota
	Arg1
	Arg2
	Arg3
	Arg4
	Arg5
)

// entry is one syscall table slot: a kernel function taking the calling
// process's trapframe-backed arguments, returning the value destined for
// a0.
type entry func(k *vm.Kernel, p *proc.Proc) uint64

// table is indexed by syscall number (a7). Grounded on syscall.rs's
// single-element SYSCALLS array; spec.md §1 non-goals exclude every
// syscall but write.
var table = []entry{
	sysWrite,
}

// maxBufSize bounds how much of a write() call's buffer is copied into
// the kernel per invocation, avoiding an unbounded kernel-side allocation
// driven entirely by an untrusted user-supplied length.
const maxBufSize = 1024

// Dispatch implements the ECALL-from-U-mode syscall path: reads a7,
// invokes the matching table entry (or leaves math.MaxUint64 in a0 if a7
// is out of range), and writes the result back to a0. Called from
// internal/trap's usertrap once it has identified an
// EnvironmentCallFromUMode exception.
func Dispatch(k *vm.Kernel, p *proc.Proc) {
	stats.Counters.Syscalls.Inc()
	id := p.Trapframe.A7()
	var result uint64
	if int(id) < len(table) {
		result = table[id](k, p)
	} else {
		result = math.MaxUint64
	}
	p.Trapframe.SetA0(result)
}

// getArg reads one of the current syscall's six argument registers.
func getArg(p *proc.Proc, i ArgIndex) uint64 {
	return p.Trapframe.Arg(int(i))
}

// sysWrite copies up to len bytes from the user buffer at argument 1 into
// a bounded kernel buffer and emits them via the UART console, returning
// the requested length per spec.md §4.6 (not the possibly smaller count
// actually copied, e.g. on a short user mapping).
func sysWrite(k *vm.Kernel, p *proc.Proc) uint64 {
	requested := getArg(p, Arg0)
	userPtr := vm.VirtAddr(getArg(p, Arg1))

	n := util.Min(requested, uint64(maxBufSize))
	buf := make([]byte, n)
	written, ok := copyIn(k, p, userPtr, buf)
	if ok {
		uart.Puts(string(buf[:written]))
	}
	return requested
}

// copyIn is sysWrite's page-at-a-time copy from user memory, since
// CopyInStr (the only copy primitive spec.md's collaborator contract
// names) stops at the first NUL and is bounded to one page; write's
// payload is neither NUL-terminated nor guaranteed to fit a page, so this
// walks pages directly via Translate instead.
func copyIn(k *vm.Kernel, p *proc.Proc, addr vm.VirtAddr, dst []byte) (int, bool) {
	copied := 0
	for copied < len(dst) {
		pa, ok := k.PM.Translate(p.PageTable, addr)
		if !ok {
			return copied, copied > 0
		}
		offset := int(addr.PageOffset())
		page := k.PM.BytesAt(pa)
		n := util.Min(len(dst)-copied, len(page)-offset)
		copy(dst[copied:copied+n], page[offset:offset+n])
		copied += n
		addr = vm.VirtAddr(uint64(addr) + uint64(n))
	}
	return copied, true
}
