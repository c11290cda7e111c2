// Package uart drives the NS16550A-compatible console UART at
// memlayout.UART0: polled transmit and an interrupt-driven echo-only
// receive path. Grounded on original_source/src/uart.rs (register offsets,
// LSR busy-wait) and src/console.rs (the interrupt handler's echo
// behavior), collapsed into a single package since this kernel implements
// no line-editing, no backspace/kill-line handling, and no reader-facing
// API — spec.md's non-goals exclude a real shell, leaving only "echo what
// arrives" as the observable behavior worth keeping.
package uart

import (
	"sync"

	"rv6/internal/memlayout"
	"rv6/internal/mmio"
)

const (
	regTHR = 0 // transmit holding register (write)
	regRBR = 0 // receive buffer register (read)
	regIER = 1 // interrupt enable register
	regISR = 2 // interrupt status register
	regLCR = 3 // line control register
	regMCR = 4 // modem control register
	regLSR = 5 // line status register

	lsrTxIdle = 1 << 5
	lsrRxFull = 1 << 0

	ierRxEnable = 1 << 0
)

func reg(offset uint64) uint64 { return memlayout.UART0 + offset }

// mu serializes access to the UART across harts (Puts, Writer and
// HandleInterrupt), the same lock console.rs's CONSOLE mutex provides.
// Nothing in this package takes it on a panic; a panic leaves it as it is.
var mu sync.Mutex

// Init enables receive-data-available interrupts. Transmission is always
// polled (spec.md §6 models UART as a synchronous collaborator for
// output), so only IER's receive bit is set.
func Init() {
	mmio.WriteU32Fn(reg(regIER), ierRxEnable)
}

// Putc blocks until the transmit holding register is empty, then writes
// one byte. Safe to call with mu held or not; it takes no lock itself, so
// Puts and Writer can call it while holding mu.
func Putc(c byte) {
	for mmio.ReadU32Fn(reg(regLSR))&lsrTxIdle == 0 {
	}
	mmio.WriteU32Fn(reg(regTHR), uint32(c))
}

// Puts writes every byte of s via Putc, taking the console lock for the
// duration so concurrent writers from different harts don't interleave.
func Puts(s string) {
	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < len(s); i++ {
		Putc(s[i])
	}
}

// Write implements io.Writer so the kernel's fmt.Fprintf-based logging
// (SPEC_FULL.md §1.1) can target the console directly.
type Writer struct{}

func (Writer) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	for _, b := range p {
		Putc(b)
	}
	return len(p), nil
}

// HandleInterrupt services one receive-data-available interrupt: it reads
// the pending byte and echoes it straight back, the full extent of this
// kernel's console input handling per spec.md's non-goals (no line
// editor, no backspace/kill-line, no blocking read syscall).
func HandleInterrupt() {
	mu.Lock()
	defer mu.Unlock()
	if mmio.ReadU32Fn(reg(regLSR))&lsrRxFull == 0 {
		return
	}
	c := byte(mmio.ReadU32Fn(reg(regRBR)))
	if c != 0 {
		Putc(c)
	}
}
