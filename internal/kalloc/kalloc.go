// Package kalloc is the black-box physical page allocator collaborator
// described in spec.md §4.1: it hands out freshly zeroed, page-aligned
// 4 KiB frames and takes them back. Every other kernel subsystem treats a
// nil return as recoverable except during boot, where it is fatal.
//
// Grounded on biscuit's mem.Physmem free-list design (mem/mem.go's
// Refpg_new/_phys_new/_phys_put), simplified to drop biscuit's reference
// counting and per-CPU free lists: this spec has no copy-on-write or
// shared mappings (§1 non-goals exclude fork/exec and mmap), so a single
// mutex-guarded intrusive free list is the whole contract.
package kalloc

import "sync"

// PageSize matches riscv.PageSize; duplicated as an untyped constant here
// so this package has no import cycle risk with internal/riscv.
const PageSize = 4096

// Page is one physical page-sized buffer. Its address, not its Go
// identity, is what the rest of the kernel cares about: callers take
// unsafe.Pointer(&page[0]) to get a physical address in this simulated
// identity-mapped host model (see internal/vm/doc.go).
type Page [PageSize]byte

type freeNode struct {
	page *Page
	next *freeNode
}

// Allocator is a page-aligned free-list allocator over a fixed arena,
// the Go-hosted-test analogue of the real kernel reading the _END linker
// symbol and claiming [_END, PHYSTOP) as its heap.
type Allocator struct {
	mu   sync.Mutex
	free *freeNode
}

// NewAllocator seeds the free list with npages fresh pages. A real boot
// calls this once, computing npages from PHYSTOP minus the kernel image.
func NewAllocator(npages int) *Allocator {
	a := &Allocator{}
	for i := 0; i < npages; i++ {
		a.Free(&Page{})
	}
	return a
}

// Alloc returns a freshly zeroed page, or nil if the allocator is
// exhausted. Every caller outside of boot must treat nil as recoverable.
func (a *Allocator) Alloc() *Page {
	a.mu.Lock()
	n := a.free
	if n == nil {
		a.mu.Unlock()
		return nil
	}
	a.free = n.next
	a.mu.Unlock()
	for i := range n.page {
		n.page[i] = 0
	}
	return n.page
}

// Free returns a previously allocated page to the allocator.
func (a *Allocator) Free(p *Page) {
	a.mu.Lock()
	a.free = &freeNode{page: p, next: a.free}
	a.mu.Unlock()
}

// MustAllocFatal allocates a page or panics, for boot-time call sites
// where spec.md §4.1/§7 requires a nil return to be fatal.
func (a *Allocator) MustAllocFatal() *Page {
	p := a.Alloc()
	if p == nil {
		panic("kalloc: out of memory during boot")
	}
	return p
}
