package vm

import (
	"unsafe"

	"rv6/internal/kalloc"
)

// PhysMem is the black-box physical-page allocator contract (spec.md
// §4.1) wrapped with the pointer arithmetic the page-table walker needs:
// a physical address assigned by Alloc is simply the host address of the
// backing kalloc.Page, so this kernel can be exercised by host-run tests
// without a real MMU — exactly the "host-runnable logic" split SPEC_FULL
// calls for. A real boot instead runs atop identity-mapped DRAM, where
// the same arithmetic holds for free.
type PhysMem struct {
	alloc *kalloc.Allocator
}

// NewPhysMem wraps an allocator for use by the VM package.
func NewPhysMem(alloc *kalloc.Allocator) *PhysMem { return &PhysMem{alloc: alloc} }

// AllocPage returns a freshly zeroed page's physical address, or ok=false
// on exhaustion.
func (m *PhysMem) AllocPage() (PhysAddr, bool) {
	p := m.alloc.Alloc()
	if p == nil {
		return 0, false
	}
	return PhysAddr(uintptr(unsafe.Pointer(p))), true
}

// MustAllocPageFatal allocates or panics, for boot call sites where a
// nil page is fatal per spec.md §4.1/§7.
func (m *PhysMem) MustAllocPageFatal() PhysAddr {
	return PhysAddr(uintptr(unsafe.Pointer(m.alloc.MustAllocFatal())))
}

// FreePage returns pa's backing page to the allocator.
func (m *PhysMem) FreePage(pa PhysAddr) {
	m.alloc.Free((*kalloc.Page)(unsafe.Pointer(uintptr(pa))))
}

// PageTableAt reinterprets the page at pa as a PageTable.
func (m *PhysMem) PageTableAt(pa PhysAddr) *PageTable {
	return (*PageTable)(unsafe.Pointer(uintptr(pa)))
}

// BytesAt reinterprets the page at pa as a raw byte page.
func (m *PhysMem) BytesAt(pa PhysAddr) *kalloc.Page {
	return (*kalloc.Page)(unsafe.Pointer(uintptr(pa)))
}

// AddrOf returns the physical address backing an already-allocated page
// table (the inverse of PageTableAt).
func (m *PhysMem) AddrOf(table *PageTable) PhysAddr {
	return PhysAddr(uintptr(unsafe.Pointer(table)))
}
