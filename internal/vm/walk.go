package vm

import (
	"fmt"

	"rv6/internal/riscv"
)

// ErrVAOverMax is returned when a virtual address is >= MAXVA.
var ErrVAOverMax = fmt.Errorf("virtual address over MAXVA")

// ErrRemap is returned by MapPages when a target leaf is already mapped.
var ErrRemap = fmt.Errorf("map_page: remap")

// ErrKallocFailed is returned when the allocator is exhausted while a
// walk needs a fresh page-table page.
var ErrKallocFailed = fmt.Errorf("kalloc_failed")

// ErrNotMapped is returned by UnmapPages when a target leaf was already
// unmapped — spec.md §7 calls this a bug, surfaced rather than ignored.
var ErrNotMapped = fmt.Errorf("unmap_page: not_mapped")

// ErrNotLeaf is returned by UnmapPages when the target entry exists but
// carries none of R/W/X, i.e. it is an interior pointer, not a leaf.
var ErrNotLeaf = fmt.Errorf("unmap_page: not_leaf")

// ErrWalkMissing is returned by UnmapPages when an interior entry on the
// way down to va is unused. It is the same value as ErrNotMapped: either
// way, nothing is mapped at va.
var ErrWalkMissing = ErrNotMapped

// MapPages installs PTEs for the page-aligned span covering
// [va, va+size), mapping each page in turn to consecutive physical pages
// starting at pa, with the given permission flags plus V. Grounded on
// original_source/src/kvm.rs's map_pages/map_page.
//
// va and size need not be page aligned; per spec.md §4.2 the covered
// span is [align_down(va), align_down(va+size-1)] inclusive.
func (m *PhysMem) MapPages(root *PageTable, va VirtAddr, pa PhysAddr, size uint64, perm PTEFlag) error {
	if size == 0 {
		panic("vm: MapPages with zero size")
	}
	vaStart := va.AlignDown()
	vaEnd := NewVirtAddrTruncate(uint64(va) + size - 1).AlignDown()

	page := vaStart
	for {
		if err := m.mapPage(root, page, pa, perm, LevelTwo); err != nil {
			return err
		}
		if page == vaEnd {
			return nil
		}
		page = page.Add(riscv.PageSize)
		pa = pa.Add(riscv.PageSize)
	}
}

func (m *PhysMem) mapPage(table *PageTable, va VirtAddr, pa PhysAddr, perm PTEFlag, level PageTableLevel) error {
	if va >= VirtAddr(riscv.MaxVA) {
		return ErrVAOverMax
	}
	pte := &table[va.index(level)]
	next, hasNext := level.NextLevel()
	if !hasNext {
		if !pte.IsUnused() {
			return ErrRemap
		}
		pte.SetAddr(pa, perm|PTEValid)
		return nil
	}
	if pte.IsUnused() {
		childPA, ok := m.AllocPage()
		if !ok {
			return ErrKallocFailed
		}
		pte.SetAddr(childPA, PTEValid)
	}
	child := m.PageTableAt(pte.Addr())
	return m.mapPage(child, va, pa, perm, next)
}

// UnmapPages removes npages worth of mappings starting at va, which must
// be page aligned. When free is true, each leaf's physical page is
// returned to the allocator. Grounded on kvm.rs's unmap_pages/unmap_page.
func (m *PhysMem) UnmapPages(root *PageTable, va VirtAddr, npages int, free bool) error {
	if va.AlignDown() != va {
		return fmt.Errorf("unmap_pages: not aligned")
	}
	addr := va
	end := va.Add(uint64(npages) * riscv.PageSize)
	for addr != end {
		if err := m.unmapPage(root, addr, LevelTwo, free); err != nil {
			return err
		}
		addr = addr.Add(riscv.PageSize)
	}
	return nil
}

func (m *PhysMem) unmapPage(table *PageTable, va VirtAddr, level PageTableLevel, free bool) error {
	if va >= VirtAddr(riscv.MaxVA) {
		return ErrVAOverMax
	}
	pte := &table[va.index(level)]
	next, hasNext := level.NextLevel()
	if !hasNext {
		if pte.IsUnused() {
			return ErrNotMapped
		}
		if !pte.IsLeaf() {
			return ErrNotLeaf
		}
		if free {
			m.FreePage(pte.Addr())
		}
		pte.SetUnused()
		return nil
	}
	if pte.IsUnused() {
		return ErrWalkMissing
	}
	child := m.PageTableAt(pte.Addr())
	return m.unmapPage(child, va, next, free)
}

// Translate walks the user page table read-only, returning the physical
// address mapped at va only if the leaf entry is both valid and
// user-accessible (spec.md §4.2's Translator is deliberately a
// user-only accessor — it is used by copy-in paths that must never
// resolve a kernel-only mapping on the caller's behalf).
func (m *PhysMem) Translate(root *PageTable, va VirtAddr) (PhysAddr, bool) {
	table := root
	level := LevelTwo
	for {
		pte := table[va.index(level)]
		next, hasNext := level.NextLevel()
		if !hasNext {
			if pte.Has(PTEValid|PTEUser) && pte.IsLeaf() {
				return pte.Addr(), true
			}
			return 0, false
		}
		if !pte.Has(PTEValid) {
			return 0, false
		}
		table = m.PageTableAt(pte.Addr())
		level = next
	}
}

// FreePageTable recursively frees every interior page of root (but not
// root itself — callers free the root explicitly once all of its
// children are gone). Encountering a leaf while recursing down is a bug:
// the caller forgot to unmap, per spec.md §4.2/§7.
func (m *PhysMem) FreePageTable(table *PageTable) error {
	for i := range table {
		pte := &table[i]
		if !pte.Has(PTEValid) {
			continue
		}
		if pte.IsLeaf() {
			return fmt.Errorf("free_pagetable: leaf")
		}
		child := m.PageTableAt(pte.Addr())
		if err := m.FreePageTable(child); err != nil {
			return err
		}
		m.FreePage(pte.Addr())
		pte.SetUnused()
	}
	return nil
}
