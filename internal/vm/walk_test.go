package vm

import (
	"testing"

	"rv6/internal/kalloc"
	"rv6/internal/riscv"
)

func newTestPhysMem(t *testing.T) *PhysMem {
	t.Helper()
	return NewPhysMem(kalloc.NewAllocator(64))
}

func TestMapPagesThenTranslate(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	dataPA := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(0x1000), dataPA, riscv.PageSize, PTERead|PTEWrite|PTEUser); err != nil {
		t.Fatalf("MapPages: %v", err)
	}

	got, ok := pm.Translate(root, VirtAddr(0x1000))
	if !ok {
		t.Fatalf("Translate: expected ok")
	}
	if got != dataPA {
		t.Fatalf("Translate = %#x, want %#x", got, dataPA)
	}
}

func TestTranslateRejectsNonUserMapping(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	dataPA := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(0x2000), dataPA, riscv.PageSize, PTERead|PTEWrite); err != nil {
		t.Fatalf("MapPages: %v", err)
	}

	if _, ok := pm.Translate(root, VirtAddr(0x2000)); ok {
		t.Fatalf("Translate: expected a kernel-only mapping to be rejected")
	}
}

func TestTranslateUnmappedFails(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	if _, ok := pm.Translate(root, VirtAddr(0x3000)); ok {
		t.Fatalf("Translate: expected failure on an unmapped address")
	}
}

func TestMapPagesRejectsRemap(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	pa1 := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(0x1000), pa1, riscv.PageSize, PTERead); err != nil {
		t.Fatalf("first MapPages: %v", err)
	}

	pa2 := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(0x1000), pa2, riscv.PageSize, PTERead); err != ErrRemap {
		t.Fatalf("MapPages over an existing leaf = %v, want ErrRemap", err)
	}
}

func TestMapPagesMapsAdjacentPages(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	pas := make([]PhysAddr, 3)
	for i := range pas {
		pas[i] = pm.MustAllocPageFatal()
	}
	for i, pa := range pas {
		va := VirtAddr(uint64(i) * riscv.PageSize)
		if err := pm.MapPages(root, va, pa, riscv.PageSize, PTERead|PTEUser); err != nil {
			t.Fatalf("MapPages page %d: %v", i, err)
		}
	}
	for i, pa := range pas {
		va := VirtAddr(uint64(i) * riscv.PageSize)
		got, ok := pm.Translate(root, va)
		if !ok || got != pa {
			t.Fatalf("Translate page %d = (%#x, %v), want (%#x, true)", i, got, ok, pa)
		}
	}
}

func TestUnmapPagesFreesAndClears(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	dataPA := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(0x4000), dataPA, riscv.PageSize, PTERead|PTEUser); err != nil {
		t.Fatalf("MapPages: %v", err)
	}

	if err := pm.UnmapPages(root, VirtAddr(0x4000), 1, true); err != nil {
		t.Fatalf("UnmapPages: %v", err)
	}

	if _, ok := pm.Translate(root, VirtAddr(0x4000)); ok {
		t.Fatalf("Translate: expected failure after Unmap")
	}
}

func TestUnmapPagesNotMappedFails(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	if err := pm.UnmapPages(root, VirtAddr(0x5000), 1, false); err != ErrNotMapped {
		t.Fatalf("UnmapPages on unmapped va = %v, want ErrNotMapped", err)
	}
}

func TestUnmapPagesRejectsUnalignedVA(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	if err := pm.UnmapPages(root, VirtAddr(0x1001), 1, false); err == nil {
		t.Fatalf("expected an error for an unaligned va")
	}
}

func TestFreePageTableRejectsLeaf(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	dataPA := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(0x1000), dataPA, riscv.PageSize, PTERead); err != nil {
		t.Fatalf("MapPages: %v", err)
	}

	if err := pm.FreePageTable(root); err == nil {
		t.Fatalf("expected FreePageTable to reject a table still holding a leaf")
	}
}

func TestFreePageTableRecursesThroughInteriorLevels(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	// Mapping any single page allocates a level-one and a level-zero
	// interior table along the way.
	dataPA := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(0), dataPA, riscv.PageSize, PTERead); err != nil {
		t.Fatalf("MapPages: %v", err)
	}
	if err := pm.UnmapPages(root, VirtAddr(0), 1, false); err != nil {
		t.Fatalf("UnmapPages: %v", err)
	}
	if err := pm.FreePageTable(root); err != nil {
		t.Fatalf("FreePageTable: %v", err)
	}
}

func TestMapPagesRejectsVAOverMax(t *testing.T) {
	pm := newTestPhysMem(t)
	rootPA := pm.MustAllocPageFatal()
	root := pm.PageTableAt(rootPA)

	pa := pm.MustAllocPageFatal()
	if err := pm.MapPages(root, VirtAddr(riscv.MaxVA), pa, riscv.PageSize, PTERead); err != ErrVAOverMax {
		t.Fatalf("MapPages at MaxVA = %v, want ErrVAOverMax", err)
	}
}
