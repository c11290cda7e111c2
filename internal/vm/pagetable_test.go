package vm

import "testing"

func TestPageTableEntrySetAddrRoundTrips(t *testing.T) {
	var e PageTableEntry
	e.SetAddr(0x8000_1000, PTEValid|PTERead|PTEWrite)
	if e.Addr() != 0x8000_1000 {
		t.Fatalf("Addr() = %#x, want 0x80001000", e.Addr())
	}
	if !e.IsValid() || !e.IsLeaf() {
		t.Fatalf("expected a valid leaf entry")
	}
	if !e.Has(PTERead | PTEWrite) {
		t.Fatalf("expected Has(R|W) to report true")
	}
}

func TestPageTableEntryInteriorIsNotLeaf(t *testing.T) {
	var e PageTableEntry
	e.SetAddr(0x8000_2000, PTEValid)
	if e.IsLeaf() {
		t.Fatalf("an entry with no R/W/X bits must not be a leaf")
	}
}

func TestPageTableEntrySetAddrRejectsUnaligned(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected SetAddr to panic on an unaligned address")
		}
	}()
	var e PageTableEntry
	e.SetAddr(0x1001, PTEValid)
}

func TestPageTableEntryIsUnused(t *testing.T) {
	var e PageTableEntry
	if !e.IsUnused() {
		t.Fatalf("zero value entry should be unused")
	}
	e.SetAddr(0x1000, PTEValid)
	if e.IsUnused() {
		t.Fatalf("entry should no longer be unused after SetAddr")
	}
	e.SetUnused()
	if !e.IsUnused() {
		t.Fatalf("SetUnused should clear the entry")
	}
}

func TestPageTableLevelNextLevel(t *testing.T) {
	next, ok := LevelTwo.NextLevel()
	if !ok || next != LevelOne {
		t.Fatalf("LevelTwo.NextLevel() = (%v, %v), want (LevelOne, true)", next, ok)
	}
	next, ok = LevelOne.NextLevel()
	if !ok || next != LevelZero {
		t.Fatalf("LevelOne.NextLevel() = (%v, %v), want (LevelZero, true)", next, ok)
	}
	if _, ok = LevelZero.NextLevel(); ok {
		t.Fatalf("LevelZero.NextLevel() should report false")
	}
}
