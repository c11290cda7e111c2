package vm

import "fmt"

// PTEFlag is a single page-table-entry permission/status bit.
type PTEFlag uint64

const (
	PTEValid PTEFlag = 1 << 0 // V
	PTERead  PTEFlag = 1 << 1 // R
	PTEWrite PTEFlag = 1 << 2 // W
	PTEExec  PTEFlag = 1 << 3 // X
	PTEUser  PTEFlag = 1 << 4 // U
	PTEGlobal PTEFlag = 1 << 5 // G
	PTEAccessed PTEFlag = 1 << 6 // A
	PTEDirty  PTEFlag = 1 << 7 // D

	pteFlagMask = 0x3ff // low 10 bits are flags; bits 10..54 are the PPN
)

// PageTableEntry is one 64-bit Sv39 page-table slot: 10 flag bits
// (V, R, W, X, U, G, A, D, plus two reserved-for-software bits this
// kernel does not use) followed by a 44-bit physical page number.
//
// Invariant (spec.md §3): a valid entry is either a leaf (at least one
// of R/W/X set) or an interior pointer (none of R/W/X set).
type PageTableEntry uint64

// IsValid reports the V bit.
func (e PageTableEntry) IsValid() bool { return PTEFlag(e)&PTEValid != 0 }

// IsUnused reports whether the entry has never been written.
func (e PageTableEntry) IsUnused() bool { return e == 0 }

// IsLeaf reports whether this entry is a leaf (R, W, or X set).
func (e PageTableEntry) IsLeaf() bool {
	return PTEFlag(e)&(PTERead|PTEWrite|PTEExec) != 0
}

// Flags returns the low 10 status/permission bits.
func (e PageTableEntry) Flags() PTEFlag { return PTEFlag(e) & pteFlagMask }

// Has reports whether all bits of want are set.
func (e PageTableEntry) Has(want PTEFlag) bool { return PTEFlag(e)&want == want }

// Addr returns the physical address this entry points at (a child page
// table if IsLeaf() is false, a data page otherwise).
func (e PageTableEntry) Addr() PhysAddr {
	return PhysAddr((uint64(e) >> 10) << 12)
}

// SetUnused clears the entry to zero.
func (e *PageTableEntry) SetUnused() { *e = 0 }

// SetAddr writes pa (which must be page aligned) and flags into the
// entry. It never clears V if flags already request it — spec.md §3's
// invariant that set_addr never silently drops V.
func (e *PageTableEntry) SetAddr(pa PhysAddr, flags PTEFlag) {
	if uint64(pa)&(riscvPageOffsetMask) != 0 {
		panic("pagetable: SetAddr requires a page-aligned physical address")
	}
	*e = PageTableEntry(pa.AsPTE() | uint64(flags))
}

const riscvPageOffsetMask = 0xfff

// PageTableLevel is one of the three Sv39 page-table levels.
type PageTableLevel int

const (
	LevelZero PageTableLevel = iota // leaf-adjacent level, VA bits [12..21)
	LevelOne                        // VA bits [21..30)
	LevelTwo                        // root level, VA bits [30..39)
)

// NextLevel returns the level directly below this one, or (0, false) at
// LevelZero, which has no child (it addresses 4 KiB leaves directly).
func (l PageTableLevel) NextLevel() (PageTableLevel, bool) {
	switch l {
	case LevelTwo:
		return LevelOne, true
	case LevelOne:
		return LevelZero, true
	default:
		return 0, false
	}
}

func (l PageTableLevel) String() string {
	switch l {
	case LevelTwo:
		return "level2"
	case LevelOne:
		return "level1"
	case LevelZero:
		return "level0"
	default:
		return fmt.Sprintf("level?(%d)", int(l))
	}
}

// PageTable is a single page-aligned table of 512 entries, owned by
// exactly one root (the kernel, or a single process) per spec.md §3.
type PageTable [512]PageTableEntry
