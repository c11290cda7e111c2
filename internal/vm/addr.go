// Package vm implements Sv39 virtual memory: address types, page tables,
// the walk/map/unmap/translate visitors, kernel and user address-space
// setup, and user-memory copy-in. Grounded on biscuit's vm/as.go for the
// package shape (an address-space type owning a root table plus an
// allocator, exposing small single-purpose methods) and on
// original_source/src/kvm.rs for Sv39-specific semantics (three 9-bit
// levels, map_pages/map_page/unmap_pages recursion, MAXVA rejection).
package vm

import (
	"fmt"

	"rv6/internal/riscv"
	"rv6/internal/util"
)

// VirtAddr is an Sv39 virtual address. Valid values sign-extend bit 38
// through bits 39..64, per spec.md §3.
type VirtAddr uint64

// ErrInvalidVirtAddr is returned by NewVirtAddr when the high bits of x
// are not a sign extension of bit 38.
var ErrInvalidVirtAddr = fmt.Errorf("invalid virtual address: not sign-extended from bit 38")

// NewVirtAddr validates x as a canonical Sv39 address.
func NewVirtAddr(x uint64) (VirtAddr, error) {
	top := x >> 38
	if top != 0 && top != (1<<26)-1 {
		return 0, ErrInvalidVirtAddr
	}
	return VirtAddr(x), nil
}

// NewVirtAddrTruncate builds a VirtAddr from x, sign-extending bit 38 into
// bits 39..64 rather than rejecting the input. Used where a VA is
// constructed from va + size arithmetic that may run past the canonical
// range before being rounded back down (original_source's
// VirtAddr::new_truncate, used by map_pages' va_end computation).
func NewVirtAddrTruncate(x uint64) VirtAddr {
	const bit38 = uint64(1) << 38
	const low39 = uint64(1)<<39 - 1
	if x&bit38 != 0 {
		x |= ^low39
	} else {
		x &= low39
	}
	return VirtAddr(x)
}

// Uint64 returns the raw address value.
func (v VirtAddr) Uint64() uint64 { return uint64(v) }

// AlignDown rounds v down to the nearest multiple of pageSize (4 KiB).
func (v VirtAddr) AlignDown() VirtAddr {
	return VirtAddr(util.Rounddown(uint64(v), uint64(riscv.PageSize)))
}

// AlignUp rounds v up to the nearest multiple of pageSize (4 KiB).
func (v VirtAddr) AlignUp() VirtAddr {
	return VirtAddr(util.Roundup(uint64(v), uint64(riscv.PageSize)))
}

// Add returns v+off, truncated back into canonical Sv39 form so that
// address arithmetic crossing the MAXVA boundary does not panic before
// the caller gets a chance to reject it explicitly.
func (v VirtAddr) Add(off uint64) VirtAddr {
	return NewVirtAddrTruncate(uint64(v) + off)
}

// PageOffset returns the low 12 bits of v.
func (v VirtAddr) PageOffset() uint64 { return uint64(v) & (riscv.PageSize - 1) }

// index returns the 9-bit page-table index for the given level.
func (v VirtAddr) index(level PageTableLevel) uint64 {
	shift := 12 + 9*uint(level)
	return (uint64(v) >> shift) & 0x1ff
}

// PhysAddr is a 56-bit physical address (bits 56..64 must be zero).
type PhysAddr uint64

// ErrInvalidPhysAddr is returned by NewPhysAddr when bits 56..64 are set.
var ErrInvalidPhysAddr = fmt.Errorf("invalid physical address: bits 56..64 must be zero")

// NewPhysAddr validates x as representable in a 56-bit physical address.
func NewPhysAddr(x uint64) (PhysAddr, error) {
	if x>>56 != 0 {
		return 0, ErrInvalidPhysAddr
	}
	return PhysAddr(x), nil
}

// Uint64 returns the raw address value.
func (p PhysAddr) Uint64() uint64 { return uint64(p) }

// AlignDown rounds p down to the nearest multiple of pageSize (4 KiB).
func (p PhysAddr) AlignDown() PhysAddr {
	return PhysAddr(util.Rounddown(uint64(p), uint64(riscv.PageSize)))
}

// AlignUp rounds p up to the nearest multiple of pageSize (4 KiB).
func (p PhysAddr) AlignUp() PhysAddr {
	return PhysAddr(util.Roundup(uint64(p), uint64(riscv.PageSize)))
}

// Add returns p+off.
func (p PhysAddr) Add(off uint64) PhysAddr { return PhysAddr(uint64(p) + off) }

// AsPTE shifts p into the physical-page-number field used by a
// page-table-entry's address bits: PPN occupies PTE bits 10..54, i.e. a
// physical address's bits 12..56 shifted left by 10.
func (p PhysAddr) AsPTE() uint64 { return (uint64(p) >> 12) << 10 }
