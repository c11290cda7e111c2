package vm

import (
	"rv6/internal/memlayout"
	"rv6/internal/riscv"
)

// TrampolineBlob is a placeholder for the assembled uservec/userret
// machine code. The real bytes come from trampoline.S (an assembly
// collaborator per spec.md §1's boot-assembly-prologue non-goal); this
// kernel copies whatever blob it is handed into a fresh physical page so
// the rest of the VM setup logic — which is the part this spec actually
// asks to be implemented — can be exercised without a real assembler.
var TrampolineBlob = []byte{0x73, 0x00, 0x50, 0x10} // wfi; placeholder body

// Kernel owns the kernel's root page table and the physical page backing
// the trampoline, plus the allocator every mapping call draws from.
// Grounded on biscuit's vm.Vm_t (a mutex-free analogue here, since the
// kernel table is installed read-only after init per spec.md §9's
// "Global mutable state" note).
type Kernel struct {
	PM           *PhysMem
	Root         *PageTable
	TrampolinePA PhysAddr
	NProc        int
}

// NewKernel allocates the root page table and copies in the trampoline
// blob. It does not yet install any mappings; call InitKVM for that.
func NewKernel(pm *PhysMem, nproc int) *Kernel {
	rootPA := pm.MustAllocPageFatal()
	trampPA := pm.MustAllocPageFatal()
	copy(pm.BytesAt(trampPA)[:], TrampolineBlob)
	return &Kernel{PM: pm, Root: pm.PageTableAt(rootPA), TrampolinePA: trampPA, NProc: nproc}
}

func (k *Kernel) mustMap(va VirtAddr, pa PhysAddr, size uint64, perm PTEFlag) {
	if err := k.PM.MapPages(k.Root, va, pa, size, perm); err != nil {
		panic("init_kvm: " + err.Error())
	}
}

// InitKVM constructs the kernel page table: UART and VIRTIO register
// windows, the PLIC's 4 MiB window, kernel text as R+X, kernel data/RAM
// as R+W, the trampoline as R+X at the fixed high VA, and one guarded
// kernel stack per process slot. Grounded on kvm.rs's init_kvm, using the
// same address ranges from memlayout (ported from memorylayout.rs).
//
// etext and phystop mark the end of the kernel's executable text and the
// end of usable physical RAM respectively; a real boot reads the first
// from the linker script's _etext symbol.
func (k *Kernel) InitKVM(etext, phystop uint64) {
	k.mustMap(VirtAddr(memlayout.UART0), PhysAddr(memlayout.UART0), riscv.PageSize, PTERead|PTEWrite)
	k.mustMap(VirtAddr(memlayout.VIRTIO0), PhysAddr(memlayout.VIRTIO0), riscv.PageSize, PTERead|PTEWrite)
	k.mustMap(VirtAddr(memlayout.PLICBase), PhysAddr(memlayout.PLICBase), 4*1024*1024, PTERead|PTEWrite)
	k.mustMap(VirtAddr(memlayout.KernelBase), PhysAddr(memlayout.KernelBase), etext-memlayout.KernelBase, PTERead|PTEExec)
	k.mustMap(VirtAddr(etext), PhysAddr(etext), phystop-etext, PTERead|PTEWrite)
	k.mustMap(VirtAddr(memlayout.Trampoline), k.TrampolinePA, riscv.PageSize, PTERead|PTEExec)

	for i := 0; i < k.NProc; i++ {
		pa := k.PM.MustAllocPageFatal()
		k.mustMap(VirtAddr(memlayout.Kstack(i)), pa, riscv.PageSize, PTERead|PTEWrite)
	}
}

// InitPage writes satp selecting Sv39 mode and this kernel's root table,
// then flushes the TLB. Called once per hart after InitKVM has run on
// hart 0 (and after every hart has observed KERNEL_STARTED).
func (k *Kernel) InitPage() {
	riscv.MakeSv39Satp(uint64(k.PM.AddrOf(k.Root))).Write()
	riscv.SfenceVMA()
}

// InitUserPagetable allocates a fresh root page table for a process and
// maps the trampoline (R+X) and trapframe (R+W) into it; neither carries
// PTEUser, since only the supervisor ever touches them directly — the
// user program only ever reaches the trampoline via sret/ecall, never a
// load/store instruction. On any mapping failure it unwinds whatever it
// already installed and frees the root, returning ok=false.
//
// This takes the trapframe's physical address directly rather than a
// *proc.Proc, because proc.Proc embeds a *vm.PageTable and taking the
// whole struct here would create an import cycle between internal/vm and
// internal/proc; internal/proc.AllocProcess calls this with
// p.TrapFramePA. Grounded on kvm.rs's init_user_pagetable.
func (k *Kernel) InitUserPagetable(trapframePA PhysAddr) (*PageTable, bool) {
	rootPA, ok := k.PM.AllocPage()
	if !ok {
		return nil, false
	}
	root := k.PM.PageTableAt(rootPA)

	if err := k.PM.MapPages(root, VirtAddr(memlayout.Trampoline), k.TrampolinePA, riscv.PageSize, PTERead|PTEExec); err != nil {
		k.PM.FreePage(rootPA)
		return nil, false
	}
	if err := k.PM.MapPages(root, VirtAddr(memlayout.Trapframe), trapframePA, riscv.PageSize, PTERead|PTEWrite); err != nil {
		_ = k.PM.UnmapPages(root, VirtAddr(memlayout.Trampoline), 1, false)
		k.PM.FreePage(rootPA)
		return nil, false
	}
	return root, true
}

// InitUVM allocates one zeroed page, maps virtual address 0 with
// R+W+X+U, and copies code into it. code must fit in a single page — a
// consequence of this kernel loading a single pre-built initcode blob
// rather than an ELF loader (spec.md §1 non-goals).
func (k *Kernel) InitUVM(root *PageTable, code []byte) {
	if len(code) > riscv.PageSize {
		panic("init_uvm: code does not fit in one page")
	}
	pa := k.PM.MustAllocPageFatal()
	page := k.PM.BytesAt(pa)
	copy(page[:], code)
	if err := k.PM.MapPages(root, VirtAddr(0), pa, riscv.PageSize, PTERead|PTEWrite|PTEExec|PTEUser); err != nil {
		panic("init_uvm: " + err.Error())
	}
}

// ClearUserPagetable unmaps TRAMPOLINE and TRAPFRAME (without freeing —
// the trampoline is shared, and the trapframe page belongs to the
// process, freed separately by the caller), then unmaps and frees the
// user image [0, memSize), and finally frees the now-empty table itself.
func (k *Kernel) ClearUserPagetable(root *PageTable, rootPA PhysAddr, memSize uint64) {
	if err := k.PM.UnmapPages(root, VirtAddr(memlayout.Trampoline), 1, false); err != nil {
		panic("clear_user_pagetable: " + err.Error())
	}
	if err := k.PM.UnmapPages(root, VirtAddr(memlayout.Trapframe), 1, false); err != nil {
		panic("clear_user_pagetable: " + err.Error())
	}
	if memSize > 0 {
		npages := int((memSize + riscv.PageSize - 1) / riscv.PageSize)
		if err := k.PM.UnmapPages(root, VirtAddr(0), npages, true); err != nil {
			panic("clear_user_pagetable: " + err.Error())
		}
	}
	if err := k.PM.FreePageTable(root); err != nil {
		panic("clear_user_pagetable: " + err.Error())
	}
	k.PM.FreePage(rootPA)
}

// CopyInStr walks the user page table to translate userAddr, then copies
// bytes into dst until it has copied min(len(dst), PAGESIZE-offset)
// bytes or hits a NUL, whichever comes first. It returns the copied
// length (excluding the NUL) and ok=false if userAddr is unmapped or not
// user-accessible. Multi-page strings are unsupported, matching
// spec.md §9's note about the original implementation.
func (k *Kernel) CopyInStr(root *PageTable, userAddr VirtAddr, dst []byte) (int, bool) {
	pa, ok := k.PM.Translate(root, userAddr)
	if !ok {
		return 0, false
	}
	offset := userAddr.PageOffset()
	page := k.PM.BytesAt(pa)
	max := riscv.PageSize - int(offset)
	if max > len(dst) {
		max = len(dst)
	}
	for i := 0; i < max; i++ {
		c := page[int(offset)+i]
		if c == 0 {
			return i, true
		}
		dst[i] = c
	}
	return max, true
}
