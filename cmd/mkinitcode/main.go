// Command mkinitcode turns an assembled RISC-V ELF binary for the
// kernel's single init process into a Go source file defining the byte
// blob InitUVM copies into virtual address 0 — the host-side build-time
// step SPEC_FULL.md §4.7 describes in place of an ELF loader (spec.md §1
// excludes user-space ELF loading from the kernel itself).
//
// The original xv6-family build performs this step with objcopy and a
// linker script; this version reads the ELF directly, the same way
// chentry.go rewrites an ELF header in place rather than shelling out.
package main

import (
	"debug/elf"
	"fmt"
	"log"
	"os"
)

// maxInitcodeSize matches riscv.PageSize: InitUVM rejects anything
// larger, since it maps the blob into a single page (spec.md's
// single-pre-built-image non-goal).
const maxInitcodeSize = 4096

func usage(me string) {
	fmt.Printf("%s <elf-file> <output.go>\n\nEmit the loadable bytes of <elf-file> as a Go []byte literal in <output.go>.\n", me)
	os.Exit(1)
}

func main() {
	if len(os.Args) != 3 {
		usage(os.Args[0])
	}
	inPath, outPath := os.Args[1], os.Args[2]

	f, err := os.Open(inPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		log.Fatal(err)
	}
	chkELF(&ef.FileHeader)

	blob, err := extractImage(ef)
	if err != nil {
		log.Fatal(err)
	}

	if err := writeGoSource(outPath, blob); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %d bytes from %s to %s\n", len(blob), inPath, outPath)
}

// chkELF validates that inPath is the kind of binary this kernel can
// actually load: a little-endian 64-bit RISC-V executable entering at
// virtual address 0, matching InitUVM's assumption that the whole image
// starts at VA 0. The ELF magic itself is already checked by elf.NewFile.
func chkELF(eh *elf.FileHeader) {
	if eh.Data != elf.ELFDATA2LSB {
		log.Fatal("not little-endian?")
	}
	if eh.Class != elf.ELFCLASS64 {
		log.Fatal("not a 64-bit elf")
	}
	if eh.Type != elf.ET_EXEC {
		log.Fatal("not an executable elf")
	}
	if eh.Machine != elf.EM_RISCV {
		log.Fatal("not a riscv elf")
	}
	if eh.Entry != 0 {
		log.Fatalf("entry is 0x%x, not 0; init process must enter at VA 0", eh.Entry)
	}
}

// extractImage lays out every PT_LOAD segment at its virtual address
// within a single page-sized buffer, the same flattening a linker script
// placing everything in [0, PAGESIZE) would produce.
func extractImage(ef *elf.File) ([]byte, error) {
	blob := make([]byte, maxInitcodeSize)
	maxEnd := 0
	for _, prog := range ef.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		end := int(prog.Vaddr) + int(prog.Filesz)
		if end > maxInitcodeSize {
			return nil, fmt.Errorf("segment at 0x%x+0x%x overflows one page", prog.Vaddr, prog.Filesz)
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("reading segment at 0x%x: %w", prog.Vaddr, err)
		}
		copy(blob[prog.Vaddr:], data)
		if end > maxEnd {
			maxEnd = end
		}
	}
	if maxEnd == 0 {
		return nil, fmt.Errorf("no PT_LOAD segments found")
	}
	return blob[:maxEnd], nil
}

// writeGoSource emits a ready-to-compile replacement for
// internal/initcode's hand-written placeholder.
func writeGoSource(path string, blob []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	fmt.Fprintln(out, "// Code generated by cmd/mkinitcode. DO NOT EDIT.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "package initcode")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "// Blob is copied into virtual address 0 of the init process's address")
	fmt.Fprintln(out, "// space by Scheduler.InitUserproc.")
	fmt.Fprintf(out, "var Blob = []byte{")
	for i, b := range blob {
		if i%12 == 0 {
			fmt.Fprintf(out, "\n\t")
		}
		fmt.Fprintf(out, "0x%02x, ", b)
	}
	fmt.Fprintln(out, "\n}")
	return nil
}
