// Package header detects the binary container of the edited file and exposes
// the small read-only projection of it that plugins see as context.header.
package header

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
)

// Architecture names the instruction set of a detected binary.
type Architecture string

// Known architectures.
const (
	ArchUnknown     Architecture = "Unknown"
	ArchI386        Architecture = "I386"
	ArchX86_64      Architecture = "X86_64"
	ArchArm         Architecture = "Arm"
	ArchAarch64     Architecture = "Aarch64"
	ArchMips        Architecture = "Mips"
	ArchMips64      Architecture = "Mips64"
	ArchPowerPc     Architecture = "PowerPc"
	ArchPowerPc64   Architecture = "PowerPc64"
	ArchRiscv32     Architecture = "Riscv32"
	ArchRiscv64     Architecture = "Riscv64"
	ArchS390x       Architecture = "S390x"
	ArchSparc64     Architecture = "Sparc64"
	ArchLoongArch64 Architecture = "LoongArch64"
)

// Format identifies the container format.
type Format int

// Container formats.
const (
	FormatNone Format = iota
	FormatELF
	FormatPE
	FormatMachO
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatELF:
		return "ELF"
	case FormatPE:
		return "PE"
	case FormatMachO:
		return "Mach-O"
	default:
		return "None"
	}
}

// View is the read-only header projection.
type View struct {
	Format       Format
	Bitness      uint32
	Architecture Architecture
	EntryPoint   uint64
}

// Default is the view used when no known container is recognized.
var Default = View{
	Format:       FormatNone,
	Bitness:      64,
	Architecture: ArchUnknown,
	EntryPoint:   0,
}

// Detect inspects data and returns its header view, or Default.
func Detect(data []byte) View {
	switch {
	case bytes.HasPrefix(data, []byte(elf.ELFMAG)):
		if v, ok := detectELF(data); ok {
			return v
		}
	case bytes.HasPrefix(data, []byte("MZ")):
		if v, ok := detectPE(data); ok {
			return v
		}
	case isMachO(data):
		if v, ok := detectMachO(data); ok {
			return v
		}
	}
	return Default
}

func detectELF(data []byte) (View, bool) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return View{}, false
	}
	defer f.Close()

	v := View{
		Format:       FormatELF,
		Bitness:      64,
		Architecture: elfArch(f.Machine, f.Class),
		EntryPoint:   f.Entry,
	}
	if f.Class == elf.ELFCLASS32 {
		v.Bitness = 32
	}
	return v, true
}

func elfArch(m elf.Machine, class elf.Class) Architecture {
	switch m {
	case elf.EM_386:
		return ArchI386
	case elf.EM_X86_64:
		return ArchX86_64
	case elf.EM_ARM:
		return ArchArm
	case elf.EM_AARCH64:
		return ArchAarch64
	case elf.EM_MIPS:
		if class == elf.ELFCLASS64 {
			return ArchMips64
		}
		return ArchMips
	case elf.EM_PPC:
		return ArchPowerPc
	case elf.EM_PPC64:
		return ArchPowerPc64
	case elf.EM_RISCV:
		if class == elf.ELFCLASS64 {
			return ArchRiscv64
		}
		return ArchRiscv32
	case elf.EM_S390:
		return ArchS390x
	case elf.EM_SPARCV9:
		return ArchSparc64
	case elf.EM_LOONGARCH:
		return ArchLoongArch64
	default:
		return ArchUnknown
	}
}

func detectPE(data []byte) (View, bool) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return View{}, false
	}
	defer f.Close()

	v := View{
		Format:       FormatPE,
		Architecture: peArch(f.Machine),
	}
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		v.Bitness = 32
		v.EntryPoint = uint64(oh.AddressOfEntryPoint)
	case *pe.OptionalHeader64:
		v.Bitness = 64
		v.EntryPoint = uint64(oh.AddressOfEntryPoint)
	default:
		v.Bitness = 64
	}
	return v, true
}

func peArch(m uint16) Architecture {
	switch m {
	case pe.IMAGE_FILE_MACHINE_I386:
		return ArchI386
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return ArchX86_64
	case pe.IMAGE_FILE_MACHINE_ARM, pe.IMAGE_FILE_MACHINE_ARMNT:
		return ArchArm
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return ArchAarch64
	case pe.IMAGE_FILE_MACHINE_RISCV32:
		return ArchRiscv32
	case pe.IMAGE_FILE_MACHINE_RISCV64:
		return ArchRiscv64
	case pe.IMAGE_FILE_MACHINE_LOONGARCH64:
		return ArchLoongArch64
	default:
		return ArchUnknown
	}
}

func isMachO(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	le := binary.LittleEndian.Uint32(data)
	be := binary.BigEndian.Uint32(data)
	for _, magic := range []uint32{macho.Magic32, macho.Magic64} {
		if le == magic || be == magic {
			return true
		}
	}
	return false
}

// loadCmdMain is LC_MAIN; its payload starts with the entry file offset.
const loadCmdMain = 0x80000028

func detectMachO(data []byte) (View, bool) {
	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return View{}, false
	}
	defer f.Close()

	v := View{
		Format:       FormatMachO,
		Bitness:      32,
		Architecture: machoArch(f.Cpu),
	}
	if f.Magic == macho.Magic64 {
		v.Bitness = 64
	}
	for _, l := range f.Loads {
		raw := l.Raw()
		if len(raw) >= 16 && f.ByteOrder.Uint32(raw) == loadCmdMain {
			v.EntryPoint = f.ByteOrder.Uint64(raw[8:])
			break
		}
	}
	return v, true
}

func machoArch(c macho.Cpu) Architecture {
	switch c {
	case macho.Cpu386:
		return ArchI386
	case macho.CpuAmd64:
		return ArchX86_64
	case macho.CpuArm:
		return ArchArm
	case macho.CpuArm64:
		return ArchAarch64
	case macho.CpuPpc:
		return ArchPowerPc
	case macho.CpuPpc64:
		return ArchPowerPc64
	default:
		return ArchUnknown
	}
}
