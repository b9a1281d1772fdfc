package types

import (
	"slices"
	"strings"
)

var VALID_ARCHS = []Arch{
	ArchIA32, ArchX64, ArchIPF, ArchEBC, ArchARM,
	ArchAARCH64, ArchRISCV64, ArchLOONGARCH64, ArchCommon,
}

type Arch string

const (
	ArchIA32        Arch = "IA32"
	ArchX64         Arch = "X64"
	ArchIPF         Arch = "IPF"
	ArchEBC         Arch = "EBC"
	ArchARM         Arch = "ARM"
	ArchAARCH64     Arch = "AARCH64"
	ArchRISCV64     Arch = "RISCV64"
	ArchLOONGARCH64 Arch = "LOONGARCH64"
	ArchCommon      Arch = "COMMON"
)

func ParseArch(raw string) (Arch, bool) {
	a := Arch(strings.ToUpper(strings.TrimSpace(raw)))
	return a, a.IsValid()
}

func (a Arch) IsValid() bool { return slices.Contains(VALID_ARCHS, a) }
