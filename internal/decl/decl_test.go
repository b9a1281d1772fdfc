package decl_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tobsdb/pcddb/internal/database"
	. "github.com/tobsdb/pcddb/internal/decl"
	"github.com/tobsdb/pcddb/internal/types"
	"gotest.tools/assert"
)

const platform_text = `
// Nt32 subset
$MODULE PlatformPei 2e2b3b5a-35ad-4bd0-8a45-f1de3f8f7c43 1.0 IA32 {
    gEfiMdeModulePkgTokenSpaceGuid.PcdResetOnMemoryTypeInformationChange BOOLEAN DYNAMIC PRODUCES default(TRUE)
    gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel UINT32 FixedAtBuild CONSUMES default(0x80000000)
}

$MODULE HelloWorld 6987936e-ed34-44db-ae97-1fa5e4ed2116 1.0 IA32 {
    gEfiMdeModulePkgTokenSpaceGuid.PcdResetOnMemoryTypeInformationChange BOOLEAN FEATURE_FLAG CONSUMES
    gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel UINT32 PATCHABLE_IN_MODULE CONSUMES default(0x80000000)
    gEfiMdeModulePkgTokenSpaceGuid.PcdHelloWorldPrintString VOID* FIXED_AT_BUILD CONSUMES default(L"Hello world") size(64)
}

$OVERRIDE gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel 0x80000040
`

const platform_yaml = `
name: Nt32
modules:
  - name: PlatformPei
    guid: 2E2B3B5A-35AD-4BD0-8A45-F1DE3F8F7C43
    version: "1.0"
    archs: [IA32]
    pcds:
      - token: gEfiMdeModulePkgTokenSpaceGuid.PcdResetOnMemoryTypeInformationChange
        datumType: BOOLEAN
        pcdType: Dynamic
        usage: PRODUCES
        default: "TRUE"
  - name: HelloWorld
    guid: 6987936e-ed34-44db-ae97-1fa5e4ed2116
    version: "1.0"
    archs: [IA32, X64]
    pcds:
      - token: gEfiMdeModulePkgTokenSpaceGuid.PcdResetOnMemoryTypeInformationChange
        datumType: BOOLEAN
        pcdType: FeatureFlag
        usage: SOMETIMES_CONSUMED
      - token: gEfiMdeModulePkgTokenSpaceGuid.PcdHelloWorldPrintTimes
        datumType: UINT32
        pcdType: FixedAtBuild
        usage: CONSUMES
        default: "1"
        archs: [X64]
overrides:
  - token: gEfiMdeModulePkgTokenSpaceGuid.PcdHelloWorldPrintTimes
    value: "3"
`

func TestParseText(t *testing.T) {
	t.Run("platform", func(t *testing.T) {
		p, err := ParseText(platform_text)
		assert.NilError(t, err)

		assert.Equal(t, len(p.Modules), 2)
		assert.Equal(t, p.Modules[0].Name, "PlatformPei")
		assert.DeepEqual(t, p.Modules[0].Archs, []types.Arch{types.ArchIA32})
		assert.Equal(t, len(p.Modules[1].Pcds), 3)

		hello := p.Modules[1].Pcds[2]
		assert.Equal(t, hello.Token, "gEfiMdeModulePkgTokenSpaceGuid.PcdHelloWorldPrintString")
		assert.Equal(t, hello.DefaultValue, `L"Hello world"`)
		assert.Equal(t, hello.MaxDatumSize, 64)

		assert.DeepEqual(t, p.Overrides, []Override{
			{Token: "gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel", Value: "0x80000040"},
		})
	})

	t.Run("line numbers in errors", func(t *testing.T) {
		_, err := ParseText("// header\n$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {\n  a.b INT8 DYNAMIC CONSUMES\n}")
		assert.ErrorContains(t, err, "Error parsing line 3: Invalid datum type: INT8")
	})

	t.Run("duplicate module", func(t *testing.T) {
		_, err := ParseText(`
$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 1.0 IA32 {
}
$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 1.0 IA32 {
}`)
		assert.ErrorContains(t, err, "Duplicate module A 1.0 [IA32]")
	})

	t.Run("same module for another arch", func(t *testing.T) {
		p, err := ParseText(`
$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 1.0 IA32 {
}
$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 1.0 X64 {
}`)
		assert.NilError(t, err)
		assert.Equal(t, len(p.Modules), 2)
	})

	t.Run("pcd outside module", func(t *testing.T) {
		_, err := ParseText("a.b UINT8 DYNAMIC CONSUMES")
		assert.ErrorContains(t, err, "outside of a module")
	})

	t.Run("override inside module", func(t *testing.T) {
		_, err := ParseText("$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {\n$OVERRIDE a.b 1\n}")
		assert.ErrorContains(t, err, "only allowed outside of a module")
	})

	t.Run("nested module", func(t *testing.T) {
		_, err := ParseText("$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {\n$MODULE B 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {")
		assert.ErrorContains(t, err, "Module A is not closed")
	})

	t.Run("unclosed module", func(t *testing.T) {
		_, err := ParseText("$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {")
		assert.ErrorContains(t, err, "Module A is not closed")
	})

	t.Run("stray closing bracket", func(t *testing.T) {
		_, err := ParseText("}")
		assert.ErrorContains(t, err, "Unexpected }")
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := ParseText("$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {\na.b VOID* DYNAMIC CONSUMES size(0)\n}")
		assert.ErrorContains(t, err, "size must be >= 1")
	})
}

func TestParseYaml(t *testing.T) {
	p, err := ParseYaml([]byte(platform_yaml))
	assert.NilError(t, err)

	assert.Equal(t, p.Name, "Nt32")
	assert.Equal(t, len(p.Modules), 2)
	assert.DeepEqual(t, p.Modules[1].Archs, []types.Arch{types.ArchIA32, types.ArchX64})

	decls, err := p.Modules[1].Declarations()
	assert.NilError(t, err)
	// print times is X64 only
	assert.Equal(t, len(decls), 3)
	assert.Equal(t, decls[0].Module.Arch, types.ArchIA32)
	assert.Equal(t, decls[0].PcdType, types.PcdTypeFeatureFlag)
	assert.Equal(t, decls[0].Usage, types.UsageConsumes)
	assert.Equal(t, decls[2].CName, "PcdHelloWorldPrintTimes")
	assert.Equal(t, decls[2].Module.Arch, types.ArchX64)

	t.Run("duplicate module", func(t *testing.T) {
		_, err := ParseYaml([]byte("modules:\n  - {name: A, guid: 6987936e-ed34-44db-ae97-1fa5e4ed2116, archs: [IA32, IA32]}"))
		assert.ErrorContains(t, err, "Duplicate module A [IA32]")
	})

	t.Run("invalid document", func(t *testing.T) {
		_, err := ParseYaml([]byte("modules: {"))
		assert.ErrorContains(t, err, "Invalid platform description")
	})

	t.Run("invalid declaration", func(t *testing.T) {
		msa := ModuleSurfaceArea{Name: "A", Archs: []types.Arch{types.ArchIA32}, Pcds: []PcdDecl{
			{Token: "a.b", DatumType: "UINT8", PcdType: "Static", Usage: "CONSUMES"},
		}}
		_, err := msa.Declarations()
		assert.ErrorContains(t, err, "Static is not a valid pcd type")

		msa.Archs = nil
		_, err = msa.Declarations()
		assert.ErrorContains(t, err, "does not list any arch")
	})
}

func writeSource(t *testing.T, dir, name, content string) string {
	location := filepath.Join(dir, name)
	assert.NilError(t, os.WriteFile(location, []byte(content), 0o644))
	return location
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	text_url := writeSource(t, dir, "nt32.pcd", platform_text)
	yaml_url := writeSource(t, dir, "nt32.yaml", platform_yaml)

	loader := NewLoader()
	ctx := context.Background()

	t.Run("by extension", func(t *testing.T) {
		p, err := loader.Load(ctx, yaml_url)
		assert.NilError(t, err)
		assert.Equal(t, p.Name, "Nt32")

		p, err = loader.Load(ctx, text_url)
		assert.NilError(t, err)
		assert.Equal(t, len(p.Overrides), 1)
	})

	t.Run("merge rejects duplicate modules", func(t *testing.T) {
		_, err := loader.LoadAll(ctx, text_url, yaml_url)
		assert.ErrorContains(t, err, "Duplicate module PlatformPei 1.0 [IA32]")
	})

	t.Run("merge", func(t *testing.T) {
		extra_url := writeSource(t, dir, "extra.pcd", `
$MODULE Shell 7c04a583-9e3e-4f1c-ad65-e05268d0b4d1 2.2 X64 {
    gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel UINT32 FIXED_AT_BUILD CONSUMES default(0x80000000)
}`)
		p, err := loader.LoadAll(ctx, text_url, extra_url)
		assert.NilError(t, err)
		assert.Equal(t, len(p.Modules), 3)
		assert.Equal(t, p.Modules[2].Name, "Shell")
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := loader.Load(ctx, filepath.Join(dir, "missing.pcd"))
		assert.ErrorContains(t, err, "Failed to read")
	})

	t.Run("parse error names the source", func(t *testing.T) {
		bad_url := writeSource(t, dir, "bad.pcd", "}")
		_, err := loader.Load(ctx, bad_url)
		assert.ErrorContains(t, err, bad_url)
	})
}

func TestIngest(t *testing.T) {
	p, err := ParseText(platform_text)
	assert.NilError(t, err)

	m := database.NewManager()
	assert.NilError(t, Ingest(m, p))
	assert.NilError(t, m.Resolve())

	assert.Equal(t, m.Len(), 3)
	assert.Equal(t, len(m.GetAllModuleArray()), 2)

	reset, ok := m.GetToken("gEfiMdeModulePkgTokenSpaceGuid", "PcdResetOnMemoryTypeInformationChange")
	assert.Assert(t, ok)
	assert.Equal(t, reset.PcdType, types.PcdTypeDynamic)
	assert.Equal(t, reset.TokenNumber, 1)

	level, _ := m.GetToken("gEfiMdePkgTokenSpaceGuid", "PcdDebugPrintErrorLevel")
	assert.Equal(t, level.PcdType, types.PcdTypePatchableInModule)
	assert.Equal(t, level.Value().Raw, "0x80000040")

	t.Run("declaration errors keep their kind", func(t *testing.T) {
		p, err := ParseText(`
$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {
    a.b UINT8 DYNAMIC CONSUMES
    a.b UINT8 DYNAMIC PRODUCES
}`)
		assert.NilError(t, err)
		err = Ingest(database.NewManager(), p)
		assert.Assert(t, errors.Is(err, database.ErrDuplicateUsage))
	})

	t.Run("bad override", func(t *testing.T) {
		p := &Platform{Overrides: []Override{{Token: "nodot", Value: "1"}}}
		err := Ingest(database.NewManager(), p)
		assert.ErrorContains(t, err, "Override")
	})
}

func TestIngestParallel(t *testing.T) {
	p, err := ParseYaml([]byte(platform_yaml))
	assert.NilError(t, err)

	sequential := database.NewManager()
	assert.NilError(t, Ingest(sequential, p))
	assert.NilError(t, sequential.Resolve())

	for _, workers := range []int{0, 1, 4} {
		m := database.NewManager()
		assert.NilError(t, IngestParallel(m, p, workers))
		assert.NilError(t, m.Resolve())

		assert.DeepEqual(t, m.GetAllModuleArray(), sequential.GetAllModuleArray())
		fp, err := m.Fingerprint()
		assert.NilError(t, err)
		want, _ := sequential.Fingerprint()
		assert.Equal(t, fp, want)
	}

	t.Run("first failing module wins", func(t *testing.T) {
		p := &Platform{Modules: []ModuleSurfaceArea{
			{Name: "A", Guid: "6987936e-ed34-44db-ae97-1fa5e4ed2116", Archs: []types.Arch{types.ArchIA32}, Pcds: []PcdDecl{
				{Token: "a.b", DatumType: "UINT8", PcdType: "DYNAMIC", Usage: "CONSUMES", DefaultValue: "0x1FF"},
			}},
			{Name: "B|C", Guid: "6987936e-ed34-44db-ae97-1fa5e4ed2116", Archs: []types.Arch{types.ArchIA32}, Pcds: []PcdDecl{
				{Token: "a.c", DatumType: "UINT8", PcdType: "DYNAMIC", Usage: "CONSUMES"},
			}},
		}}
		err := IngestParallel(database.NewManager(), p, 2)
		assert.Assert(t, errors.Is(err, database.ErrInvalidDefaultValue))
	})
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	text_url := writeSource(t, dir, "nt32.pcd", platform_text)
	ctx := context.Background()

	for _, workers := range []int{1, 3} {
		m, err := Build(ctx, workers, text_url)
		assert.NilError(t, err)
		assert.Assert(t, m.IsResolved())
		assert.Equal(t, m.Len(), 3)
	}

	t.Run("resolution failure", func(t *testing.T) {
		bad_url := writeSource(t, dir, "no_producer.pcd", `
$MODULE A 6987936e-ed34-44db-ae97-1fa5e4ed2116 IA32 {
    a.b UINT8 DYNAMIC CONSUMES
}`)
		_, err := Build(ctx, 1, bad_url)
		assert.Assert(t, errors.Is(err, database.ErrNoProducerForDynamicPcd))
		assert.Assert(t, database.IsBuildFatal(err))
	})
}
