package database_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	. "github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/internal/module"
	"github.com/tobsdb/pcddb/internal/types"
	"gotest.tools/assert"
)

const (
	mde_space    = "gEfiMdeModulePkgTokenSpaceGuid"
	mde_pkg      = "gEfiMdePkgTokenSpaceGuid"
	reset_on_mem = "PcdResetOnMemoryTypeInformationChange"
)

func newTestModule(name string, arch types.Arch) module.Identity {
	return module.MustIdentity(name, "6987936e-ed34-44db-ae97-1fa5e4ed2116", "1.0", arch)
}

func decl(mod module.Identity, space, c_name string, datum types.DatumType,
	pcd_type types.PcdType, usage types.UsageDirection, value string,
) Declaration {
	return Declaration{
		TokenSpace:   space,
		CName:        c_name,
		DatumType:    datum,
		DefaultValue: value,
		PcdType:      pcd_type,
		Usage:        usage,
		Module:       mod,
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates once", func(t *testing.T) {
		m := NewManager()
		a := newTestModule("ModuleA", types.ArchIA32)
		tok, err := m.Register(mde_pkg, "PcdDebugPrintErrorLevel", types.DatumTypeUint32, "0x80000000", 0, a)
		assert.NilError(t, err)
		again, err := m.Register(mde_pkg, "PcdDebugPrintErrorLevel", types.DatumTypeUint32, "0", 0, a)
		assert.NilError(t, err)
		assert.Equal(t, tok, again)
		assert.Equal(t, m.Len(), 1)
		assert.Equal(t, again.DefaultValue.Raw, "0x80000000")
	})

	t.Run("datum type conflict", func(t *testing.T) {
		m := NewManager()
		a := newTestModule("ModuleA", types.ArchIA32)
		b := newTestModule("ModuleBB", types.ArchIA32)
		_, err := m.Register("G", "N", types.DatumTypeUint32, "", 0, a)
		assert.NilError(t, err)
		_, err = m.Register("G", "N", types.DatumTypeUint8, "", 0, b)
		assert.Assert(t, errors.Is(err, ErrInconsistentDatumType))
		assert.ErrorContains(t, err, "ModuleA 1.0 [IA32], ModuleBB 1.0 [IA32]")
	})

	t.Run("invalid default value", func(t *testing.T) {
		m := NewManager()
		_, err := m.Register(mde_pkg, "PcdFoo", types.DatumTypeUint8, "0x1FF", 0,
			newTestModule("ModuleA", types.ArchX64))
		assert.Assert(t, errors.Is(err, ErrInvalidDefaultValue))
		assert.Equal(t, m.Len(), 0)
	})

	t.Run("pointer size", func(t *testing.T) {
		m := NewManager()
		tok, err := m.Register(mde_pkg, "PcdFirmwareVendor", types.DatumTypePointer, `L"EDK II"`, 0,
			newTestModule("ModuleA", types.ArchX64))
		assert.NilError(t, err)
		assert.Equal(t, tok.DatumSize, 14)
	})
}

func TestAddUsage(t *testing.T) {
	a := newTestModule("ModuleA", types.ArchIA32)

	t.Run("unknown token", func(t *testing.T) {
		m := NewManager()
		u, err := NewUsageInstance(MakeTokenKey(mde_pkg, "PcdFoo"), a, types.DatumTypeUint8,
			types.PcdTypeFixedAtBuild, types.UsageConsumes, "")
		assert.NilError(t, err)
		err = m.AddUsage(u)
		assert.Assert(t, errors.Is(err, ErrUnknownToken))
	})

	t.Run("duplicate module arch pair", func(t *testing.T) {
		m := NewManager()
		_, err := m.Register(mde_pkg, "PcdFoo", types.DatumTypeUint8, "1", 0, a)
		assert.NilError(t, err)

		u1, _ := NewUsageInstance(MakeTokenKey(mde_pkg, "PcdFoo"), a, types.DatumTypeUint8,
			types.PcdTypeFixedAtBuild, types.UsageConsumes, "")
		u2, _ := NewUsageInstance(MakeTokenKey(mde_pkg, "PcdFoo"), a, types.DatumTypeUint8,
			types.PcdTypeDynamic, types.UsageProduces, "")
		assert.NilError(t, m.AddUsage(u1))
		err = m.AddUsage(u2)
		assert.Assert(t, errors.Is(err, ErrDuplicateUsage))

		// the same module built for another arch is a different usage
		x64 := a
		x64.Arch = types.ArchX64
		u3, _ := NewUsageInstance(MakeTokenKey(mde_pkg, "PcdFoo"), x64, types.DatumTypeUint8,
			types.PcdTypeFixedAtBuild, types.UsageConsumes, "")
		assert.NilError(t, m.AddUsage(u3))
		assert.Equal(t, len(m.GetAllModuleArray()), 2)
	})

	t.Run("usage datum type conflict", func(t *testing.T) {
		m := NewManager()
		_, err := m.Register(mde_pkg, "PcdFoo", types.DatumTypeUint8, "1", 0, a)
		assert.NilError(t, err)
		u, _ := NewUsageInstance(MakeTokenKey(mde_pkg, "PcdFoo"), newTestModule("ModuleBB", types.ArchIA32),
			types.DatumTypeUint16, types.PcdTypeFixedAtBuild, types.UsageConsumes, "")
		err = m.AddUsage(u)
		assert.Assert(t, errors.Is(err, ErrInconsistentDatumType))
	})
}

func TestNewUsageInstance(t *testing.T) {
	key := MakeTokenKey(mde_pkg, "PcdFoo")
	t.Run("separator in module name", func(t *testing.T) {
		bad := module.Identity{Name: "Mod|A", Guid: "6987936e-ed34-44db-ae97-1fa5e4ed2116", Arch: types.ArchIA32}
		_, err := NewUsageInstance(key, bad, types.DatumTypeUint8, types.PcdTypeFixedAtBuild, types.UsageConsumes, "")
		assert.Assert(t, errors.Is(err, ErrInvalidKeyComponent))
	})

	t.Run("bad guid", func(t *testing.T) {
		bad := module.Identity{Name: "ModA", Guid: "xyz", Arch: types.ArchIA32}
		_, err := NewUsageInstance(key, bad, types.DatumTypeUint8, types.PcdTypeFixedAtBuild, types.UsageConsumes, "")
		assert.Assert(t, errors.Is(err, ErrInvalidModuleIdentity))
	})

	t.Run("bad pcd type", func(t *testing.T) {
		_, err := NewUsageInstance(key, newTestModule("ModuleA", types.ArchIA32), types.DatumTypeUint8,
			types.PcdType("STATIC"), types.UsageConsumes, "")
		assert.Assert(t, errors.Is(err, ErrInvalidDeclaration))
	})

	t.Run("module value", func(t *testing.T) {
		u, err := NewUsageInstance(key, newTestModule("ModuleA", types.ArchIA32), types.DatumTypeUint8,
			types.PcdTypeFixedAtBuild, types.UsageConsumes, "0x10")
		assert.NilError(t, err)
		assert.Equal(t, u.Value.Raw, "0x10")
		assert.Equal(t, u.Key(), u.Module.Key())
	})
}

func TestDeclareRollback(t *testing.T) {
	m := NewManager()
	d := decl(newTestModule("ModuleA", types.ArchIA32), mde_pkg, "PcdFoo",
		types.DatumTypeUint8, types.PcdType("STATIC"), types.UsageConsumes, "")
	err := m.Declare(d)
	assert.Assert(t, errors.Is(err, ErrInvalidDeclaration))
	assert.Equal(t, m.Len(), 0)
	assert.Equal(t, len(m.GetAllModuleArray()), 0)
}

func TestDeterministicOrdering(t *testing.T) {
	m := NewManager()
	a := newTestModule("ModuleA", types.ArchX64)
	names := [][2]string{
		{mde_space, "PcdZeta"}, {mde_pkg, "PcdBeta"}, {mde_space, "PcdAlpha"},
		{mde_pkg, "PcdAlpha"}, {"gAnotherSpaceGuid", "PcdOmega"},
	}
	for _, n := range names {
		assert.NilError(t, m.Declare(decl(a, n[0], n[1], types.DatumTypeUint8,
			types.PcdTypeFixedAtBuild, types.UsageConsumes, "1")))
	}

	got := []TokenKey{}
	for _, tok := range m.GetRecordArray() {
		got = append(got, tok.Key())
	}
	assert.DeepEqual(t, got, []TokenKey{
		"gAnotherSpaceGuid.PcdOmega",
		"gEfiMdeModulePkgTokenSpaceGuid.PcdAlpha",
		"gEfiMdeModulePkgTokenSpaceGuid.PcdZeta",
		"gEfiMdePkgTokenSpaceGuid.PcdAlpha",
		"gEfiMdePkgTokenSpaceGuid.PcdBeta",
	})

	// declaration order is kept per module
	usages := m.GetUsageInstanceArrayByKeyString(a.Key())
	assert.Equal(t, len(usages), len(names))
	assert.Equal(t, usages[0].Token, MakeTokenKey(mde_space, "PcdZeta"))
}

func TestEmptyManager(t *testing.T) {
	m := NewManager()
	assert.Equal(t, len(m.GetRecordArray()), 0)
	assert.Equal(t, len(m.GetAllModuleArray()), 0)
	assert.Equal(t, len(m.GetUsageInstanceArrayByKeyString("nope")), 0)
	assert.NilError(t, m.Resolve())
}

func TestReferentialIntegrity(t *testing.T) {
	m := NewManager()
	mods := []module.Identity{
		newTestModule("ModuleA", types.ArchIA32),
		newTestModule("ModuleBB", types.ArchIA32),
		newTestModule("ModuleCCC", types.ArchX64),
	}
	for i, mod := range mods {
		for j := 0; j <= i; j++ {
			usage := types.UsageConsumes
			if i == 0 {
				usage = types.UsageProduces
			}
			assert.NilError(t, m.Declare(decl(mod, mde_pkg, fmt.Sprintf("Pcd%d", j),
				types.DatumTypeUint32, types.PcdTypeDynamic, usage, "")))
		}
	}
	assert.NilError(t, m.CheckIntegrity())

	for _, module_key := range m.GetAllModuleArray() {
		for _, u := range m.GetUsageInstanceArrayByKeyString(module_key) {
			owners := 0
			for _, tok := range m.GetRecordArray() {
				if tok.Consumers.Get(module_key) == u {
					owners++
				}
				if tok.Producers.Get(module_key) == u {
					owners++
				}
			}
			assert.Equal(t, owners, 1, "usage %s of %s", module_key, u.Token)
		}
	}
}

func TestConcurrentDeclare(t *testing.T) {
	m := NewManager()
	wg := sync.WaitGroup{}

	for i := 0; i < 20; i++ {
		mod := newTestModule(fmt.Sprintf("Module%02d", i), types.ArchX64)
		wg.Add(1)
		go func() {
			defer wg.Done()
			// every module races to create the same tokens
			for j := 0; j < 10; j++ {
				err := m.Declare(decl(mod, mde_pkg, fmt.Sprintf("PcdShared%d", j),
					types.DatumTypeUint16, types.PcdTypeFixedAtBuild, types.UsageConsumes, "7"))
				assert.NilError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, m.Len(), 10)
	assert.Equal(t, len(m.GetAllModuleArray()), 20)
	for _, tok := range m.GetRecordArray() {
		assert.Equal(t, tok.UsageCount(), 20)
	}
	assert.NilError(t, m.CheckIntegrity())
}
