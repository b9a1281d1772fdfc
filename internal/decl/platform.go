package decl

import (
	"fmt"
	"strings"

	"github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/internal/module"
	"github.com/tobsdb/pcddb/internal/parser"
	"github.com/tobsdb/pcddb/internal/types"
)

// Platform is the set of module surface areas that make up one build, plus
// the platform level PCD values.
type Platform struct {
	Name      string              `yaml:"name,omitempty" json:"name,omitempty"`
	Modules   []ModuleSurfaceArea `yaml:"modules" json:"modules"`
	Overrides []Override          `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

type ModuleSurfaceArea struct {
	Name    string       `yaml:"name" json:"name"`
	Guid    string       `yaml:"guid" json:"guid"`
	Version string       `yaml:"version,omitempty" json:"version,omitempty"`
	Archs   []types.Arch `yaml:"archs" json:"archs"`
	Pcds    []PcdDecl    `yaml:"pcds" json:"pcds"`
}

type PcdDecl struct {
	// <token space>.<c name>
	Token        string `yaml:"token" json:"token"`
	DatumType    string `yaml:"datumType" json:"datumType"`
	PcdType      string `yaml:"pcdType" json:"pcdType"`
	Usage        string `yaml:"usage" json:"usage"`
	DefaultValue string `yaml:"default,omitempty" json:"default,omitempty"`
	MaxDatumSize int    `yaml:"maxSize,omitempty" json:"maxSize,omitempty"`
	// limits the declaration to some of the module's archs; empty means all
	Archs []types.Arch `yaml:"archs,omitempty" json:"archs,omitempty"`
}

type Override struct {
	Token string `yaml:"token" json:"token"`
	Value string `yaml:"value" json:"value"`
}

// identity is not validated here; the manager rejects bad identities with a
// typed error when the declarations are ingested.
func (msa *ModuleSurfaceArea) identity(arch types.Arch) module.Identity {
	return module.Identity{Name: msa.Name, Guid: strings.ToLower(msa.Guid), Version: msa.Version, Arch: arch}
}

func (p *PcdDecl) appliesTo(arch types.Arch) bool {
	if len(p.Archs) == 0 {
		return true
	}
	for _, a := range p.Archs {
		if a == arch || a == types.ArchCommon {
			return true
		}
	}
	return false
}

// Declarations expands every module into one declaration per arch and PCD,
// in module order.
func (msa *ModuleSurfaceArea) Declarations() ([]database.Declaration, error) {
	if len(msa.Archs) == 0 {
		return nil, fmt.Errorf("Module %s does not list any arch", msa.Name)
	}

	res := []database.Declaration{}
	for _, arch := range msa.Archs {
		if !arch.IsValid() {
			return nil, fmt.Errorf("%s is not a valid arch in module %s", arch, msa.Name)
		}
		id := msa.identity(arch)
		for i := range msa.Pcds {
			pcd := &msa.Pcds[i]
			if !pcd.appliesTo(arch) {
				continue
			}
			d, err := pcd.declaration(id)
			if err != nil {
				return nil, fmt.Errorf("Module %s: %w", id.String(), err)
			}
			res = append(res, d)
		}
	}
	return res, nil
}

func (p *PcdDecl) declaration(id module.Identity) (database.Declaration, error) {
	space, c_name, err := parser.ParseTokenName(p.Token)
	if err != nil {
		return database.Declaration{}, err
	}
	datum := types.DatumType(strings.TrimSpace(p.DatumType))
	if !datum.IsValid() {
		return database.Declaration{}, fmt.Errorf("%s is not a valid datum type", p.DatumType)
	}
	pcd_type, ok := types.ParsePcdType(p.PcdType)
	if !ok {
		return database.Declaration{}, fmt.Errorf("%s is not a valid pcd type", p.PcdType)
	}
	usage, ok := types.ParseUsageDirection(p.Usage)
	if !ok {
		return database.Declaration{}, fmt.Errorf("%s is not a valid usage", p.Usage)
	}
	if p.MaxDatumSize < 0 {
		return database.Declaration{}, fmt.Errorf("maxSize of %s cannot be negative", p.Token)
	}

	return database.Declaration{
		TokenSpace:   space,
		CName:        c_name,
		DatumType:    datum,
		DefaultValue: p.DefaultValue,
		MaxDatumSize: p.MaxDatumSize,
		PcdType:      pcd_type,
		Usage:        usage,
		Module:       id,
	}, nil
}

// Merge appends other's modules and overrides to p. A module identity may
// only be described once across all sources.
func (p *Platform) Merge(other *Platform) error {
	seen := map[string]bool{}
	for _, msa := range p.Modules {
		for _, arch := range msa.Archs {
			seen[msa.identity(arch).Key()] = true
		}
	}
	for _, msa := range other.Modules {
		for _, arch := range msa.Archs {
			key := msa.identity(arch).Key()
			if seen[key] {
				return fmt.Errorf("Duplicate module %s", msa.identity(arch).String())
			}
			seen[key] = true
		}
	}

	if len(p.Name) == 0 {
		p.Name = other.Name
	}
	p.Modules = append(p.Modules, other.Modules...)
	p.Overrides = append(p.Overrides, other.Overrides...)
	return nil
}
