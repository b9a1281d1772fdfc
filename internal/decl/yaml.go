package decl

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYaml reads a platform description.
//
//	name: Nt32
//	modules:
//	  - name: HelloWorld
//	    guid: 6987936e-ed34-44db-ae97-1fa5e4ed2116
//	    version: "1.0"
//	    archs: [IA32, X64]
//	    pcds:
//	      - token: gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel
//	        datumType: UINT32
//	        pcdType: FixedAtBuild
//	        usage: CONSUMES
//	        default: "0x80000000"
//	overrides:
//	  - token: gEfiMdePkgTokenSpaceGuid.PcdDebugPrintErrorLevel
//	    value: "0x80000040"
func ParseYaml(source []byte) (*Platform, error) {
	platform := Platform{}
	if err := yaml.Unmarshal(source, &platform); err != nil {
		return nil, fmt.Errorf("Invalid platform description; %w", err)
	}
	if platform.Modules == nil {
		platform.Modules = []ModuleSurfaceArea{}
	}

	seen := map[string]bool{}
	for _, msa := range platform.Modules {
		if len(msa.Name) == 0 {
			return nil, fmt.Errorf("Module with guid %s has no name", msa.Guid)
		}
		for _, arch := range msa.Archs {
			key := msa.identity(arch).Key()
			if seen[key] {
				return nil, fmt.Errorf("Duplicate module %s", msa.identity(arch).String())
			}
			seen[key] = true
		}
	}
	return &platform, nil
}
