package decl

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/tobsdb/pcddb/internal/parser"
	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/internal/types"
)

// ParseText reads the .pcd declaration format.
func ParseText(source string) (*Platform, error) {
	platform := Platform{Modules: []ModuleSurfaceArea{}}
	seen := map[string]bool{}

	scanner := bufio.NewScanner(strings.NewReader(source))
	line_idx := 0

	var current_module *ModuleSurfaceArea

	for scanner.Scan() {
		line_idx++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines & comments
		if len(line) == 0 || strings.HasPrefix(line, "//") {
			continue
		}

		state, data, err := parser.LineParser(line)
		if err != nil {
			return nil, ParseLineError(line_idx, err.Error())
		}

		switch state {
		case parser.ParserStateModuleStart:
			if current_module != nil {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Module %s is not closed", current_module.Name))
			}
			current_module = &ModuleSurfaceArea{
				Name:    data.Name,
				Guid:    data.Guid,
				Version: data.Version,
				Archs:   []types.Arch{data.Arch},
				Pcds:    []PcdDecl{},
			}
			key := current_module.identity(data.Arch).Key()
			if seen[key] {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Duplicate module %s", current_module.identity(data.Arch).String()))
			}
			seen[key] = true
		case parser.ParserStateModuleEnd:
			if current_module == nil {
				return nil, ParseLineError(line_idx, "Unexpected }")
			}
			platform.Modules = append(platform.Modules, *current_module)
			current_module = nil
		case parser.ParserStateNewPcd:
			if current_module == nil {
				return nil, ParseLineError(line_idx, "Pcd declared outside of a module")
			}
			pcd := PcdDecl{
				Token:        data.TokenSpace + "." + data.CName,
				DatumType:    string(data.DatumType),
				PcdType:      string(data.PcdType),
				Usage:        string(data.Usage),
				DefaultValue: data.Properties.Get(props.DeclPropDefault),
			}
			if data.Properties.Has(props.DeclPropSize) {
				size, err := props.ParseSizePropSafe(data.Properties.Get(props.DeclPropSize))
				if err != nil {
					return nil, ParseLineError(line_idx, err.Error())
				}
				pcd.MaxDatumSize = size
			}
			current_module.Pcds = append(current_module.Pcds, pcd)
		case parser.ParserStateOverride:
			if current_module != nil {
				return nil, ParseLineError(line_idx, "$OVERRIDE is only allowed outside of a module")
			}
			platform.Overrides = append(platform.Overrides, Override{
				Token: data.TokenSpace + "." + data.CName,
				Value: data.Value,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if current_module != nil {
		return nil, fmt.Errorf("Module %s is not closed", current_module.Name)
	}

	return &platform, nil
}

func ParseLineError(line int, reason string) error {
	return fmt.Errorf("Error parsing line %d: %s", line, reason)
}
