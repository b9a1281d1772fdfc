package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/internal/types"
	"github.com/tobsdb/pcddb/pkg"
)

type LineParserState int

const (
	ParserStateModuleStart LineParserState = iota
	ParserStateModuleEnd
	ParserStateNewPcd
	ParserStateOverride
	ParserStateIdle
)

type ParserData struct {
	// $MODULE
	Name    string
	Guid    string
	Version string
	Arch    types.Arch

	// pcd entries and $OVERRIDE
	TokenSpace string
	CName      string
	DatumType  types.DatumType
	PcdType    types.PcdType
	Usage      types.UsageDirection
	Properties pkg.Map[props.DeclProp, string]
	Value      string
}

const (
	module_prefix   = "$MODULE "
	override_prefix = "$OVERRIDE "
)

func LineParser(line string) (LineParserState, *ParserData, error) {
	switch {
	case strings.HasPrefix(line, module_prefix):
		return parseModuleLine(strings.TrimSpace(line[len(module_prefix):]))
	case strings.HasPrefix(line, override_prefix):
		return parseOverrideLine(strings.TrimSpace(line[len(override_prefix):]))
	case line == "}":
		return ParserStateModuleEnd, nil, nil
	case strings.HasPrefix(line, "$"):
		return ParserStateIdle, nil, fmt.Errorf("Unknown directive %s", strings.Fields(line)[0])
	}
	return parsePcdLine(line)
}

// $MODULE <name> <guid> [version] <arch> {
func parseModuleLine(line string) (LineParserState, *ParserData, error) {
	if !strings.HasSuffix(line, "{") {
		return ParserStateIdle, nil, errors.New("Module declaration must end with {")
	}
	fields := strings.Fields(strings.TrimSuffix(line, "{"))
	if len(fields) < 3 || len(fields) > 4 {
		return ParserStateIdle, nil, errors.New("Module declaration needs a name, guid, optional version and arch")
	}

	data := &ParserData{Name: fields[0], Guid: fields[1]}
	if len(fields) == 4 {
		data.Version = fields[2]
	}
	arch, ok := types.ParseArch(fields[len(fields)-1])
	if !ok {
		return ParserStateIdle, nil, fmt.Errorf("Invalid arch: %s", fields[len(fields)-1])
	}
	data.Arch = arch
	return ParserStateModuleStart, data, nil
}

// $OVERRIDE <space>.<cname> <value>
func parseOverrideLine(line string) (LineParserState, *ParserData, error) {
	name, value, _ := strings.Cut(line, " ")
	space, c_name, err := ParseTokenName(name)
	if err != nil {
		return ParserStateIdle, nil, err
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return ParserStateIdle, nil, fmt.Errorf("Override of %s has no value", name)
	}
	return ParserStateOverride, &ParserData{TokenSpace: space, CName: c_name, Value: value}, nil
}

// <space>.<cname> <datum> <pcd type> <usage> [props...]
func parsePcdLine(line string) (LineParserState, *ParserData, error) {
	fields, raw_props := splitFields(line, 4)
	if len(fields) < 4 {
		return ParserStateIdle, nil, errors.New("Invalid line")
	}

	space, c_name, err := ParseTokenName(fields[0])
	if err != nil {
		return ParserStateIdle, nil, err
	}

	datum := types.DatumType(fields[1])
	if !datum.IsValid() {
		return ParserStateIdle, nil, fmt.Errorf("Invalid datum type: %s", fields[1])
	}
	pcd_type, ok := types.ParsePcdType(fields[2])
	if !ok {
		return ParserStateIdle, nil, fmt.Errorf("Invalid pcd type: %s", fields[2])
	}
	usage, ok := types.ParseUsageDirection(fields[3])
	if !ok {
		return ParserStateIdle, nil, fmt.Errorf("Invalid usage: %s", fields[3])
	}

	decl_props, err := parseRawDeclProps(raw_props)
	if err != nil {
		return ParserStateIdle, nil, err
	}

	return ParserStateNewPcd, &ParserData{
		TokenSpace: space,
		CName:      c_name,
		DatumType:  datum,
		PcdType:    pcd_type,
		Usage:      usage,
		Properties: decl_props,
	}, nil
}

func ParseTokenName(name string) (string, string, error) {
	space, c_name, ok := strings.Cut(name, ".")
	if !ok || len(space) == 0 || len(c_name) == 0 || strings.Contains(c_name, ".") {
		return "", "", fmt.Errorf("Invalid token name %s; expected <token space>.<c name>", name)
	}
	return space, c_name, nil
}

// splitFields returns the first n whitespace separated fields of line and
// the untouched remainder, which may contain quoted spaces.
func splitFields(line string, n int) ([]string, string) {
	fields := []string{}
	rest := strings.TrimSpace(line)
	for len(fields) < n && len(rest) > 0 {
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			fields = append(fields, rest)
			rest = ""
			break
		}
		fields = append(fields, rest[:end])
		rest = strings.TrimSpace(rest[end:])
	}
	return fields, rest
}
