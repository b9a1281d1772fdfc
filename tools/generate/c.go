package generate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/internal/types"
)

// ModuleHeader renders the PCD section of a module's AutoGen.h: token,
// size and value defines plus the accessor macros for every PCD the module
// uses, ordered by c name.
func ModuleHeader(m *database.Manager, module_key string) ([]byte, error) {
	if !m.IsResolved() {
		return nil, ErrNotResolved
	}
	id, ok := m.GetModuleIdentity(module_key)
	if !ok {
		return nil, fmt.Errorf("Module %s not found", module_key)
	}

	usages := m.GetUsageInstanceArrayByKeyString(module_key)
	slices.SortFunc(usages, func(a, b *database.UsageInstance) int {
		if c := strings.Compare(cNameOf(a.Token), cNameOf(b.Token)); c != 0 {
			return c
		}
		return strings.Compare(string(a.Token), string(b.Token))
	})

	guard := "_AUTOGENH_" + strings.ToUpper(strings.ReplaceAll(id.Guid, "-", "_"))
	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n// %s\n", guard, guard, id.String())

	for _, u := range usages {
		tok, ok := m.GetTokenByKey(u.Token)
		if !ok {
			return nil, fmt.Errorf("Token %s not found", u.Token)
		}
		b.WriteString("\n")
		writePcd(&b, tok, u)
	}

	b.WriteString("\n#endif\n")
	return []byte(b.String()), nil
}

func cNameOf(key database.TokenKey) string {
	_, c_name, _ := strings.Cut(string(key), ".")
	return c_name
}

func writePcd(b *strings.Builder, tok *database.Token, u *database.UsageInstance) {
	name := tok.CName
	mode := tok.DatumType.GetMode()
	value := cValue(tok.DatumType, tok.ValueFor(u))

	fmt.Fprintf(b, "#define _PCD_TOKEN_%s  %dU\n", name, tok.TokenNumber)
	fmt.Fprintf(b, "#define _PCD_SIZE_%s  %d\n", name, tok.DatumSize)

	switch tok.PcdType {
	case types.PcdTypeFeatureFlag, types.PcdTypeFixedAtBuild:
		fmt.Fprintf(b, "#define _PCD_VALUE_%s  %s\n", name, value)
		fmt.Fprintf(b, "#define _PCD_GET_MODE_%s_%s  _PCD_VALUE_%s\n", mode, name, name)
	case types.PcdTypePatchableInModule:
		fmt.Fprintf(b, "#define _PCD_PATCHABLE_VALUE_%s  %s\n", name, value)
		if tok.DatumType == types.DatumTypePointer {
			fmt.Fprintf(b, "extern UINT8 _gPcd_BinaryPatch_%s[];\n", name)
			fmt.Fprintf(b, "#define _PCD_GET_MODE_%s_%s  (VOID *)_gPcd_BinaryPatch_%s\n", mode, name, name)
		} else {
			fmt.Fprintf(b, "extern volatile %s _gPcd_BinaryPatch_%s;\n", tok.DatumType, name)
			fmt.Fprintf(b, "#define _PCD_GET_MODE_%s_%s  _gPcd_BinaryPatch_%s\n", mode, name, name)
		}
	case types.PcdTypeDynamic:
		fmt.Fprintf(b, "#define _PCD_GET_MODE_%s_%s  LibPcdGet%s(_PCD_TOKEN_%s)\n", mode, name, libMode(mode), name)
	case types.PcdTypeDynamicEx:
		fmt.Fprintf(b, "#define _PCD_GET_MODE_%s_%s  LibPcdGetEx%s(&%s, _PCD_TOKEN_%s)\n",
			mode, name, libMode(mode), tok.TokenSpace, name)
	}
}

// libMode maps an accessor mode to the PcdLib function suffix.
func libMode(mode string) string {
	switch mode {
	case "BOOL":
		return "Bool"
	case "PTR":
		return "Ptr"
	}
	return mode
}

func cValue(datum types.DatumType, v props.Value) string {
	switch v.Kind {
	case props.ValueKindBool:
		if v.Raw == props.BoolTrue {
			return "((BOOLEAN)1U)"
		}
		return "((BOOLEAN)0U)"
	case props.ValueKindNumber:
		suffix := "U"
		if datum == types.DatumTypeUint64 {
			suffix = "ULL"
		}
		return fmt.Sprintf("((%s)%s%s)", datum, strings.TrimRight(v.Raw, "uUlL"), suffix)
	case props.ValueKindEnum:
		return fmt.Sprintf("((%s)%s)", datum, v.Raw)
	}
	// strings and byte arrays are already C literals
	return v.Raw
}
