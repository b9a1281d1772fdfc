package types

import "strings"

// VALID_PCD_TYPES is ordered by resolution precedence, weakest first.
var VALID_PCD_TYPES = []PcdType{
	PcdTypeFeatureFlag, PcdTypeFixedAtBuild, PcdTypePatchableInModule,
	PcdTypeDynamic, PcdTypeDynamicEx,
}

type PcdType string

const (
	PcdTypeFeatureFlag       PcdType = "FEATURE_FLAG"
	PcdTypeFixedAtBuild      PcdType = "FIXED_AT_BUILD"
	PcdTypePatchableInModule PcdType = "PATCHABLE_IN_MODULE"
	PcdTypeDynamic           PcdType = "DYNAMIC"
	PcdTypeDynamicEx         PcdType = "DYNAMIC_EX"
)

var pcd_type_aliases = map[string]PcdType{
	"FEATUREFLAG":       PcdTypeFeatureFlag,
	"FIXEDATBUILD":      PcdTypeFixedAtBuild,
	"PATCHABLEINMODULE": PcdTypePatchableInModule,
	"DYNAMIC":           PcdTypeDynamic,
	"DYNAMICEX":         PcdTypeDynamicEx,
}

// ParsePcdType accepts both the canonical spelling (FIXED_AT_BUILD) and the
// package declaration spelling (FixedAtBuild).
func ParsePcdType(raw string) (PcdType, bool) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""))
	t, ok := pcd_type_aliases[norm]
	return t, ok
}

// Rank returns the position of t in the precedence order, or -1 if t is unknown.
func (t PcdType) Rank() int {
	for i, v := range VALID_PCD_TYPES {
		if v == t {
			return i
		}
	}
	return -1
}

func (t PcdType) IsValid() bool { return t.Rank() >= 0 }

func (t PcdType) IsDynamic() bool {
	return t == PcdTypeDynamic || t == PcdTypeDynamicEx
}

// NeedsStorage reports whether tokens of this type get a slot in the
// platform database and therefore a token number.
func (t PcdType) NeedsStorage() bool { return t.IsDynamic() }

// MaxPcdType returns the stronger of a and b.
// A dynamic requirement can't be met by static storage, so the strongest
// declared type wins platform wide.
func MaxPcdType(a, b PcdType) PcdType {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
