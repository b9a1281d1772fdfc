package props

import "slices"

type DeclProp string

var VALID_DECL_PROPS = []DeclProp{DeclPropDefault, DeclPropSize}

const (
	DeclPropDefault DeclProp = "default" // default(value)
	DeclPropSize    DeclProp = "size"    // size(n), VOID* only
)

func (p DeclProp) IsValid() bool {
	return slices.Contains(VALID_DECL_PROPS, p)
}

const (
	BoolTrue  = "TRUE"
	BoolFalse = "FALSE"
)
