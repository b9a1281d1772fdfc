package types

import "slices"

var VALID_DATUM_TYPES = []DatumType{
	DatumTypeBool, DatumTypeUint8, DatumTypeUint16,
	DatumTypeUint32, DatumTypeUint64, DatumTypePointer,
}

type DatumType string

const (
	DatumTypeBool    DatumType = "BOOLEAN"
	DatumTypeUint8   DatumType = "UINT8"
	DatumTypeUint16  DatumType = "UINT16"
	DatumTypeUint32  DatumType = "UINT32"
	DatumTypeUint64  DatumType = "UINT64"
	DatumTypePointer DatumType = "VOID*" // byte array or string
)

func (t DatumType) IsValid() bool {
	return slices.Contains(VALID_DATUM_TYPES, t)
}

func (t DatumType) IsScalar() bool {
	return t.IsValid() && t != DatumTypePointer
}

// Size returns the storage width in bytes. VOID* has no fixed width.
func (t DatumType) Size() int {
	switch t {
	case DatumTypeBool, DatumTypeUint8:
		return 1
	case DatumTypeUint16:
		return 2
	case DatumTypeUint32:
		return 4
	case DatumTypeUint64:
		return 8
	}
	return 0
}

// MaxValue is only meaningful for the unsigned integer types.
func (t DatumType) MaxValue() uint64 {
	switch t {
	case DatumTypeBool:
		return 1
	case DatumTypeUint8:
		return 0xFF
	case DatumTypeUint16:
		return 0xFFFF
	case DatumTypeUint32:
		return 0xFFFFFFFF
	case DatumTypeUint64:
		return ^uint64(0)
	}
	return 0
}

// GetMode is the suffix used by generated accessor macros, ie. _PCD_GET_MODE_32_.
func (t DatumType) GetMode() string {
	switch t {
	case DatumTypeBool:
		return "BOOL"
	case DatumTypeUint8:
		return "8"
	case DatumTypeUint16:
		return "16"
	case DatumTypeUint32:
		return "32"
	case DatumTypeUint64:
		return "64"
	case DatumTypePointer:
		return "PTR"
	}
	return ""
}
