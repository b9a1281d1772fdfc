package props

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tobsdb/pcddb/internal/types"
)

var c_identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValueKind tells generated code how a default value has to be emitted.
type ValueKind int

const (
	ValueKindBool ValueKind = iota
	ValueKindNumber
	ValueKindEnum // enumerated constant, resolved by the C compiler
	ValueKindAsciiString
	ValueKindUnicodeString
	ValueKindByteArray
)

type Value struct {
	Raw  string
	Kind ValueKind
	// Size in bytes of the storage the value needs
	Size int
}

// ParseValueSafe checks raw against the rules for datum and returns the
// normalised value.
// An empty raw value is accepted for scalar types and means zero.
func ParseValueSafe(datum types.DatumType, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch datum {
	case types.DatumTypeBool:
		return parseBool(raw)
	case types.DatumTypeUint8, types.DatumTypeUint16, types.DatumTypeUint32, types.DatumTypeUint64:
		return parseNumber(datum, raw)
	case types.DatumTypePointer:
		return parsePointer(raw)
	}
	return Value{}, fmt.Errorf("%s is not a valid datum type", datum)
}

func parseBool(raw string) (Value, error) {
	switch strings.ToUpper(raw) {
	case "", "FALSE", "0":
		return Value{BoolFalse, ValueKindBool, 1}, nil
	case "TRUE", "1":
		return Value{BoolTrue, ValueKindBool, 1}, nil
	}
	return Value{}, fmt.Errorf("%s is not a valid BOOLEAN value", raw)
}

func parseNumber(datum types.DatumType, raw string) (Value, error) {
	if raw == "" {
		return Value{"0", ValueKindNumber, datum.Size()}, nil
	}

	// 0 base handles both decimal and 0x prefixed hex
	n, err := strconv.ParseUint(strings.TrimRight(raw, "uUlL"), 0, 64)
	if err != nil {
		if c_identifier.MatchString(raw) {
			return Value{raw, ValueKindEnum, datum.Size()}, nil
		}
		return Value{}, fmt.Errorf("%s is not a valid %s value", raw, datum)
	}
	if n > datum.MaxValue() {
		return Value{}, fmt.Errorf("%s does not fit in %s", raw, datum)
	}
	return Value{raw, ValueKindNumber, datum.Size()}, nil
}

func parsePointer(raw string) (Value, error) {
	switch {
	case strings.HasPrefix(raw, `L"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 3:
		s, err := strconv.Unquote(raw[1:])
		if err != nil {
			return Value{}, fmt.Errorf("%s is not a valid unicode string", raw)
		}
		return Value{raw, ValueKindUnicodeString, (len([]rune(s)) + 1) * 2}, nil
	case strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2:
		s, err := strconv.Unquote(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%s is not a valid string", raw)
		}
		return Value{raw, ValueKindAsciiString, len(s) + 1}, nil
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		return parseByteArray(raw)
	}
	return Value{}, fmt.Errorf("VOID* value must be a string or byte array, got %q", raw)
}

func parseByteArray(raw string) (Value, error) {
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return Value{}, fmt.Errorf("byte array %s is empty", raw)
	}
	parts := strings.Split(inner, ",")
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 0, 64)
		if err != nil || n > 0xFF {
			return Value{}, fmt.Errorf("byte array %s has invalid element %q", raw, strings.TrimSpace(p))
		}
	}
	return Value{raw, ValueKindByteArray, len(parts)}, nil
}

// ParseSizePropSafe parses the value of a size(n) declaration prop.
func ParseSizePropSafe(value string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 0, 0)
	if err != nil {
		return 0, fmt.Errorf("size(%s) is not a valid prop; %s", value, err.Error())
	} else if n < 1 {
		return 0, fmt.Errorf("size(%s) is not a valid prop; size must be >= 1", value)
	}
	return int(n), nil
}

// DatumSize returns the storage size of a token: the declared max size for
// VOID* when given, else the width implied by the datum type or value.
func DatumSize(datum types.DatumType, v Value, max_size int) (int, error) {
	if datum != types.DatumTypePointer {
		if max_size > 0 && max_size != datum.Size() {
			return 0, fmt.Errorf("size(%d) is not allowed on %s", max_size, datum)
		}
		return datum.Size(), nil
	}
	if max_size == 0 {
		return v.Size, nil
	}
	if max_size < v.Size {
		return 0, fmt.Errorf("value %s needs %d bytes but size is %d", v.Raw, v.Size, max_size)
	}
	return max_size, nil
}
