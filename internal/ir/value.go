package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ColumnType is a declared column type in a table schema.
// The type model is deliberately two-valued: integers and strings are the
// only types tables can declare and the only types literals can carry.
type ColumnType string

const (
	// TypeInt is the declared type for 64-bit integer columns.
	TypeInt ColumnType = "int"

	// TypeString is the declared type for string columns.
	TypeString ColumnType = "string"
)

// ParseColumnType validates a schema type name.
func ParseColumnType(s string) (ColumnType, error) {
	switch ColumnType(s) {
	case TypeInt, TypeString:
		return ColumnType(s), nil
	default:
		return "", fmt.Errorf("unknown column type %q (want %q or %q)", s, TypeInt, TypeString)
	}
}

// Value is a sealed interface over the two runtime value types.
// Only Int and String implement it. There is deliberately no float,
// bool, or null variant: the engine's type model matches the two
// declarable column types exactly.
type Value interface {
	valueNode() // Sealed - only types in this package implement it

	// Kind reports the value's type label, matching schema type names.
	Kind() ColumnType
}

// Int is an integer value. Always int64, never float64.
type Int int64

func (Int) valueNode() {}

// Kind implements Value.
func (Int) Kind() ColumnType { return TypeInt }

// MarshalJSON implements json.Marshaler for Int.
func (v Int) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(v))
}

// String is a string value.
type String string

func (String) valueNode() {}

// Kind implements Value.
func (String) Kind() ColumnType { return TypeString }

// MarshalJSON implements json.Marshaler for String.
func (v String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// DecodeLiteral decodes a JSON literal into a Value with strict validation.
// Only integers and strings are accepted. Floats, booleans, null, arrays
// and objects are rejected - they have no place in the two-valued type
// model and silently coercing them would hide query mistakes.
func DecodeLiteral(data []byte) (Value, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty literal")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		return nil, fmt.Errorf("boolean literals are not supported: %s", trimmed)

	case 'n':
		return nil, fmt.Errorf("null literals are not supported")

	case '[', '{':
		return nil, fmt.Errorf("compound literals are not supported: %s", trimmed)

	default:
		// Must be a number - only integers are allowed.
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer numeric literal %s: only int and string literals are supported", n)
		}
		return Int(i), nil
	}
}
