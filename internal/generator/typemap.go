package generator

import "strings"

// Canonical type tokens
const (
	TypeVarchar   = "varchar"
	TypeSerial    = "serial"
	TypeInteger   = "integer"
	TypeText      = "text"
	TypeTimestamp = "timestamp"
	TypeBoolean   = "boolean"
)

// MapType maps a logical column type to its canonical token. Matching is
// case-insensitive; the varchar family keeps whatever follows the prefix
// verbatim ("VARCHAR(64)" -> "varchar(64)"). Unknown types fall back to text.
func MapType(t string) string {
	lower := strings.ToLower(t)
	switch {
	case strings.HasPrefix(lower, TypeVarchar):
		return TypeVarchar + t[len(TypeVarchar):]
	case lower == TypeSerial:
		return TypeSerial
	case lower == TypeInteger, lower == "int":
		return TypeInteger
	case lower == TypeText:
		return TypeText
	case lower == TypeTimestamp:
		return TypeTimestamp
	case lower == TypeBoolean:
		return TypeBoolean
	default:
		return TypeText
	}
}
