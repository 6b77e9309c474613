package meta

import "strings"

// Kind is the closed set of semantic column categories. It picks the cell
// editor, the display formatter and the default column width.
type Kind string

const (
	KindNumber     Kind = "number"
	KindText       Kind = "text"
	KindCitext     Kind = "citext"
	KindBoolean    Kind = "boolean"
	KindJSON       Kind = "json"
	KindArray      Kind = "array"
	KindEnum       Kind = "enum"
	KindDate       Kind = "date"
	KindTime       Kind = "time"
	KindDateTime   Kind = "datetime"
	KindForeignKey Kind = "foreign_key"
	KindUnknown    Kind = "unknown"
)

var numberTypes = map[string]bool{
	"smallint": true, "integer": true, "bigint": true,
	"int2": true, "int4": true, "int8": true,
	"numeric": true, "decimal": true,
	"real": true, "double precision": true,
	"float4": true, "float8": true,
	"oid": true,
}

var textTypes = map[string]bool{
	"text": true, "character": true, "character varying": true,
	"varchar": true, "char": true, "bpchar": true, "name": true, "uuid": true,
}

// Classify maps raw schema metadata to exactly one Kind. Checks run in a
// fixed precedence because format-based and type-based checks overlap:
// a relationship wins over everything, and a user-defined type is an enum
// only when nothing more specific matched first. Total: unrecognized
// combinations degrade to KindUnknown, never an error.
func Classify(col Column, fk *Relationship) Kind {
	dataType := strings.ToLower(col.DataType)
	format := strings.ToLower(col.Format)

	switch {
	case fk != nil:
		return KindForeignKey
	case numberTypes[dataType] || numberTypes[format]:
		return KindNumber
	case dataType == "array" || strings.HasPrefix(format, "_"):
		return KindArray
	case dataType == "json" || dataType == "jsonb" || format == "json" || format == "jsonb":
		return KindJSON
	case textTypes[dataType] || textTypes[format]:
		return KindText
	case format == "citext":
		return KindCitext
	case dataType == "date" || format == "date":
		return KindDate
	case strings.HasPrefix(dataType, "time without") || strings.HasPrefix(dataType, "time with") ||
		format == "time" || format == "timetz":
		return KindTime
	case strings.HasPrefix(dataType, "timestamp") || format == "timestamp" || format == "timestamptz":
		return KindDateTime
	case dataType == "boolean" || format == "bool":
		return KindBoolean
	case dataType == "user-defined":
		return KindEnum
	default:
		return KindUnknown
	}
}

// DefaultWidth returns the initial column width for a kind: numbers and
// booleans narrow, temporal and enum columns medium, everything else wide.
func DefaultWidth(kind Kind) int {
	switch kind {
	case KindNumber:
		return 120
	case KindBoolean:
		return 100
	case KindDate, KindTime, KindDateTime, KindEnum, KindForeignKey:
		return 150
	default:
		return 250
	}
}
