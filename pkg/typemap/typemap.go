// Package typemap is the single lookup table mapping canonical column types
// to Go types, validation rules, and OpenAPI types. Every generator consults
// this table instead of carrying its own type switch.
package typemap

import (
	"regexp"
	"strings"
)

// Entry describes everything the generators need to know about one canonical
// column type.
type Entry struct {
	Canon         string
	GoType        string
	Rule          string
	OpenAPIType   string
	OpenAPIFormat string
	Example       string
}

// entries is keyed by canonical tag. Driver-specific spellings are folded
// into these tags by Canonical.
var entries = map[string]Entry{
	"integer":  {Canon: "integer", GoType: "int64", Rule: "integer", OpenAPIType: "integer", OpenAPIFormat: "int64", Example: "1"},
	"decimal":  {Canon: "decimal", GoType: "float64", Rule: "numeric", OpenAPIType: "number", OpenAPIFormat: "double", Example: "9.99"},
	"boolean":  {Canon: "boolean", GoType: "bool", Rule: "boolean", OpenAPIType: "boolean", Example: "true"},
	"date":     {Canon: "date", GoType: "time.Time", Rule: "date", OpenAPIType: "string", OpenAPIFormat: "date", Example: "2024-01-15"},
	"datetime": {Canon: "datetime", GoType: "time.Time", Rule: "date_format:Y-m-d H:i:s", OpenAPIType: "string", OpenAPIFormat: "date-time", Example: "2024-01-15T10:30:00Z"},
	"time":     {Canon: "time", GoType: "string", Rule: "date_format:H:i:s", OpenAPIType: "string", Example: "10:30:00"},
	"string":   {Canon: "string", GoType: "string", Rule: "string", OpenAPIType: "string", Example: "example"},
	"text":     {Canon: "text", GoType: "string", Rule: "string", OpenAPIType: "string", Example: "example text"},
	"uuid":     {Canon: "uuid", GoType: "string", Rule: "uuid", OpenAPIType: "string", OpenAPIFormat: "uuid", Example: "7f9c2ba4-e88f-4b5c-9d6e-0242ac120002"},
	"json":     {Canon: "json", GoType: "json.RawMessage", Rule: "json", OpenAPIType: "object", Example: "{}"},
	"binary":   {Canon: "binary", GoType: "[]byte", Rule: "string", OpenAPIType: "string", OpenAPIFormat: "byte", Example: ""},
}

var lengthRe = regexp.MustCompile(`\((\d+)(?:,\s*\d+)?\)`)

// Canonical folds a driver-reported SQL type into a canonical tag, returning
// the declared length when one is present (varchar(255) → "string", 255).
func Canonical(sqlType string) (string, *int) {
	s := strings.ToLower(strings.TrimSpace(sqlType))

	var length *int
	if m := lengthRe.FindStringSubmatch(s); m != nil {
		n := 0
		for _, ch := range m[1] {
			n = n*10 + int(ch-'0')
		}
		length = &n
	}
	base := s
	if i := strings.IndexByte(s, '('); i > 0 {
		base = s[:i]
	}
	base = strings.TrimSpace(base)

	switch {
	case strings.HasPrefix(base, "tinyint"):
		// MySQL tinyint(1) is the conventional boolean column.
		if length != nil && *length == 1 {
			return "boolean", nil
		}
		return "integer", nil
	case base == "int", base == "integer", base == "smallint", base == "mediumint",
		base == "bigint", base == "serial", base == "bigserial", base == "smallserial",
		base == "int2", base == "int4", base == "int8", base == "year":
		return "integer", nil
	case base == "decimal", base == "numeric", base == "float", base == "double",
		base == "double precision", base == "real", base == "money", base == "float4", base == "float8":
		return "decimal", nil
	case base == "bool", base == "boolean":
		return "boolean", nil
	case base == "date":
		return "date", nil
	case base == "datetime", base == "timestamp", base == "timestamptz",
		strings.HasPrefix(base, "timestamp "):
		return "datetime", nil
	case base == "time", base == "timetz", strings.HasPrefix(base, "time "):
		return "time", nil
	case base == "uuid":
		return "uuid", nil
	case base == "json", base == "jsonb":
		return "json", nil
	case base == "bytea", base == "blob", base == "binary", base == "varbinary",
		base == "mediumblob", base == "longblob", base == "tinyblob":
		return "binary", nil
	case base == "text", base == "tinytext", base == "mediumtext", base == "longtext", base == "clob":
		return "text", nil
	case base == "varchar", base == "char", base == "character varying",
		base == "character", base == "bpchar", base == "nvarchar", base == "enum", base == "set":
		return "string", length
	default:
		// Unknown types degrade to string rather than failing.
		return "string", length
	}
}

// Lookup resolves a driver-reported SQL type to its table entry.
func Lookup(sqlType string) (Entry, *int) {
	tag, length := Canonical(sqlType)
	return entries[tag], length
}

// GoType returns the generated Go field type for a SQL type, pointered when
// the column is nullable.
func GoType(sqlType string, nullable bool) string {
	entry, _ := Lookup(sqlType)
	t := entry.GoType
	if nullable && !strings.HasPrefix(t, "[]") {
		return "*" + t
	}
	return t
}
