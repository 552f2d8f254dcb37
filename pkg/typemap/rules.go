package typemap

import (
	"fmt"
	"strings"

	"github.com/crudforge/crudforge/pkg/schema"
)

// Rules builds the pipe-joined validation rule string for a column, e.g.
// "required|string|max:255". Bookkeeping columns yield "". The update
// variant of the unique rule excludes the record's own id.
func Rules(table string, col schema.Column, update bool) string {
	if schema.IsBookkeeping(col.Name) {
		return ""
	}

	parts := []string{"required"}
	if col.Nullable {
		parts[0] = "nullable"
	}

	entry, parsedLength := Lookup(col.SQLType)
	rule := entry.Rule
	if strings.Contains(col.Name, "email") {
		rule = "email"
	}
	parts = append(parts, rule)

	length := col.Length
	if length == nil {
		length = parsedLength
	}
	if length != nil && (entry.Canon == "string" || rule == "email") {
		parts = append(parts, fmt.Sprintf("max:%d", *length))
	}

	if col.Unique {
		unique := fmt.Sprintf("unique:%s,%s", table, col.Name)
		if update {
			unique += ",{id}"
		}
		parts = append(parts, unique)
	}

	return strings.Join(parts, "|")
}

// RuleMap builds the validation rules for every fillable column of a table,
// keyed by column name.
func RuleMap(t *schema.Table, update bool) map[string]string {
	rules := make(map[string]string)
	for _, col := range t.FillableColumns() {
		if r := Rules(t.Name, col, update); r != "" {
			rules[col.Name] = r
		}
	}
	return rules
}

// BindingTag converts a pipe-joined rule string into a go-playground
// validator tag for generated request structs, e.g. "required|string|max:255"
// → "required,max=255".
func BindingTag(rule string) string {
	var parts []string
	for _, p := range strings.Split(rule, "|") {
		switch {
		case p == "required":
			parts = append(parts, "required")
		case p == "nullable", p == "string", p == "json":
			// No binding equivalent; presence and type come from the field.
		case p == "integer":
			parts = append(parts, "numeric")
		case p == "numeric", p == "boolean", p == "email", p == "uuid":
			parts = append(parts, p)
		case strings.HasPrefix(p, "max:"):
			parts = append(parts, "max="+strings.TrimPrefix(p, "max:"))
		case strings.HasPrefix(p, "date_format:"), p == "date":
			// Format enforcement happens at decode time for time.Time fields.
		case strings.HasPrefix(p, "unique:"):
			// Uniqueness is a database concern in the generated services.
		}
	}
	if len(parts) == 0 {
		return "omitempty"
	}
	return strings.Join(parts, ",")
}
