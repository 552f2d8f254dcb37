// Package naming centralizes the inflection rules shared by the relationship
// analyzer and the artifact generators, so every consumer derives identical
// names from the same table or column.
package naming

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Singular returns the singular form of a snake_case name.
func Singular(s string) string {
	return inflect.Singularize(s)
}

// Plural returns the plural form of a snake_case name.
func Plural(s string) string {
	return inflect.Pluralize(s)
}

// Pascal converts snake_case to PascalCase.
func Pascal(s string) string {
	return inflect.Camelize(s)
}

// Camel converts snake_case to lowerCamelCase.
func Camel(s string) string {
	return inflect.CamelizeDownFirst(s)
}

// Snake converts CamelCase to snake_case.
func Snake(s string) string {
	return inflect.Underscore(s)
}

// Model returns the generated type name for a table, e.g. "blog_posts" →
// "BlogPost".
func Model(table string) string {
	return Pascal(Singular(table))
}

// Receiver returns the singular lowerCamel identifier for a table, used for
// variable and receiver names, e.g. "blog_posts" → "blogPost".
func Receiver(table string) string {
	return Camel(Singular(table))
}

// initialisms that keep their casing in generated Go identifiers.
var initialisms = map[string]string{
	"Id":   "ID",
	"Uuid": "UUID",
	"Url":  "URL",
	"Api":  "API",
	"Html": "HTML",
	"Json": "JSON",
	"Ip":   "IP",
}

// Field converts a snake_case column name to an exported Go field name,
// honoring common initialisms: "user_id" → "UserID".
func Field(column string) string {
	parts := strings.Split(column, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		word := Pascal(p)
		if fixed, ok := initialisms[word]; ok {
			word = fixed
		}
		b.WriteString(word)
	}
	return b.String()
}

// Title returns a human heading for a snake_case name, e.g. "blog_posts" →
// "Blog Posts".
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// ForeignKeyColumn returns the conventional FK column referencing a table,
// e.g. "users" → "user_id".
func ForeignKeyColumn(table string) string {
	return Singular(table) + "_id"
}

// RouteSegment returns the URL path segment for a table, with underscores
// flattened to hyphens.
func RouteSegment(table string) string {
	return strings.ReplaceAll(Plural(Singular(table)), "_", "-")
}
