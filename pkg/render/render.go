// Package render performs literal {{key}} substitution on stub templates.
// All conditional assembly happens in the generators before rendering; the
// renderer itself is a pure string transformation.
package render

import (
	"regexp"
	"sort"
	"strings"
)

var tokenRe = regexp.MustCompile(`\{\{\s*[A-Za-z0-9_]+\s*\}\}`)

// Render substitutes every {{key}} token that has an entry in repl. Tokens
// without an entry are left intact, which keeps partial rendering usable for
// previews. Rendering is deterministic and idempotent for token-free values.
func Render(stub string, repl map[string]string) string {
	keys := make([]string, 0, len(repl))
	for k := range repl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := stub
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{{"+k+"}}", repl[k])
	}
	return out
}

// Unresolved returns the tokens still present in a rendered string, in
// document order. A fully rendered artifact has none.
func Unresolved(s string) []string {
	return tokenRe.FindAllString(s, -1)
}
