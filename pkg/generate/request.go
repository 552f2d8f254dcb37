package generate

import (
	"fmt"
	"strings"

	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/render"
	"github.com/crudforge/crudforge/pkg/typemap"
)

// RequestGenerator emits the create/update request structs with binding tags
// derived from the canonical validation rules.
type RequestGenerator struct{}

// Name implements Generator.
func (RequestGenerator) Name() string { return "request" }

// Generate implements Generator.
func (g RequestGenerator) Generate(in Input) ([]FileRecord, error) {
	t := in.Table
	repl := baseRepl(in)
	repl["package"] = "requests"

	var createFields, updateFields, createRules, updateRules []string
	var assignments, applies []string
	needsTime, needsJSON := false, false

	for _, col := range t.FillableColumns() {
		field := naming.Field(col.Name)
		goType := typemap.GoType(col.SQLType, false)
		if strings.Contains(goType, "time.Time") {
			needsTime = true
		}
		if strings.Contains(goType, "json.RawMessage") {
			needsJSON = true
		}

		createRule := typemap.Rules(t.Name, col, false)
		updateRule := typemap.Rules(t.Name, col, true)
		createRules = append(createRules, fmt.Sprintf("//   - %s: %s", col.Name, createRule))
		updateRules = append(updateRules, fmt.Sprintf("//   - %s: %s", col.Name, updateRule))

		createTag := typemap.BindingTag(createRule)
		if col.Nullable && createTag != "omitempty" {
			createTag = "omitempty," + strings.TrimPrefix(createTag, "required,")
		}
		updateTag := typemap.BindingTag(updateRule)
		updateTag = strings.Replace(updateTag, "required", "omitempty", 1)

		if col.Nullable {
			createFields = append(createFields, fmt.Sprintf("\t%s *%s `json:%q binding:%q`",
				field, goType, col.Name, createTag))
			assignments = append(assignments, fmt.Sprintf("\t\t%s: r.%s,", field, field))
			applies = append(applies, fmt.Sprintf("\tif r.%s != nil {\n\t\trow.%s = r.%s\n\t}", field, field, field))
		} else {
			createFields = append(createFields, fmt.Sprintf("\t%s %s `json:%q binding:%q`",
				field, goType, col.Name, createTag))
			assignments = append(assignments, fmt.Sprintf("\t\t%s: r.%s,", field, field))
			applies = append(applies, fmt.Sprintf("\tif r.%s != nil {\n\t\trow.%s = *r.%s\n\t}", field, field, field))
		}
		updateFields = append(updateFields, fmt.Sprintf("\t%s *%s `json:%q binding:%q`",
			field, goType, col.Name+",omitempty", updateTag))
	}

	var imports []string
	if needsJSON {
		imports = append(imports, "\t\"encoding/json\"")
	}
	if needsTime {
		imports = append(imports, "\t\"time\"")
	}
	if len(imports) > 0 {
		imports = append(imports, "")
	}

	repl["imports"] = strings.Join(imports, "\n")
	repl["create_fields"] = strings.Join(createFields, "\n")
	repl["update_fields"] = strings.Join(updateFields, "\n")
	repl["create_rules"] = strings.Join(createRules, "\n")
	repl["update_rules"] = strings.Join(updateRules, "\n")
	repl["assignments"] = strings.Join(assignments, "\n")
	repl["apply_statements"] = strings.Join(applies, "\n")

	content := render.Render(render.MustStub("request"), repl)

	rec, err := in.emit(g.Name(), "internal/requests/"+naming.Snake(repl["model"])+"_requests.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}
