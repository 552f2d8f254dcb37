package generate

import (
	"fmt"
	"strings"

	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/render"
	"github.com/crudforge/crudforge/pkg/typemap"
)

// ResourceGenerator emits the API response shaping for a model. Soft-delete
// bookkeeping stays internal; everything else is exposed.
type ResourceGenerator struct{}

// Name implements Generator.
func (ResourceGenerator) Name() string { return "resource" }

// Generate implements Generator.
func (g ResourceGenerator) Generate(in Input) ([]FileRecord, error) {
	t := in.Table
	repl := baseRepl(in)
	repl["package"] = "resources"

	var fields, assignments []string
	needsTime, needsJSON := false, false

	for _, col := range t.Columns {
		if col.Name == "deleted_at" {
			continue
		}
		field := naming.Field(col.Name)
		goType := typemap.GoType(col.SQLType, col.Nullable)
		if strings.Contains(goType, "time.Time") {
			needsTime = true
		}
		if strings.Contains(goType, "json.RawMessage") {
			needsJSON = true
		}
		fields = append(fields, fmt.Sprintf("\t%s %s `json:%q`", field, goType, col.Name))
		assignments = append(assignments, fmt.Sprintf("\t\t%s: row.%s,", field, field))
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
	repl["fields"] = strings.Join(fields, "\n")
	repl["assignments"] = strings.Join(assignments, "\n")

	content := render.Render(render.MustStub("resource"), repl)

	rec, err := in.emit(g.Name(), "internal/resources/"+naming.Snake(repl["model"])+"_resource.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}
