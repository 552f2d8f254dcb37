package generate

import (
	"fmt"
	"strings"

	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/render"
	"github.com/crudforge/crudforge/pkg/typemap"
)

// FactoryGenerator emits the test-data factory. Only required columns get
// defaults; nullable columns stay at their zero value.
type FactoryGenerator struct{}

// Name implements Generator.
func (FactoryGenerator) Name() string { return "factory" }

// Generate implements Generator.
func (g FactoryGenerator) Generate(in Input) ([]FileRecord, error) {
	t := in.Table
	repl := baseRepl(in)
	repl["package"] = "factories"

	var defaults []string
	needsTime, needsJSON := false, false

	for _, col := range t.FillableColumns() {
		if col.Nullable {
			continue
		}
		value := factoryValue(col.Name, col.SQLType)
		if value == "" {
			continue
		}
		if strings.Contains(value, "time.Now") {
			needsTime = true
		}
		if strings.Contains(value, "json.RawMessage") {
			needsJSON = true
		}
		defaults = append(defaults, fmt.Sprintf("\t\t%s: %s,", naming.Field(col.Name), value))
	}

	imports := ""
	if needsJSON {
		imports += "\t\"encoding/json\"\n"
	}
	if needsTime {
		imports += "\t\"time\"\n"
	}

	repl["imports"] = imports
	repl["defaults"] = strings.Join(defaults, "\n")

	content := render.Render(render.MustStub("factory"), repl)

	rec, err := in.emit(g.Name(), "internal/factories/"+naming.Snake(repl["model"])+"_factory.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}

// factoryValue picks a plausible literal for one required column.
func factoryValue(name, sqlType string) string {
	if strings.Contains(name, "email") {
		return `"user@example.com"`
	}

	entry, _ := typemap.Lookup(sqlType)
	switch entry.Canon {
	case "integer":
		return "1"
	case "decimal":
		return "9.99"
	case "boolean":
		return "true"
	case "date", "datetime":
		return "time.Now()"
	case "time":
		return `"12:00:00"`
	case "uuid":
		return fmt.Sprintf("%q", entry.Example)
	case "json":
		return "json.RawMessage(`{}`)"
	case "binary":
		return ""
	default:
		return fmt.Sprintf("%q", "example "+strings.ReplaceAll(name, "_", " "))
	}
}

// SeederGenerator emits the database seeder that feeds factory output into
// gorm.
type SeederGenerator struct{}

// Name implements Generator.
func (SeederGenerator) Name() string { return "seeder" }

// Generate implements Generator.
func (g SeederGenerator) Generate(in Input) ([]FileRecord, error) {
	repl := baseRepl(in)
	repl["package"] = "seeders"

	content := render.Render(render.MustStub("seeder"), repl)

	rec, err := in.emit(g.Name(), "internal/seeders/"+naming.Snake(repl["model"])+"_seeder.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}
