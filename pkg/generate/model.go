package generate

import (
	"fmt"
	"strings"

	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/relation"
	"github.com/crudforge/crudforge/pkg/render"
	"github.com/crudforge/crudforge/pkg/typemap"
)

// ModelGenerator emits the gorm model struct, including relationship fields
// derived from the inferred graph.
type ModelGenerator struct{}

// Name implements Generator.
func (ModelGenerator) Name() string { return "model" }

// Generate implements Generator.
func (g ModelGenerator) Generate(in Input) ([]FileRecord, error) {
	t := in.Table
	model := naming.Model(t.Name)

	var fields []string
	needsTime, needsJSON, needsGorm := false, false, false

	for _, col := range t.Columns {
		if col.Name == "deleted_at" {
			fields = append(fields, "\tDeletedAt gorm.DeletedAt `gorm:\"column:deleted_at;index\" json:\"-\"`")
			needsGorm = true
			continue
		}

		goType := typemap.GoType(col.SQLType, col.Nullable)
		if strings.Contains(goType, "time.Time") {
			needsTime = true
		}
		if strings.Contains(goType, "json.RawMessage") {
			needsJSON = true
		}

		tag := "column:" + col.Name
		if col.PrimaryKey {
			tag += ";primaryKey"
		}
		if col.Unique {
			tag += ";unique"
		}
		fields = append(fields, fmt.Sprintf("\t%s %s `gorm:%q json:%q`",
			naming.Field(col.Name), goType, tag, col.Name))
	}

	if rels := g.relationFields(in.Graph); rels != "" {
		fields = append(fields, "", rels)
	}

	var imports []string
	if needsJSON {
		imports = append(imports, "\t\"encoding/json\"")
	}
	if needsTime {
		imports = append(imports, "\t\"time\"")
	}
	if needsGorm {
		if len(imports) > 0 {
			imports = append(imports, "")
		}
		imports = append(imports, "\t\"gorm.io/gorm\"")
	}

	content := render.Render(render.MustStub("model"), map[string]string{
		"package": "models",
		"model":   model,
		"table":   t.Name,
		"imports": strings.Join(imports, "\n"),
		"fields":  strings.Join(fields, "\n"),
	})
	// A model without imports drops the empty import block.
	content = strings.Replace(content, "import (\n\n)\n\n", "", 1)

	rec, err := in.emit(g.Name(), "internal/models/"+naming.Snake(model)+".go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}

// relationFields renders one struct field per relationship descriptor.
// Low-confidence polymorphic matches are emitted commented out so they are
// confirmed by hand instead of silently compiled in.
func (ModelGenerator) relationFields(graph *relation.Graph) string {
	if graph == nil || len(graph.Relations) == 0 {
		return ""
	}

	var lines []string
	for _, d := range graph.Relations {
		field := relationField(d)
		if field == "" {
			continue
		}
		if d.Confidence == relation.Low {
			lines = append(lines,
				"\t// Unconfirmed "+string(d.Kind)+" match on "+d.MorphNameOrKey()+"; verify before enabling.",
				"\t// "+strings.TrimPrefix(field, "\t"))
			continue
		}
		lines = append(lines, field)
	}
	return strings.Join(lines, "\n")
}

// relationField builds the gorm field declaration for one descriptor.
func relationField(d relation.Descriptor) string {
	related := naming.Model(d.RelatedTable)
	fieldName := naming.Field(naming.Snake(d.MethodName))
	jsonName := naming.Snake(d.MethodName)

	switch d.Kind {
	case relation.BelongsTo:
		return fmt.Sprintf("\t%s *%s `gorm:\"foreignKey:%s;references:%s\" json:%q`",
			fieldName, related, naming.Field(d.ForeignKey), naming.Field(d.LocalKey), jsonName+",omitempty")
	case relation.HasOne:
		return fmt.Sprintf("\t%s *%s `gorm:\"foreignKey:%s\" json:%q`",
			fieldName, related, naming.Field(d.ForeignKey), jsonName+",omitempty")
	case relation.HasMany:
		return fmt.Sprintf("\t%s []%s `gorm:\"foreignKey:%s\" json:%q`",
			fieldName, related, naming.Field(d.ForeignKey), jsonName+",omitempty")
	case relation.BelongsToMany:
		return fmt.Sprintf("\t%s []%s `gorm:\"many2many:%s\" json:%q`",
			fieldName, related, d.PivotTable, jsonName+",omitempty")
	case relation.MorphOne:
		return fmt.Sprintf("\t%s *%s `gorm:\"polymorphic:%s\" json:%q`",
			fieldName, related, naming.Pascal(d.MorphName), jsonName+",omitempty")
	case relation.MorphMany:
		return fmt.Sprintf("\t%s []%s `gorm:\"polymorphic:%s\" json:%q`",
			fieldName, related, naming.Pascal(d.MorphName), jsonName+",omitempty")
	case relation.MorphToMany, relation.MorphedByMany:
		return fmt.Sprintf("\t%s []%s `gorm:\"many2many:%s;polymorphic:%s\" json:%q`",
			fieldName, related, d.PivotTable, naming.Pascal(d.MorphName), jsonName+",omitempty")
	case relation.MorphTo:
		// The *_type/*_id columns are already plain fields; nothing extra.
		return ""
	}
	return ""
}
