package generate

import (
	"fmt"
	"strings"

	"github.com/crudforge/crudforge/pkg/relation"
	"github.com/crudforge/crudforge/pkg/render"
	"github.com/crudforge/crudforge/pkg/schema"
	"github.com/crudforge/crudforge/pkg/typemap"
)

// DocsGenerator emits per-table Markdown reference documentation with an
// embedded Mermaid ER fragment. Unlike the fillable enumerations, the schema
// table documents every column.
type DocsGenerator struct{}

// Name implements Generator.
func (DocsGenerator) Name() string { return "docs" }

// Generate implements Generator.
func (g DocsGenerator) Generate(in Input) ([]FileRecord, error) {
	t := in.Table
	repl := baseRepl(in)

	var schemaRows []string
	for _, col := range t.Columns {
		nullable := "no"
		if col.Nullable {
			nullable = "yes"
		}
		def := ""
		if col.Default != nil {
			def = "`" + *col.Default + "`"
		}
		var notes []string
		if col.PrimaryKey {
			notes = append(notes, "primary key")
		}
		if col.Unique {
			notes = append(notes, "unique")
		}
		if fk := t.ForeignKeyFor(col.Name); fk != nil {
			notes = append(notes, fmt.Sprintf("references %s.%s", fk.ReferencedTable, fk.ReferencedColumn))
		}
		schemaRows = append(schemaRows, fmt.Sprintf("| %s | %s | %s | %s | %s |",
			col.Name, col.SQLType, nullable, def, strings.Join(notes, ", ")))
	}

	var validationRows []string
	for _, col := range t.FillableColumns() {
		validationRows = append(validationRows, fmt.Sprintf("| %s | `%s` | `%s` |",
			col.Name,
			escapePipes(typemap.Rules(t.Name, col, false)),
			escapePipes(typemap.Rules(t.Name, col, true))))
	}

	repl["schema_rows"] = strings.Join(schemaRows, "\n")
	repl["validation_rows"] = strings.Join(validationRows, "\n")
	repl["relations_list"] = relationsList(in.Graph)
	repl["mermaid"] = mermaidFragment(t.Name, in.Graph, t)

	content := render.Render(render.MustStub("docs"), repl)

	rec, err := in.emit(g.Name(), "docs/"+t.Name+".md", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}

// escapePipes keeps pipe-joined rule strings from breaking Markdown tables.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func relationsList(graph *relation.Graph) string {
	if graph == nil || len(graph.Relations) == 0 {
		return "_No relationships inferred._"
	}

	var lines []string
	for _, d := range graph.Relations {
		line := fmt.Sprintf("- **%s** `%s`", d.Kind, d.RelatedTable)
		if d.Kind == relation.MorphTo {
			line = fmt.Sprintf("- **%s** via `%s_type`/`%s_id`", d.Kind, d.MorphName, d.MorphName)
		}
		if d.PivotTable != "" {
			line += fmt.Sprintf(" through `%s`", d.PivotTable)
		}
		if d.ForeignKey != "" {
			line += fmt.Sprintf(" (key `%s`)", d.ForeignKey)
		}
		line += fmt.Sprintf(" — accessor `%s`", d.MethodName)
		if d.Confidence == relation.Low {
			line += " ⚠ unconfirmed, verify manually"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// mermaidFragment renders the table's entity block and its confirmed
// relationship edges. Morph guesses stay out of the diagram.
func mermaidFragment(table string, graph *relation.Graph, t *schema.Table) string {
	var b strings.Builder

	b.WriteString("\t" + table + " {\n")
	for _, col := range t.Columns {
		canon, _ := typemap.Canonical(col.SQLType)
		marker := ""
		if col.PrimaryKey {
			marker = " PK"
		} else if t.ForeignKeyFor(col.Name) != nil {
			marker = " FK"
		}
		b.WriteString(fmt.Sprintf("\t\t%s %s%s\n", canon, col.Name, marker))
	}
	b.WriteString("\t}")

	if graph == nil {
		return b.String()
	}
	for _, d := range graph.Relations {
		if d.Confidence != relation.High {
			continue
		}
		switch d.Kind {
		case relation.BelongsTo:
			b.WriteString(fmt.Sprintf("\n\t%s ||--o{ %s : %s", d.RelatedTable, table, d.ForeignKey))
		case relation.HasMany:
			b.WriteString(fmt.Sprintf("\n\t%s ||--o{ %s : %s", table, d.RelatedTable, d.ForeignKey))
		case relation.HasOne:
			b.WriteString(fmt.Sprintf("\n\t%s ||--|| %s : %s", table, d.RelatedTable, d.ForeignKey))
		case relation.BelongsToMany:
			b.WriteString(fmt.Sprintf("\n\t%s }o--o{ %s : %s", table, d.RelatedTable, d.PivotTable))
		}
	}
	return b.String()
}
