package generate

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/schema"
	"github.com/crudforge/crudforge/pkg/typemap"
)

// OpenAPIGenerator emits an OpenAPI 3 document covering the table's CRUD
// endpoints. Output is deterministic: yaml.v3 serializes map keys in sorted
// order.
type OpenAPIGenerator struct{}

// Name implements Generator.
func (OpenAPIGenerator) Name() string { return "openapi" }

// Generate implements Generator.
func (g OpenAPIGenerator) Generate(in Input) ([]FileRecord, error) {
	t := in.Table
	model := naming.Model(t.Name)
	route := "/" + naming.RouteSegment(t.Name)
	title := naming.Title(naming.Singular(t.Name))

	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   title + " API",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			route: map[string]any{
				"get": map[string]any{
					"summary": "List " + title,
					"parameters": []any{
						queryParam("limit", "integer", "Page size"),
						queryParam("offset", "integer", "Page offset"),
					},
					"responses": map[string]any{
						"200": jsonResponse("List of "+title, map[string]any{
							"type":  "array",
							"items": schemaRef(model),
						}),
					},
				},
				"post": map[string]any{
					"summary":     "Create " + title,
					"requestBody": jsonBody(schemaRef(model + "Create")),
					"responses": map[string]any{
						"201": jsonResponse("Created "+title, schemaRef(model)),
						"422": map[string]any{"description": "Validation failed"},
					},
				},
			},
			route + "/{id}": map[string]any{
				"parameters": []any{pathParam()},
				"get": map[string]any{
					"summary": "Show one " + title,
					"responses": map[string]any{
						"200": jsonResponse(title, schemaRef(model)),
						"404": map[string]any{"description": "Not found"},
					},
				},
				"put": map[string]any{
					"summary":     "Update " + title,
					"requestBody": jsonBody(schemaRef(model + "Update")),
					"responses": map[string]any{
						"200": jsonResponse("Updated "+title, schemaRef(model)),
						"404": map[string]any{"description": "Not found"},
						"422": map[string]any{"description": "Validation failed"},
					},
				},
				"delete": map[string]any{
					"summary": "Delete " + title,
					"responses": map[string]any{
						"204": map[string]any{"description": "Deleted"},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				model:            fullSchema(t),
				model + "Create": payloadSchema(t, true),
				model + "Update": payloadSchema(t, false),
			},
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document for %s: %w", t.Name, err)
	}

	rec, err := in.emit(g.Name(), "docs/openapi/"+t.Name+".yaml", string(data))
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}

func schemaRef(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonBody(schema map[string]any) map[string]any {
	return map[string]any{
		"required": true,
		"content": map[string]any{
			"application/json": map[string]any{"schema": schema},
		},
	}
}

func jsonResponse(description string, schema map[string]any) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{"schema": schema},
		},
	}
}

func queryParam(name, typ, description string) map[string]any {
	return map[string]any{
		"name":        name,
		"in":          "query",
		"description": description,
		"schema":      map[string]any{"type": typ},
	}
}

func pathParam() map[string]any {
	return map[string]any{
		"name":     "id",
		"in":       "path",
		"required": true,
		"schema":   map[string]any{"type": "integer", "format": "int64"},
	}
}

// columnSchema maps one column through the canonical type table.
func columnSchema(col schema.Column) map[string]any {
	entry, _ := typemap.Lookup(col.SQLType)
	prop := map[string]any{"type": entry.OpenAPIType}
	if entry.OpenAPIFormat != "" {
		prop["format"] = entry.OpenAPIFormat
	}
	if col.Length != nil && entry.OpenAPIType == "string" {
		prop["maxLength"] = *col.Length
	}
	if col.Nullable {
		prop["nullable"] = true
	}
	return prop
}

// fullSchema documents every column, bookkeeping included.
func fullSchema(t *schema.Table) map[string]any {
	props := make(map[string]any, len(t.Columns))
	for _, col := range t.Columns {
		props[col.Name] = columnSchema(col)
	}
	return map[string]any{"type": "object", "properties": props}
}

// payloadSchema documents the fillable columns; the create variant lists
// required fields.
func payloadSchema(t *schema.Table, create bool) map[string]any {
	props := make(map[string]any)
	var required []string
	for _, col := range t.FillableColumns() {
		props[col.Name] = columnSchema(col)
		if create && !col.Nullable {
			required = append(required, col.Name)
		}
	}
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}
