package generate

import (
	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/relation"
)

// baseRepl builds the replacement keys shared by every artifact stub.
func baseRepl(in Input) map[string]string {
	t := in.Table
	pk := t.PrimaryKey
	if pk == "" {
		pk = "id"
	}
	return map[string]string{
		"module":      in.Options.Module,
		"model":       naming.Model(t.Name),
		"table":       t.Name,
		"title":       naming.Title(naming.Singular(t.Name)),
		"route":       naming.RouteSegment(t.Name),
		"receiver":    naming.Receiver(t.Name),
		"primary_key": pk,
	}
}

// nestedChildren returns the confirmed hasMany descriptors, which drive the
// nested list endpoints (repository/service/handler methods plus routes).
func nestedChildren(graph *relation.Graph) []relation.Descriptor {
	if graph == nil {
		return nil
	}
	var out []relation.Descriptor
	for _, d := range graph.ByKind(relation.HasMany) {
		if d.Confidence == relation.High {
			out = append(out, d)
		}
	}
	return out
}

// childRepl builds the replacement keys for one nested child fragment.
func childRepl(parent map[string]string, d relation.Descriptor) map[string]string {
	repl := make(map[string]string, len(parent)+5)
	for k, v := range parent {
		repl[k] = v
	}
	repl["child_model"] = naming.Model(d.RelatedTable)
	repl["child_field"] = naming.Field(naming.Snake(d.MethodName))
	repl["child_route"] = naming.RouteSegment(d.RelatedTable)
	repl["child_fk"] = d.ForeignKey
	repl["child_title"] = naming.Title(d.RelatedTable)
	return repl
}

// Fragment templates for nested list endpoints, rendered per hasMany child
// and spliced into the parent's artifacts.
const (
	repoChildFragment = `
// List{{child_field}} returns the {{child_title}} owned by one {{title}}.
func (r *{{model}}Repository) List{{child_field}}(ctx context.Context, id int64) ([]models.{{child_model}}, error) {
	var rows []models.{{child_model}}
	err := r.db.WithContext(ctx).Where("{{child_fk}} = ?", id).Find(&rows).Error
	return rows, err
}
`

	serviceChildFragment = `
// List{{child_field}} returns the {{child_title}} owned by one {{title}}.
func (s *{{model}}Service) List{{child_field}}(ctx context.Context, id int64) ([]models.{{child_model}}, error) {
	return s.repo.List{{child_field}}(ctx, id)
}
`

	handlerChildFragment = `
// List{{child_field}} handles GET /{{route}}/:id/{{child_route}}.
func (h *{{model}}Handler) List{{child_field}}(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	rows, err := h.svc.List{{child_field}}(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resources.{{child_model}}Collection(rows))
}
`

	routeChildFragment = "\t\tg.GET(\"/:id/{{child_route}}\", h.List{{child_field}})\n"
)
