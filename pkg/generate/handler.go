package generate

import (
	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/render"
)

// HandlerGenerator emits the gin HTTP handler for the table's CRUD
// endpoints plus nested child listings.
type HandlerGenerator struct{}

// Name implements Generator.
func (HandlerGenerator) Name() string { return "handler" }

// Generate implements Generator.
func (g HandlerGenerator) Generate(in Input) ([]FileRecord, error) {
	repl := baseRepl(in)
	repl["package"] = "handlers"

	content := render.Render(render.MustStub("handler"), repl)
	for _, d := range nestedChildren(in.Graph) {
		content += render.Render(handlerChildFragment, childRepl(repl, d))
	}

	rec, err := in.emit(g.Name(), "internal/handlers/"+naming.Snake(repl["model"])+"_handler.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}

// RoutesGenerator emits the route registration file, including nested child
// routes inferred from hasMany relations.
type RoutesGenerator struct{}

// Name implements Generator.
func (RoutesGenerator) Name() string { return "routes" }

// Generate implements Generator.
func (g RoutesGenerator) Generate(in Input) ([]FileRecord, error) {
	repl := baseRepl(in)
	repl["package"] = "routes"

	nested := ""
	for _, d := range nestedChildren(in.Graph) {
		nested += render.Render(routeChildFragment, childRepl(repl, d))
	}
	repl["nested_routes"] = nested

	content := render.Render(render.MustStub("routes"), repl)

	rec, err := in.emit(g.Name(), "internal/routes/"+naming.Snake(repl["model"])+"_routes.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}
