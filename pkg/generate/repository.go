package generate

import (
	"strings"

	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/relation"
	"github.com/crudforge/crudforge/pkg/render"
)

// RepositoryGenerator emits the gorm repository with CRUD methods, eager
// loading for confirmed relations, and nested child listings.
type RepositoryGenerator struct{}

// Name implements Generator.
func (RepositoryGenerator) Name() string { return "repository" }

// Generate implements Generator.
func (g RepositoryGenerator) Generate(in Input) ([]FileRecord, error) {
	repl := baseRepl(in)
	repl["package"] = "repository"
	repl["preloads"] = preloadChain(in.Graph)
	repl["preload_note"] = ""
	if repl["preloads"] != "" {
		repl["preload_note"] = " with related records preloaded"
	}

	content := render.Render(render.MustStub("repository"), repl)
	for _, d := range nestedChildren(in.Graph) {
		content += render.Render(repoChildFragment, childRepl(repl, d))
	}

	rec, err := in.emit(g.Name(), "internal/repository/"+naming.Snake(repl["model"])+"_repository.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}

// preloadChain renders the .Preload calls for confirmed to-one and to-many
// relations, in graph order.
func preloadChain(graph *relation.Graph) string {
	if graph == nil {
		return ""
	}
	var b strings.Builder
	for _, d := range graph.Relations {
		if d.Confidence != relation.High || d.Kind == relation.MorphTo {
			continue
		}
		b.WriteString(".Preload(\"")
		b.WriteString(naming.Field(naming.Snake(d.MethodName)))
		b.WriteString("\")")
	}
	return b.String()
}
