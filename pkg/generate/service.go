package generate

import (
	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/render"
)

// ServiceGenerator emits the service layer between handlers and the
// repository.
type ServiceGenerator struct{}

// Name implements Generator.
func (ServiceGenerator) Name() string { return "service" }

// Generate implements Generator.
func (g ServiceGenerator) Generate(in Input) ([]FileRecord, error) {
	repl := baseRepl(in)
	repl["package"] = "service"

	content := render.Render(render.MustStub("service"), repl)
	for _, d := range nestedChildren(in.Graph) {
		content += render.Render(serviceChildFragment, childRepl(repl, d))
	}

	rec, err := in.emit(g.Name(), "internal/service/"+naming.Snake(repl["model"])+"_service.go", content)
	if err != nil {
		return nil, err
	}
	return []FileRecord{rec}, nil
}
