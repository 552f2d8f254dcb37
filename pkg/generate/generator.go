// Package generate turns an introspected table and its relationship graph
// into application source files via stub templates. Each artifact has its
// own generator; the Runner sequences them and collects results.
package generate

import (
	"path/filepath"

	"github.com/crudforge/crudforge/pkg/relation"
	"github.com/crudforge/crudforge/pkg/schema"
)

// Action records what happened to one target path.
type Action string

const (
	// ActionWritten means the file was created or overwritten.
	ActionWritten Action = "written"
	// ActionSkipped means the file already existed and force was unset.
	ActionSkipped Action = "skipped"
	// ActionPlanned means a dry run computed the path without writing.
	ActionPlanned Action = "planned"
)

// FileRecord is one generated (or skipped/planned) file, accumulated for the
// run summary.
type FileRecord struct {
	Artifact string `json:"artifact"`
	Path     string `json:"path"`
	Action   Action `json:"action"`
}

// Input is everything a generator consumes for one table.
type Input struct {
	Table   *schema.Table
	Graph   *relation.Graph
	Options Options
	Sink    Sink
}

// Generator produces one artifact type for a table.
type Generator interface {
	Name() string
	Generate(in Input) ([]FileRecord, error)
}

// emit applies the shared write policy: deterministic path under OutDir,
// skip-on-exists unless force, plan-only under dry run.
func (in Input) emit(artifact, relPath, content string) (FileRecord, error) {
	path := filepath.Join(in.Options.OutDir, filepath.FromSlash(relPath))
	rec := FileRecord{Artifact: artifact, Path: path}

	if in.Sink.Exists(path) && !in.Options.Force {
		rec.Action = ActionSkipped
		return rec, nil
	}
	if in.Options.DryRun {
		rec.Action = ActionPlanned
		return rec, nil
	}
	if err := in.Sink.WriteFile(path, []byte(content)); err != nil {
		return rec, err
	}
	rec.Action = ActionWritten
	return rec, nil
}

// All returns every generator in execution order.
func All() []Generator {
	return []Generator{
		ModelGenerator{},
		RepositoryGenerator{},
		ServiceGenerator{},
		HandlerGenerator{},
		RequestGenerator{},
		ResourceGenerator{},
		RoutesGenerator{},
		FactoryGenerator{},
		SeederGenerator{},
		PolicyGenerator{},
		TestsGenerator{},
		DocsGenerator{},
		OpenAPIGenerator{},
	}
}

// Select filters All through the Only/Skip options.
func Select(opts Options) []Generator {
	var out []Generator
	for _, g := range All() {
		if opts.wants(g.Name()) {
			out = append(out, g)
		}
	}
	return out
}

// ArtifactNames lists the valid --only/--skip values.
func ArtifactNames() []string {
	gens := All()
	names := make([]string, 0, len(gens))
	for _, g := range gens {
		names = append(names, g.Name())
	}
	return names
}
