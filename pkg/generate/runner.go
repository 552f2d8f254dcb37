package generate

import (
	"context"
	"fmt"
	"sort"

	"github.com/crudforge/crudforge/pkg/relation"
	"github.com/crudforge/crudforge/pkg/schema"
)

// RunError is one recorded failure, bounded to a single table and artifact.
type RunError struct {
	Table    string `json:"table"`
	Artifact string `json:"artifact"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

func newRunError(table, artifact string, err error) RunError {
	return RunError{Table: table, Artifact: artifact, Message: err.Error(), Err: err}
}

func (e RunError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Table, e.Artifact, e.Err)
}

// Summary accumulates the outcome of one run: the source connection, files
// grouped by artifact, skipped paths, recorded errors, and low-confidence
// warnings. Append-only within a run.
type Summary struct {
	Connection string       `json:"connection,omitempty"`
	Tables     []string     `json:"tables"`
	Records    []FileRecord `json:"records"`
	Errors     []RunError   `json:"errors,omitempty"`
	Warnings   []string     `json:"warnings,omitempty"`
}

// ExitCode is the sole machine-readable success signal: 0 when every table
// and artifact succeeded, 1 otherwise.
func (s *Summary) ExitCode() int {
	if len(s.Errors) > 0 {
		return 1
	}
	return 0
}

// CountByAction tallies records with the given action.
func (s *Summary) CountByAction(action Action) int {
	n := 0
	for _, rec := range s.Records {
		if rec.Action == action {
			n++
		}
	}
	return n
}

// ArtifactGroup is one artifact type's records, for grouped reporting.
type ArtifactGroup struct {
	Artifact string
	Records  []FileRecord
}

// Grouped returns records grouped by artifact type, sorted by artifact name.
func (s *Summary) Grouped() []ArtifactGroup {
	byArtifact := make(map[string][]FileRecord)
	for _, rec := range s.Records {
		byArtifact[rec.Artifact] = append(byArtifact[rec.Artifact], rec)
	}
	names := make([]string, 0, len(byArtifact))
	for name := range byArtifact {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]ArtifactGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, ArtifactGroup{Artifact: name, Records: byArtifact[name]})
	}
	return groups
}

// Runner sequences the per-table pipeline: introspect, analyze
// relationships, fan out to the selected generators. Tables run strictly
// sequentially; failures stay bounded to their table and artifact.
type Runner struct {
	source   schema.Source
	analyzer *relation.Analyzer
	sink     Sink
	opts     Options
}

// NewRunner creates a Runner. A nil sink defaults to Disk.
func NewRunner(src schema.Source, sink Sink, opts Options) *Runner {
	if sink == nil {
		sink = Disk{}
	}
	if opts.Connection == "" {
		if scoped, ok := src.(schema.ConnectionScoped); ok {
			opts.Connection = scoped.Connection()
		}
	}
	return &Runner{
		source:   src,
		analyzer: relation.NewAnalyzer(src),
		sink:     sink,
		opts:     opts.withDefaults(),
	}
}

// RunAll generates every non-system table. Per-table failures are recorded
// and do not stop the loop.
func (r *Runner) RunAll(ctx context.Context) (*Summary, error) {
	names, err := r.source.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return r.RunTables(ctx, names), nil
}

// RunTables generates the named tables with batch semantics: analysis and
// generation failures for one table are recorded and the loop continues.
func (r *Runner) RunTables(ctx context.Context, tables []string) *Summary {
	s := &Summary{Connection: r.opts.Connection}
	for _, name := range tables {
		if err := r.runTable(ctx, name, s); err != nil {
			s.Errors = append(s.Errors, newRunError(name, "analysis", err))
		}
	}
	return s
}

// RunOne generates a single table. An analysis-phase failure is fatal for
// the invocation; generator failures are still recorded per artifact.
func (r *Runner) RunOne(ctx context.Context, table string) (*Summary, error) {
	s := &Summary{Connection: r.opts.Connection}
	if err := r.runTable(ctx, table, s); err != nil {
		return s, err
	}
	return s, nil
}

func (r *Runner) runTable(ctx context.Context, name string, s *Summary) error {
	table, err := r.source.Table(ctx, name)
	if err != nil {
		return err
	}
	graph, err := r.analyzer.Analyze(ctx, name)
	if err != nil {
		return err
	}

	for _, d := range graph.LowConfidence() {
		s.Warnings = append(s.Warnings, fmt.Sprintf(
			"%s: %s %s via %q is a heuristic match, confirm before relying on it",
			name, d.Kind, d.RelatedTable, d.MorphNameOrKey()))
	}

	in := Input{Table: table, Graph: graph, Options: r.opts, Sink: r.sink}
	for _, gen := range Select(r.opts) {
		recs, err := runGenerator(gen, in)
		if err != nil {
			s.Errors = append(s.Errors, newRunError(name, gen.Name(), err))
			continue
		}
		s.Records = append(s.Records, recs...)
	}

	s.Tables = append(s.Tables, name)
	return nil
}

// runGenerator converts generator panics into recorded errors so one bad
// artifact cannot abort its siblings.
func runGenerator(gen Generator, in Input) (recs []FileRecord, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator panicked: %v", rec)
		}
	}()
	return gen.Generate(in)
}
