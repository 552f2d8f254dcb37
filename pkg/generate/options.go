package generate

// Options configures one generation run. The value is immutable: it is
// passed by value into every generator and never mutated after the command
// layer builds it.
type Options struct {
	// Module is the module path the generated application will live in.
	Module string

	// OutDir is the root directory generated files are written under.
	OutDir string

	// Force overwrites existing files. When unset, existing files are
	// reported as skipped.
	Force bool

	// DryRun computes and reports file paths without writing anything.
	DryRun bool

	// Connection names the source connection, recorded in summaries.
	Connection string

	// Only restricts the run to the named artifacts. Empty means all.
	Only []string

	// Skip excludes the named artifacts.
	Skip []string
}

// DefaultModule is used when no module path override is given.
const DefaultModule = "app"

// withDefaults normalizes unset fields.
func (o Options) withDefaults() Options {
	if o.Module == "" {
		o.Module = DefaultModule
	}
	if o.OutDir == "" {
		o.OutDir = "."
	}
	return o
}

// wants reports whether the named artifact is selected by Only/Skip.
func (o Options) wants(artifact string) bool {
	for _, s := range o.Skip {
		if s == artifact {
			return false
		}
	}
	if len(o.Only) == 0 {
		return true
	}
	for _, only := range o.Only {
		if only == artifact {
			return true
		}
	}
	return false
}
