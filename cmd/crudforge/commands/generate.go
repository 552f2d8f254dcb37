package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/crudforge/crudforge/cmd/crudforge/output"
	"github.com/crudforge/crudforge/cmd/crudforge/tui"
	"github.com/crudforge/crudforge/pkg/generate"
)

var (
	// Generate flags
	genAll    bool
	genOnly   []string
	genSkip   []string
	genForce  bool
	genDryRun bool
	genModule string
	genOut    string
)

// generateCmd scaffolds CRUD artifacts for one or more tables
var generateCmd = &cobra.Command{
	Use:   "generate [table]",
	Short: "Generate CRUD boilerplate for database tables",
	Long: `Generate CRUD boilerplate for one table, all tables, or an
interactively picked set of tables.

Each table produces models, repositories, services, handlers, request and
resource types, routes, factories, seeders, policies, tests, Markdown docs
and an OpenAPI document. Existing files are skipped unless --force is set.

Examples:
  crudforge generate posts                     # One table
  crudforge generate --all                     # Every table
  crudforge generate                           # Interactive picker
  crudforge generate posts --only model,docs   # Restrict artifacts
  crudforge generate --all --dry-run           # Plan without writing`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(args)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&genAll, "all", false, "Generate every table in the schema")
	generateCmd.Flags().StringSliceVar(&genOnly, "only", nil, "Restrict to the named artifacts")
	generateCmd.Flags().StringSliceVar(&genSkip, "skip", nil, "Exclude the named artifacts")
	generateCmd.Flags().BoolVarP(&genForce, "force", "f", false, "Overwrite existing files")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Report target paths without writing")
	generateCmd.Flags().StringVarP(&genModule, "module", "m", "", "Module path of the generated application")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", ".", "Root directory for generated files")
}

func runGenerate(args []string) error {
	if err := validateArtifacts(genOnly); err != nil {
		return err
	}
	if err := validateArtifacts(genSkip); err != nil {
		return err
	}

	ctx := context.Background()

	src, closeSource, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	opts := generate.Options{
		Module: genModule,
		OutDir: genOut,
		Force:  genForce,
		DryRun: genDryRun,
		Only:   genOnly,
		Skip:   genSkip,
	}
	runner := generate.NewRunner(src, nil, opts)

	var summary *generate.Summary
	switch {
	case len(args) == 1:
		summary, err = runner.RunOne(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to generate table %s: %w", args[0], err)
		}

	case genAll:
		summary, err = runner.RunAll(ctx)
		if err != nil {
			return err
		}

	default:
		if !canPrompt(jsonOutput, isatty.IsTerminal(os.Stdout.Fd())) {
			return fmt.Errorf("no table specified; pass a table name or use --all")
		}
		names, err := src.TableNames(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}
		if len(names) == 0 {
			output.Warning("No tables found in database")
			return nil
		}
		picked, err := tui.PickTables(names)
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			output.Muted("No tables selected")
			return nil
		}
		summary = runner.RunTables(ctx, picked)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		printSummary(summary)
	}

	if summary.ExitCode() != 0 {
		os.Exit(1)
	}
	return nil
}

// canPrompt reports whether the interactive table picker may run. JSON
// output and non-terminal stdout both force batch behavior.
func canPrompt(jsonOut, stdoutTTY bool) bool {
	return !jsonOut && stdoutTTY
}

func validateArtifacts(names []string) error {
	valid := generate.ArtifactNames()
	for _, name := range names {
		found := false
		for _, v := range valid {
			if name == v {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown artifact %q (valid: %s)", name, strings.Join(valid, ", "))
		}
	}
	return nil
}

func printSummary(s *generate.Summary) {
	output.Section(fmt.Sprintf("Generation summary (%d tables)", len(s.Tables)))

	for _, group := range s.Grouped() {
		output.Primary("%s", group.Artifact)
		for _, rec := range group.Records {
			fmt.Printf("  %s %s\n", output.ActionIcon(string(rec.Action)), rec.Path)
		}
	}

	written := s.CountByAction(generate.ActionWritten)
	skipped := s.CountByAction(generate.ActionSkipped)
	planned := s.CountByAction(generate.ActionPlanned)

	fmt.Println()
	output.Info("%d written, %d skipped, %d planned", written, skipped, planned)
	if skipped > 0 && !genForce {
		output.Muted("Re-run with --force to overwrite skipped files")
	}

	if len(s.Warnings) > 0 {
		fmt.Println()
		for _, w := range s.Warnings {
			output.Warning("%s", w)
		}
	}

	if len(s.Errors) > 0 {
		fmt.Println()
		for _, e := range s.Errors {
			output.Error("%s", e.Error())
		}
	}
}
