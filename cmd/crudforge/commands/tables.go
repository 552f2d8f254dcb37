package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crudforge/crudforge/cmd/crudforge/output"
)

// tablesCmd lists the user tables visible to the generator
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables available for generation",
	Long: `List every user table in the connected schema, excluding
infrastructure tables like migration bookkeeping.

Examples:
  crudforge tables
  crudforge tables --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTables()
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

func runTables() error {
	ctx := context.Background()

	src, closeSource, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	names, err := src.TableNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}

	if len(names) == 0 {
		output.Warning("No tables found in database")
		return nil
	}

	for _, name := range names {
		fmt.Println(name)
	}
	output.Muted("%d tables", len(names))
	return nil
}
