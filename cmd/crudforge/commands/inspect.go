package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crudforge/crudforge/cmd/crudforge/output"
	"github.com/crudforge/crudforge/pkg/relation"
	"github.com/crudforge/crudforge/pkg/schema"
)

// inspectCmd shows table structure and inferred relationships
var inspectCmd = &cobra.Command{
	Use:   "inspect [table]",
	Short: "Inspect table structure and inferred relationships",
	Long: `Inspect a table's columns, foreign keys, and the relationships
crudforge would infer for it, without generating anything.

Examples:
  crudforge inspect                  # Summarize all tables
  crudforge inspect posts            # Show one table in detail
  crudforge inspect posts --json     # Machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

type inspection struct {
	Table     *schema.Table         `json:"table"`
	Relations []relation.Descriptor `json:"relations"`
}

func runInspect(args []string) error {
	ctx := context.Background()

	src, closeSource, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	analyzer := relation.NewAnalyzer(src)

	if len(args) == 1 {
		return inspectTable(ctx, src, analyzer, args[0])
	}

	names, err := src.TableNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	if len(names) == 0 {
		output.Warning("No tables found in database")
		return nil
	}

	if jsonOutput {
		inspections := make([]inspection, 0, len(names))
		for _, name := range names {
			ins, err := inspect(ctx, src, analyzer, name)
			if err != nil {
				return err
			}
			inspections = append(inspections, ins)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(inspections)
	}

	output.Section(fmt.Sprintf("Database Schema (%d tables)", len(names)))
	for _, name := range names {
		ins, err := inspect(ctx, src, analyzer, name)
		if err != nil {
			return err
		}
		printTableSummary(ins)
		fmt.Println()
	}
	return nil
}

func inspect(ctx context.Context, src schema.Source, analyzer *relation.Analyzer, name string) (inspection, error) {
	table, err := src.Table(ctx, name)
	if err != nil {
		return inspection{}, fmt.Errorf("failed to inspect table %s: %w", name, err)
	}
	graph, err := analyzer.Analyze(ctx, name)
	if err != nil {
		return inspection{}, fmt.Errorf("failed to analyze table %s: %w", name, err)
	}
	return inspection{Table: table, Relations: graph.Relations}, nil
}

func inspectTable(ctx context.Context, src schema.Source, analyzer *relation.Analyzer, name string) error {
	ins, err := inspect(ctx, src, analyzer, name)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ins)
	}

	printTable(ins)
	return nil
}

func printTable(ins inspection) {
	table := ins.Table

	fmt.Printf("Table: %s\n", table.Name)
	fmt.Println(strings.Repeat("=", len(table.Name)+7))
	fmt.Println()

	fmt.Println("Columns:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tNULLABLE\tDEFAULT\tFLAGS")
	_, _ = fmt.Fprintln(w, "----\t----\t--------\t-------\t-----")

	for _, col := range table.Columns {
		nullable := "NO"
		if col.Nullable {
			nullable = "YES"
		}

		defaultVal := "NULL"
		if col.Default != nil {
			defaultVal = *col.Default
		}

		var flags []string
		if col.PrimaryKey {
			flags = append(flags, "PK")
		}
		if col.Unique {
			flags = append(flags, "UNIQUE")
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			col.Name,
			col.SQLType,
			nullable,
			defaultVal,
			strings.Join(flags, ","),
		)
	}
	_ = w.Flush()
	fmt.Println()

	if len(table.ForeignKeys) > 0 {
		fmt.Println("Foreign Keys:")
		for _, fk := range table.ForeignKeys {
			fmt.Printf("  %s: %s -> %s(%s)\n",
				fk.Name,
				fk.Column,
				fk.ReferencedTable,
				fk.ReferencedColumn,
			)
		}
		fmt.Println()
	}

	if len(ins.Relations) > 0 {
		fmt.Println("Relationships:")
		for _, d := range ins.Relations {
			detail := d.ForeignKey
			if d.PivotTable != "" {
				detail = "via " + d.PivotTable
			} else if d.MorphName != "" {
				detail = "morph " + d.MorphName
			}
			line := fmt.Sprintf("  %s %s (%s) -> %s()", d.Kind, d.RelatedTable, detail, d.MethodName)
			if d.Confidence == relation.Low {
				fmt.Println(line)
				output.Warning("    heuristic match, confirm before relying on it")
			} else {
				fmt.Println(line)
			}
		}
	}
}

func printTableSummary(ins inspection) {
	fmt.Printf("Table: %s\n", ins.Table.Name)
	fmt.Printf("  Columns: %d\n", len(ins.Table.Columns))

	if ins.Table.PrimaryKey != "" {
		fmt.Printf("  Primary Key: %s\n", ins.Table.PrimaryKey)
	}

	if len(ins.Table.ForeignKeys) > 0 {
		fmt.Printf("  Foreign Keys: %d\n", len(ins.Table.ForeignKeys))
	}

	if len(ins.Relations) > 0 {
		fmt.Printf("  Relationships: %d\n", len(ins.Relations))
	}
}
