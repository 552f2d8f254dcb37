package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrTableNotFound is returned when a requested table does not exist in the
// introspected schema.
var ErrTableNotFound = errors.New("table not found")

// Source provides read-only schema metadata for one database. Implementations
// never mutate the database.
type Source interface {
	// HasTable reports whether the named table exists.
	HasTable(ctx context.Context, name string) (bool, error)

	// TableNames returns all non-system table names, sorted.
	TableNames(ctx context.Context) ([]string, error)

	// Table introspects a single table. Returns ErrTableNotFound (wrapped)
	// for unknown tables.
	Table(ctx context.Context, name string) (*Table, error)
}

// ConnectionScoped is an optional capability for sources that are bound to a
// named connection. Checked by interface assertion, never by reflection.
type ConnectionScoped interface {
	Connection() string
}

// Snapshot loads every non-system table from a source into a map keyed by
// table name. The relationship analyzer works from a snapshot so reverse
// foreign keys can be resolved without re-querying per table.
func Snapshot(ctx context.Context, src Source) (map[string]*Table, error) {
	names, err := src.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make(map[string]*Table, len(names))
	for _, name := range names {
		table, err := src.Table(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect table %s: %w", name, err)
		}
		tables[name] = table
	}
	return tables, nil
}

// SortedNames returns the keys of a snapshot in sorted order.
func SortedNames(tables map[string]*Table) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
