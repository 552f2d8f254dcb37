package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite introspects a SQLite database through sqlite_master and PRAGMA
// statements (modernc.org/sqlite, no cgo).
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a SQLite schema source.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Connection implements ConnectionScoped.
func (s *SQLite) Connection() string {
	return "sqlite"
}

// HasTable implements Source.
func (s *SQLite) HasTable(ctx context.Context, name string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return count > 0, nil
}

// TableNames implements Source.
func (s *SQLite) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if IsSystemTable(name) {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Table implements Source.
func (s *SQLite) Table(ctx context.Context, name string) (*Table, error) {
	exists, err := s.HasTable(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	table := &Table{Name: name}

	if table.Columns, err = s.getColumns(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get columns for %s: %w", name, err)
	}
	for i := range table.Columns {
		if table.Columns[i].PrimaryKey && table.PrimaryKey == "" {
			table.PrimaryKey = table.Columns[i].Name
		}
	}
	if err = s.markUnique(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to get indexes for %s: %w", name, err)
	}
	if table.ForeignKeys, err = s.getForeignKeys(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get foreign keys for %s: %w", name, err)
	}

	return table, nil
}

// quoteIdent quotes a table name for use inside a PRAGMA, which cannot take
// bound parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *SQLite) getColumns(ctx context.Context, tableName string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var cid, notNull, pk int
		var name, sqlType string
		var defaultVal sql.NullString

		if err := rows.Scan(&cid, &name, &sqlType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}

		col := Column{
			Name:       name,
			SQLType:    strings.ToLower(sqlType),
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
			Position:   cid,
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// markUnique flags columns covered by single-column unique indexes.
func (s *SQLite) markUnique(ctx context.Context, table *Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(table.Name)))
	if err != nil {
		return err
	}

	type indexEntry struct {
		name   string
		unique bool
	}
	var indexes []indexEntry
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return err
		}
		indexes = append(indexes, indexEntry{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, idx := range indexes {
		if !idx.unique {
			continue
		}
		cols, err := s.indexColumns(ctx, idx.name)
		if err != nil {
			return err
		}
		if len(cols) != 1 {
			continue
		}
		if col := table.Column(cols[0]); col != nil {
			col.Unique = true
		}
	}
	return nil
}

func (s *SQLite) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(indexName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

func (s *SQLite) getForeignKeys(ctx context.Context, tableName string) ([]ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int][]ForeignKey)
	var ids []int
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string

		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		refColumn := "id"
		if to.Valid {
			refColumn = to.String
		}
		if _, seen := byID[id]; !seen {
			ids = append(ids, id)
		}
		byID[id] = append(byID[id], ForeignKey{
			Name:             fmt.Sprintf("%s_%s_fkey", tableName, from),
			Column:           from,
			ReferencedTable:  refTable,
			ReferencedColumn: refColumn,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Composite foreign keys (several rows sharing an id) are skipped, as
	// with the other drivers.
	var foreignKeys []ForeignKey
	for _, id := range ids {
		if fks := byID[id]; len(fks) == 1 {
			foreignKeys = append(foreignKeys, fks[0])
		}
	}
	return foreignKeys, nil
}
