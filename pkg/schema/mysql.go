package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// MySQL introspects a MySQL database through information_schema using a
// database/sql handle (github.com/go-sql-driver/mysql).
type MySQL struct {
	db     *sql.DB
	dbName string
}

// NewMySQL creates a MySQL schema source for the named database.
func NewMySQL(db *sql.DB, dbName string) *MySQL {
	return &MySQL{db: db, dbName: dbName}
}

// Connection implements ConnectionScoped.
func (m *MySQL) Connection() string {
	return "mysql"
}

// HasTable implements Source.
func (m *MySQL) HasTable(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ? AND table_type = 'BASE TABLE'
	`

	var count int
	if err := m.db.QueryRowContext(ctx, query, m.dbName, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return count > 0, nil
}

// TableNames implements Source.
func (m *MySQL) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := m.db.QueryContext(ctx, query, m.dbName)
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
func (m *MySQL) Table(ctx context.Context, name string) (*Table, error) {
	exists, err := m.HasTable(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	table := &Table{Name: name}

	if table.Columns, err = m.getColumns(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get columns for %s: %w", name, err)
	}
	for i := range table.Columns {
		if table.Columns[i].PrimaryKey && table.PrimaryKey == "" {
			table.PrimaryKey = table.Columns[i].Name
		}
	}
	if table.ForeignKeys, err = m.getForeignKeys(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get foreign keys for %s: %w", name, err)
	}

	return table, nil
}

// getColumns retrieves column information, including the COLUMN_KEY flag
// which carries both primary key and single-column uniqueness.
func (m *MySQL) getColumns(ctx context.Context, tableName string) ([]Column, error) {
	query := `
		SELECT
			column_name,
			column_type,
			is_nullable,
			column_default,
			character_maximum_length,
			column_key,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := m.db.QueryContext(ctx, query, m.dbName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var isNullable, columnKey string
		var defaultVal sql.NullString
		var maxLength sql.NullInt64
		var position int

		err := rows.Scan(
			&col.Name,
			&col.SQLType,
			&isNullable,
			&defaultVal,
			&maxLength,
			&columnKey,
			&position,
		)
		if err != nil {
			return nil, err
		}

		col.Nullable = isNullable == "YES"
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}
		if maxLength.Valid {
			n := int(maxLength.Int64)
			col.Length = &n
		}
		col.PrimaryKey = columnKey == "PRI"
		col.Unique = columnKey == "UNI"
		col.Position = position - 1

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// getForeignKeys retrieves single-column foreign key constraints.
func (m *MySQL) getForeignKeys(ctx context.Context, tableName string) ([]ForeignKey, error) {
	query := `
		SELECT
			constraint_name,
			column_name,
			referenced_table_name,
			referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name
	`

	rows, err := m.db.QueryContext(ctx, query, m.dbName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []ForeignKey
	counts := make(map[string]int)
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		all = append(all, fk)
		counts[fk.Name]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Composite constraints span multiple rows; only single-column foreign
	// keys participate in relationship inference.
	var foreignKeys []ForeignKey
	for _, fk := range all {
		if counts[fk.Name] == 1 {
			foreignKeys = append(foreignKeys, fk)
		}
	}
	return foreignKeys, nil
}
