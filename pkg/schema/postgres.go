package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres introspects a PostgreSQL database through information_schema.
type Postgres struct {
	pool *pgxpool.Pool
	conn string
}

// NewPostgres creates a PostgreSQL schema source on top of a pgx pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, conn: "postgres"}
}

// Connection implements ConnectionScoped.
func (p *Postgres) Connection() string {
	return p.conn
}

// HasTable implements Source.
func (p *Postgres) HasTable(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			  AND table_type = 'BASE TABLE'
			  AND table_name = $1
		)
	`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return exists, nil
}

// TableNames implements Source.
func (p *Postgres) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := p.pool.Query(ctx, query)
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
func (p *Postgres) Table(ctx context.Context, name string) (*Table, error) {
	exists, err := p.HasTable(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	table := &Table{Name: name}

	if table.Columns, err = p.getColumns(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get columns for %s: %w", name, err)
	}
	if err = p.markPrimaryKey(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to get primary key for %s: %w", name, err)
	}
	if err = p.markUnique(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to get unique constraints for %s: %w", name, err)
	}
	if table.ForeignKeys, err = p.getForeignKeys(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get foreign keys for %s: %w", name, err)
	}

	return table, nil
}

// getColumns retrieves column information for a table.
func (p *Postgres) getColumns(ctx context.Context, tableName string) ([]Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			udt_name,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_default,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := p.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var dataType, udtName string
		var maxLength, precision, scale *int
		var isNullable string
		var defaultVal *string
		var position int

		err := rows.Scan(
			&col.Name,
			&dataType,
			&udtName,
			&maxLength,
			&precision,
			&scale,
			&isNullable,
			&defaultVal,
			&position,
		)
		if err != nil {
			return nil, err
		}

		col.SQLType = buildSQLType(dataType, udtName, maxLength, precision, scale)
		col.Nullable = isNullable == "YES"
		col.Default = defaultVal
		col.Length = maxLength
		col.Position = position - 1

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// markPrimaryKey resolves the primary key and flags its column. Composite
// primary keys record only the first column as Table.PrimaryKey.
func (p *Postgres) markPrimaryKey(ctx context.Context, table *Table) error {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = 'public'
			AND tc.table_name = $1
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := p.pool.Query(ctx, query, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if table.PrimaryKey == "" {
			table.PrimaryKey = name
		}
		if col := table.Column(name); col != nil {
			col.PrimaryKey = true
		}
	}
	return rows.Err()
}

// markUnique flags columns covered by a single-column unique constraint or
// unique index. Multi-column uniqueness does not mark individual columns.
func (p *Postgres) markUnique(ctx context.Context, table *Table) error {
	query := `
		SELECT i.relname, array_agg(a.attname) AS columns
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1
			AND t.relnamespace = (SELECT oid FROM pg_namespace WHERE nspname = 'public')
			AND ix.indisunique
			AND NOT ix.indisprimary
		GROUP BY i.relname
	`

	rows, err := p.pool.Query(ctx, query, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var indexName string
		var columns []string
		if err := rows.Scan(&indexName, &columns); err != nil {
			return err
		}
		if len(columns) != 1 {
			continue
		}
		if col := table.Column(columns[0]); col != nil {
			col.Unique = true
		}
	}
	return rows.Err()
}

// getForeignKeys retrieves single-column foreign key constraints.
func (p *Postgres) getForeignKeys(ctx context.Context, tableName string) ([]ForeignKey, error) {
	query := `
		SELECT
			tc.constraint_name,
			array_agg(DISTINCT kcu.column_name) AS columns,
			ccu.table_name AS foreign_table,
			array_agg(DISTINCT ccu.column_name) AS foreign_columns
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
		WHERE tc.table_schema = 'public'
			AND tc.table_name = $1
			AND tc.constraint_type = 'FOREIGN KEY'
		GROUP BY tc.constraint_name, ccu.table_name
		ORDER BY tc.constraint_name
	`

	rows, err := p.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var foreignKeys []ForeignKey
	for rows.Next() {
		var name, foreignTable string
		var columns, foreignColumns []string

		if err := rows.Scan(&name, &columns, &foreignTable, &foreignColumns); err != nil {
			return nil, err
		}
		// Composite foreign keys have no single-column relationship
		// equivalent and are skipped.
		if len(columns) != 1 || len(foreignColumns) != 1 {
			continue
		}

		foreignKeys = append(foreignKeys, ForeignKey{
			Name:             name,
			Column:           columns[0],
			ReferencedTable:  foreignTable,
			ReferencedColumn: foreignColumns[0],
		})
	}

	return foreignKeys, rows.Err()
}

// buildSQLType constructs the SQL type string from column metadata.
func buildSQLType(dataType, udtName string, maxLength, precision, scale *int) string {
	switch dataType {
	case "character varying":
		if maxLength != nil {
			return fmt.Sprintf("varchar(%d)", *maxLength)
		}
		return "varchar"
	case "character":
		if maxLength != nil {
			return fmt.Sprintf("char(%d)", *maxLength)
		}
		return "char"
	case "numeric", "decimal":
		if precision != nil && scale != nil {
			return fmt.Sprintf("numeric(%d,%d)", *precision, *scale)
		}
		return "numeric"
	case "ARRAY":
		// Array types use udt_name with a leading underscore.
		if strings.HasPrefix(udtName, "_") {
			return udtName[1:] + "[]"
		}
		return udtName
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}
