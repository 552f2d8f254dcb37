package schema

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLiteFixture(t *testing.T) *SQLite {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ddl := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE posts (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			title VARCHAR(255) NOT NULL,
			body TEXT,
			published BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE migrations (id INTEGER PRIMARY KEY, name TEXT)`,
	}
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	return NewSQLite(db)
}

func TestSQLiteTableNames(t *testing.T) {
	src := openSQLiteFixture(t)

	names, err := src.TableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "users"}, names, "migrations and sqlite_% tables are excluded")
}

func TestSQLiteHasTable(t *testing.T) {
	src := openSQLiteFixture(t)
	ctx := context.Background()

	ok, err := src.HasTable(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.HasTable(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteTable(t *testing.T) {
	src := openSQLiteFixture(t)

	table, err := src.Table(context.Background(), "posts")
	require.NoError(t, err)

	assert.Equal(t, "posts", table.Name)
	assert.Equal(t, "id", table.PrimaryKey)

	id := table.Column("id")
	require.NotNil(t, id)
	assert.True(t, id.PrimaryKey)
	assert.False(t, id.Nullable)

	title := table.Column("title")
	require.NotNil(t, title)
	assert.Equal(t, "varchar(255)", title.SQLType)
	assert.False(t, title.Nullable)

	body := table.Column("body")
	require.NotNil(t, body)
	assert.True(t, body.Nullable)

	published := table.Column("published")
	require.NotNil(t, published)
	require.NotNil(t, published.Default)

	require.Len(t, table.ForeignKeys, 1)
	fk := table.ForeignKeys[0]
	assert.Equal(t, "user_id", fk.Column)
	assert.Equal(t, "users", fk.ReferencedTable)
	assert.Equal(t, "id", fk.ReferencedColumn)
}

func TestSQLiteUniqueColumn(t *testing.T) {
	src := openSQLiteFixture(t)

	table, err := src.Table(context.Background(), "users")
	require.NoError(t, err)

	email := table.Column("email")
	require.NotNil(t, email)
	assert.True(t, email.Unique)

	name := table.Column("name")
	require.NotNil(t, name)
	assert.False(t, name.Unique)
}

func TestSQLiteCompositeForeignKeySkipped(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE orders (id INTEGER, region TEXT, PRIMARY KEY (id, region))`,
		`CREATE TABLE products (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE order_items (
			order_id INTEGER,
			order_region TEXT,
			product_id INTEGER REFERENCES products(id),
			FOREIGN KEY (order_id, order_region) REFERENCES orders(id, region)
		)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	src := NewSQLite(db)
	table, err := src.Table(context.Background(), "order_items")
	require.NoError(t, err)

	require.Len(t, table.ForeignKeys, 1, "composite foreign key must be dropped")
	assert.Equal(t, "product_id", table.ForeignKeys[0].Column)
}

func TestSQLiteTableNotFound(t *testing.T) {
	src := openSQLiteFixture(t)

	_, err := src.Table(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}
