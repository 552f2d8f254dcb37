package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLTableNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT table_name").
		WithArgs("app").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("migrations").
			AddRow("posts").
			AddRow("users"))

	src := NewMySQL(db, "app")
	names, err := src.TableNames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"posts", "users"}, names, "system tables are filtered out")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("app", "posts").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery("SELECT(.|\n)+FROM information_schema.columns").
		WithArgs("app", "posts").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "column_type", "is_nullable", "column_default",
			"character_maximum_length", "column_key", "ordinal_position",
		}).
			AddRow("id", "bigint unsigned", "NO", nil, nil, "PRI", 1).
			AddRow("user_id", "bigint unsigned", "NO", nil, nil, "MUL", 2).
			AddRow("slug", "varchar(255)", "NO", nil, 255, "UNI", 3).
			AddRow("title", "varchar(255)", "NO", nil, 255, "", 4).
			AddRow("published_at", "datetime", "YES", nil, nil, "", 5))

	mock.ExpectQuery("SELECT(.|\n)+FROM information_schema.key_column_usage").
		WithArgs("app", "posts").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "column_name", "referenced_table_name", "referenced_column_name",
		}).
			AddRow("posts_user_id_foreign", "user_id", "users", "id"))

	src := NewMySQL(db, "app")
	table, err := src.Table(context.Background(), "posts")
	require.NoError(t, err)

	assert.Equal(t, "posts", table.Name)
	assert.Equal(t, "id", table.PrimaryKey)
	require.Len(t, table.Columns, 5)

	id := table.Column("id")
	require.NotNil(t, id)
	assert.True(t, id.PrimaryKey)

	slug := table.Column("slug")
	require.NotNil(t, slug)
	assert.True(t, slug.Unique)
	require.NotNil(t, slug.Length)
	assert.Equal(t, 255, *slug.Length)

	published := table.Column("published_at")
	require.NotNil(t, published)
	assert.True(t, published.Nullable)

	require.Len(t, table.ForeignKeys, 1)
	assert.Equal(t, "user_id", table.ForeignKeys[0].Column)
	assert.Equal(t, "users", table.ForeignKeys[0].ReferencedTable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTableNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("app", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	src := NewMySQL(db, "app")
	_, err = src.Table(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestMySQLCompositeForeignKeySkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("app", "order_items").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery("SELECT(.|\n)+FROM information_schema.columns").
		WithArgs("app", "order_items").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "column_type", "is_nullable", "column_default",
			"character_maximum_length", "column_key", "ordinal_position",
		}).
			AddRow("order_id", "bigint", "NO", nil, nil, "PRI", 1).
			AddRow("line_no", "int", "NO", nil, nil, "PRI", 2).
			AddRow("product_id", "bigint", "NO", nil, nil, "MUL", 3))

	mock.ExpectQuery("SELECT(.|\n)+FROM information_schema.key_column_usage").
		WithArgs("app", "order_items").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "column_name", "referenced_table_name", "referenced_column_name",
		}).
			AddRow("order_items_order_fk", "order_id", "orders", "id").
			AddRow("order_items_order_fk", "line_no", "orders", "line_no").
			AddRow("order_items_product_fk", "product_id", "products", "id"))

	src := NewMySQL(db, "app")
	table, err := src.Table(context.Background(), "order_items")
	require.NoError(t, err)

	require.Len(t, table.ForeignKeys, 1, "composite constraint must be dropped")
	assert.Equal(t, "product_id", table.ForeignKeys[0].Column)
}
