package schema

import (
	"context"
	"errors"
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Name:       "posts",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", SQLType: "bigserial", PrimaryKey: true},
			{Name: "user_id", SQLType: "bigint"},
			{Name: "title", SQLType: "varchar(255)"},
			{Name: "created_at", SQLType: "timestamp"},
			{Name: "updated_at", SQLType: "timestamp"},
			{Name: "deleted_at", SQLType: "timestamp", Nullable: true},
		},
		ForeignKeys: []ForeignKey{
			{Name: "posts_user_id_fkey", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"},
		},
	}
}

func TestTableColumn(t *testing.T) {
	table := sampleTable()

	if col := table.Column("title"); col == nil || col.SQLType != "varchar(255)" {
		t.Errorf("Column(title) = %+v, want varchar(255)", col)
	}
	if col := table.Column("missing"); col != nil {
		t.Errorf("Column(missing) = %+v, want nil", col)
	}
	if !table.HasColumn("user_id") {
		t.Error("HasColumn(user_id) = false, want true")
	}
}

func TestTableForeignKeyFor(t *testing.T) {
	table := sampleTable()

	fk := table.ForeignKeyFor("user_id")
	if fk == nil || fk.ReferencedTable != "users" {
		t.Errorf("ForeignKeyFor(user_id) = %+v, want users reference", fk)
	}
	if fk := table.ForeignKeyFor("title"); fk != nil {
		t.Errorf("ForeignKeyFor(title) = %+v, want nil", fk)
	}
}

func TestTableTimestampsAndSoftDeletes(t *testing.T) {
	table := sampleTable()
	if !table.HasTimestamps() {
		t.Error("HasTimestamps() = false, want true")
	}
	if !table.HasSoftDeletes() {
		t.Error("HasSoftDeletes() = false, want true")
	}

	bare := &Table{Name: "lookups", Columns: []Column{{Name: "code", SQLType: "varchar(10)"}}}
	if bare.HasTimestamps() {
		t.Error("HasTimestamps() = true for bare table, want false")
	}
	if bare.HasSoftDeletes() {
		t.Error("HasSoftDeletes() = true for bare table, want false")
	}
}

func TestFillableColumns(t *testing.T) {
	table := sampleTable()

	fillable := table.FillableColumns()
	if len(fillable) != 2 {
		t.Fatalf("FillableColumns() has %d columns, want 2: %+v", len(fillable), fillable)
	}
	if fillable[0].Name != "user_id" || fillable[1].Name != "title" {
		t.Errorf("FillableColumns() = %v, want [user_id title]", fillable)
	}
}

func TestFillableColumnsExcludesNonConventionalPrimaryKey(t *testing.T) {
	table := &Table{
		Name:       "sessions",
		PrimaryKey: "token",
		Columns: []Column{
			{Name: "token", SQLType: "varchar(64)", PrimaryKey: true},
			{Name: "payload", SQLType: "text"},
		},
	}

	fillable := table.FillableColumns()
	if len(fillable) != 1 || fillable[0].Name != "payload" {
		t.Errorf("FillableColumns() = %v, want [payload]", fillable)
	}
}

func TestIsSystemTable(t *testing.T) {
	for _, name := range []string{"schema_migrations", "migrations", "sqlite_sequence"} {
		if !IsSystemTable(name) {
			t.Errorf("IsSystemTable(%s) = false, want true", name)
		}
	}
	if IsSystemTable("users") {
		t.Error("IsSystemTable(users) = true, want false")
	}
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	src := NewMemory(sampleTable(), &Table{Name: "migrations"})

	names, err := src.TableNames(ctx)
	if err != nil {
		t.Fatalf("TableNames() error: %v", err)
	}
	if len(names) != 1 || names[0] != "posts" {
		t.Errorf("TableNames() = %v, want [posts] (system tables excluded)", names)
	}

	ok, err := src.HasTable(ctx, "posts")
	if err != nil || !ok {
		t.Errorf("HasTable(posts) = %v, %v, want true", ok, err)
	}

	_, err = src.Table(ctx, "missing")
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Table(missing) error = %v, want ErrTableNotFound", err)
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	src := NewMemory(sampleTable(), &Table{Name: "users", Columns: []Column{{Name: "id", PrimaryKey: true}}})

	tables, err := Snapshot(ctx, src)
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("Snapshot() has %d tables, want 2", len(tables))
	}

	names := SortedNames(tables)
	if names[0] != "posts" || names[1] != "users" {
		t.Errorf("SortedNames() = %v, want [posts users]", names)
	}
}
