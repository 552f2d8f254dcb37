package schema

// Column describes a single table column as reported by the database.
type Column struct {
	Name       string  `json:"name"`
	SQLType    string  `json:"sql_type"`
	Nullable   bool    `json:"nullable"`
	Default    *string `json:"default,omitempty"`
	Length     *int    `json:"length,omitempty"`
	Unique     bool    `json:"unique"`
	PrimaryKey bool    `json:"primary_key"`
	Position   int     `json:"position"`
}

// ForeignKey describes a single-column foreign key constraint.
type ForeignKey struct {
	Name             string `json:"name"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// Table holds the introspected shape of one table. Columns keep their
// ordinal order; descriptors are immutable within a run.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKey  string       `json:"primary_key,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// ForeignKeyFor returns the foreign key constraining the given column, or nil.
func (t *Table) ForeignKeyFor(column string) *ForeignKey {
	for i := range t.ForeignKeys {
		if t.ForeignKeys[i].Column == column {
			return &t.ForeignKeys[i]
		}
	}
	return nil
}

// HasTimestamps reports whether the table carries created_at/updated_at columns.
func (t *Table) HasTimestamps() bool {
	return t.HasColumn("created_at") && t.HasColumn("updated_at")
}

// HasSoftDeletes reports whether the table carries a deleted_at column.
func (t *Table) HasSoftDeletes() bool {
	return t.HasColumn("deleted_at")
}

// bookkeepingColumns are excluded from fillable/validation/form enumerations
// but still appear in full schema documentation.
var bookkeepingColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

// IsBookkeeping reports whether a column name is one of the conventional
// id/timestamp/soft-delete columns.
func IsBookkeeping(name string) bool {
	return bookkeepingColumns[name]
}

// FillableColumns returns the columns that participate in create/update
// payloads, excluding the primary key and timestamp bookkeeping columns.
func (t *Table) FillableColumns() []Column {
	var out []Column
	for _, col := range t.Columns {
		if IsBookkeeping(col.Name) || col.PrimaryKey {
			continue
		}
		out = append(out, col)
	}
	return out
}

// systemTables are never offered for generation or batch runs.
var systemTables = map[string]bool{
	"schema_migrations": true,
	"migrations":        true,
	"sqlite_sequence":   true,
}

// IsSystemTable reports whether a table is infrastructure owned by a
// migration tool or the database engine itself.
func IsSystemTable(name string) bool {
	return systemTables[name]
}
