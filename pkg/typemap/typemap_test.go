package typemap

import (
	"testing"

	"github.com/crudforge/crudforge/pkg/schema"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		sqlType  string
		expected string
		length   int // 0 means nil
	}{
		{"integer", "integer", 0},
		{"bigint", "integer", 0},
		{"serial", "integer", 0},
		{"int8", "integer", 0},
		{"tinyint(1)", "boolean", 0},
		{"tinyint(4)", "integer", 0},
		{"numeric(10,2)", "decimal", 0},
		{"double precision", "decimal", 0},
		{"boolean", "boolean", 0},
		{"date", "date", 0},
		{"datetime", "datetime", 0},
		{"timestamp", "datetime", 0},
		{"timestamptz", "datetime", 0},
		{"timestamp with time zone", "datetime", 0},
		{"time", "time", 0},
		{"uuid", "uuid", 0},
		{"json", "json", 0},
		{"jsonb", "json", 0},
		{"bytea", "binary", 0},
		{"longblob", "binary", 0},
		{"text", "text", 0},
		{"longtext", "text", 0},
		{"varchar(255)", "string", 255},
		{"character varying(100)", "string", 100},
		{"char(2)", "string", 2},
		{"VARCHAR(50)", "string", 50},
		{"some_custom_type", "string", 0},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			canon, length := Canonical(tt.sqlType)
			if canon != tt.expected {
				t.Errorf("Canonical(%s) = %s, want %s", tt.sqlType, canon, tt.expected)
			}
			if tt.length == 0 && length != nil {
				t.Errorf("Canonical(%s) length = %d, want nil", tt.sqlType, *length)
			}
			if tt.length != 0 && (length == nil || *length != tt.length) {
				t.Errorf("Canonical(%s) length = %v, want %d", tt.sqlType, length, tt.length)
			}
		})
	}
}

func TestGoType(t *testing.T) {
	tests := []struct {
		sqlType  string
		nullable bool
		expected string
	}{
		{"bigint", false, "int64"},
		{"bigint", true, "*int64"},
		{"varchar(255)", false, "string"},
		{"varchar(255)", true, "*string"},
		{"boolean", true, "*bool"},
		{"timestamp", false, "time.Time"},
		{"timestamp", true, "*time.Time"},
		{"numeric(8,2)", false, "float64"},
		{"jsonb", false, "json.RawMessage"},
		{"bytea", false, "[]byte"},
		{"bytea", true, "[]byte"},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			if got := GoType(tt.sqlType, tt.nullable); got != tt.expected {
				t.Errorf("GoType(%s, %v) = %s, want %s", tt.sqlType, tt.nullable, got, tt.expected)
			}
		})
	}
}

func TestRules(t *testing.T) {
	tests := []struct {
		name     string
		col      schema.Column
		update   bool
		expected string
	}{
		{
			"required varchar with length",
			schema.Column{Name: "title", SQLType: "varchar(255)"},
			false,
			"required|string|max:255",
		},
		{
			"required text",
			schema.Column{Name: "body", SQLType: "text"},
			false,
			"required|string",
		},
		{
			"nullable integer",
			schema.Column{Name: "view_count", SQLType: "bigint", Nullable: true},
			false,
			"nullable|integer",
		},
		{
			"email by name",
			schema.Column{Name: "email", SQLType: "varchar(191)", Unique: true},
			false,
			"required|email|max:191|unique:users,email",
		},
		{
			"email unique update variant",
			schema.Column{Name: "email", SQLType: "varchar(191)", Unique: true},
			true,
			"required|email|max:191|unique:users,email,{id}",
		},
		{
			"datetime format rule",
			schema.Column{Name: "published_at", SQLType: "timestamp", Nullable: true},
			false,
			"nullable|date_format:Y-m-d H:i:s",
		},
		{
			"boolean",
			schema.Column{Name: "active", SQLType: "tinyint(1)"},
			false,
			"required|boolean",
		},
		{
			"bookkeeping column skipped",
			schema.Column{Name: "created_at", SQLType: "timestamp"},
			false,
			"",
		},
		{
			"primary key skipped",
			schema.Column{Name: "id", SQLType: "bigserial", PrimaryKey: true},
			false,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rules("users", tt.col, tt.update); got != tt.expected {
				t.Errorf("Rules() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRuleMap(t *testing.T) {
	table := &schema.Table{
		Name:       "posts",
		PrimaryKey: "id",
		Columns: []schema.Column{
			{Name: "id", SQLType: "bigserial", PrimaryKey: true},
			{Name: "title", SQLType: "varchar(255)"},
			{Name: "created_at", SQLType: "timestamp"},
		},
	}

	rules := RuleMap(table, false)
	if len(rules) != 1 {
		t.Fatalf("RuleMap() has %d entries, want 1", len(rules))
	}
	if rules["title"] != "required|string|max:255" {
		t.Errorf("RuleMap()[title] = %q, want required|string|max:255", rules["title"])
	}
}

func TestBindingTag(t *testing.T) {
	tests := []struct {
		rule     string
		expected string
	}{
		{"required|string|max:255", "required,max=255"},
		{"required|string", "required"},
		{"nullable|string", "omitempty"},
		{"required|integer", "required,numeric"},
		{"required|email|max:191|unique:users,email", "required,email,max=191"},
		{"nullable|date_format:Y-m-d H:i:s", "omitempty"},
		{"required|boolean", "required,boolean"},
		{"required|uuid", "required,uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			if got := BindingTag(tt.rule); got != tt.expected {
				t.Errorf("BindingTag(%s) = %s, want %s", tt.rule, got, tt.expected)
			}
		})
	}
}
