package schema

import (
	"context"
	"fmt"
	"sort"
)

// Memory is a map-backed Source for callers that already hold a schema
// snapshot instead of a live connection.
type Memory struct {
	tables map[string]*Table
	conn   string
}

// NewMemory creates a Memory source holding the given tables.
func NewMemory(tables ...*Table) *Memory {
	m := &Memory{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		m.tables[t.Name] = t
	}
	return m
}

// WithConnection labels the source with a connection name, making it
// ConnectionScoped.
func (m *Memory) WithConnection(name string) *Memory {
	m.conn = name
	return m
}

// Add registers one more table.
func (m *Memory) Add(t *Table) {
	m.tables[t.Name] = t
}

// Connection implements ConnectionScoped.
func (m *Memory) Connection() string {
	return m.conn
}

// HasTable implements Source.
func (m *Memory) HasTable(_ context.Context, name string) (bool, error) {
	_, ok := m.tables[name]
	return ok, nil
}

// TableNames implements Source.
func (m *Memory) TableNames(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		if IsSystemTable(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Table implements Source.
func (m *Memory) Table(_ context.Context, name string) (*Table, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}
