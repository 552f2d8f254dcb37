package relation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/crudforge/crudforge/pkg/naming"
	"github.com/crudforge/crudforge/pkg/schema"
)

// Analyzer infers relationship graphs from a schema source. The whole schema
// is snapshotted on first use so reverse foreign keys resolve without
// per-table round trips.
type Analyzer struct {
	source schema.Source
	tables map[string]*schema.Table
	names  []string
}

// NewAnalyzer creates an Analyzer over the given source.
func NewAnalyzer(src schema.Source) *Analyzer {
	return &Analyzer{source: src}
}

func (a *Analyzer) load(ctx context.Context) error {
	if a.tables != nil {
		return nil
	}
	tables, err := schema.Snapshot(ctx, a.source)
	if err != nil {
		return err
	}
	a.tables = tables
	a.names = schema.SortedNames(tables)
	return nil
}

// Analyze builds the relationship graph for one table. The result is stable:
// the same schema always yields the same graph, and every foreign key or
// pivot relationship appears as exactly one descriptor.
func (a *Analyzer) Analyze(ctx context.Context, tableName string) (*Graph, error) {
	if err := a.load(ctx); err != nil {
		return nil, err
	}

	table, ok := a.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrTableNotFound, tableName)
	}

	c := newCollector(tableName)

	// Own foreign keys become belongsTo.
	for _, fk := range sortedForeignKeys(table) {
		c.add(Descriptor{
			Kind:         BelongsTo,
			RelatedTable: fk.ReferencedTable,
			ForeignKey:   fk.Column,
			LocalKey:     fk.ReferencedColumn,
			MethodName:   belongsToMethod(fk),
		})
	}

	// Own {name}_type/{name}_id pairs become morphTo.
	for _, stem := range morphStems(table) {
		c.add(Descriptor{
			Kind:       MorphTo,
			MorphName:  stem,
			ForeignKey: stem + "_id",
			MethodName: naming.Camel(stem),
			Confidence: morphConfidence(stem),
		})
	}

	for _, otherName := range a.names {
		if otherName == tableName {
			continue
		}
		other := a.tables[otherName]

		if isPivot(other) {
			a.collectPivot(c, table, other)
			continue
		}
		if stem, ok := morphPivotStem(other); ok {
			a.collectMorphPivot(c, table, other, stem)
			continue
		}

		// Reverse foreign keys become hasMany, downgraded to hasOne when
		// the referencing column is unique.
		for _, fk := range sortedForeignKeys(other) {
			if fk.ReferencedTable != tableName {
				continue
			}
			kind, method := HasMany, naming.Camel(naming.Plural(otherName))
			if col := other.Column(fk.Column); col != nil && col.Unique {
				kind, method = HasOne, naming.Camel(naming.Singular(otherName))
			}
			c.add(Descriptor{
				Kind:         kind,
				RelatedTable: otherName,
				ForeignKey:   fk.Column,
				LocalKey:     fk.ReferencedColumn,
				MethodName:   method,
			})
		}

		// Morph pairs on other tables become morphOne/morphMany. The parent
		// set is a name-convention guess, so these are low confidence and
		// surfaced for manual confirmation.
		for _, stem := range morphStems(other) {
			kind, method := MorphMany, naming.Camel(naming.Plural(otherName))
			if idCol := other.Column(stem + "_id"); idCol != nil && idCol.Unique {
				kind, method = MorphOne, naming.Camel(naming.Singular(otherName))
			}
			c.add(Descriptor{
				Kind:         kind,
				RelatedTable: otherName,
				MorphName:    stem,
				ForeignKey:   stem + "_id",
				MethodName:   method,
				Confidence:   Low,
			})
		}
	}

	return c.graph, nil
}

// collectPivot emits belongsToMany for each foreign key of a pivot-shaped
// table that references the analyzed table.
func (a *Analyzer) collectPivot(c *collector, table *schema.Table, pivot *schema.Table) {
	fks := sortedForeignKeys(pivot)
	for i, fk := range fks {
		if fk.ReferencedTable != table.Name {
			continue
		}
		related := fks[1-i]
		c.add(Descriptor{
			Kind:         BelongsToMany,
			RelatedTable: related.ReferencedTable,
			PivotTable:   pivot.Name,
			ForeignKey:   fk.Column,
			LocalKey:     related.Column,
			MethodName:   naming.Camel(naming.Plural(related.ReferencedTable)),
		})
	}
}

// collectMorphPivot handles pivot tables pairing one real foreign key with a
// morph column pair: morphToMany from candidate parents toward the foreign
// key side, morphedByMany from the foreign key side back toward candidate
// parents. Both directions guess the parent set, so both are low confidence.
func (a *Analyzer) collectMorphPivot(c *collector, table *schema.Table, pivot *schema.Table, stem string) {
	fk := pivot.ForeignKeys[0]

	if fk.ReferencedTable == table.Name {
		for _, candidate := range a.names {
			if candidate == table.Name || candidate == pivot.Name {
				continue
			}
			if isPivot(a.tables[candidate]) {
				continue
			}
			if _, ok := morphPivotStem(a.tables[candidate]); ok {
				continue
			}
			c.add(Descriptor{
				Kind:         MorphedByMany,
				RelatedTable: candidate,
				PivotTable:   pivot.Name,
				MorphName:    stem,
				ForeignKey:   fk.Column,
				MethodName:   naming.Camel(naming.Plural(candidate)),
				Confidence:   Low,
			})
		}
		return
	}

	c.add(Descriptor{
		Kind:         MorphToMany,
		RelatedTable: fk.ReferencedTable,
		PivotTable:   pivot.Name,
		MorphName:    stem,
		ForeignKey:   stem + "_id",
		MethodName:   naming.Camel(naming.Plural(fk.ReferencedTable)),
		Confidence:   Low,
	})
}

// belongsToMethod derives the accessor name from the foreign key column stem
// (author_id → author), falling back to the referenced table when the column
// carries no _id suffix.
func belongsToMethod(fk schema.ForeignKey) string {
	if stem, ok := strings.CutSuffix(fk.Column, "_id"); ok && stem != "" {
		return naming.Camel(stem)
	}
	return naming.Camel(naming.Singular(fk.ReferencedTable))
}

// morphConfidence: pairs following the conventional -able stem are trusted;
// arbitrary _type/_id pairs may be unrelated to polymorphism.
func morphConfidence(stem string) Confidence {
	if strings.HasSuffix(stem, "able") {
		return High
	}
	return Low
}

// morphStems returns the sorted stems of {stem}_type/{stem}_id column pairs
// whose _id column is not covered by a real foreign key.
func morphStems(t *schema.Table) []string {
	var stems []string
	for _, col := range t.Columns {
		stem, ok := strings.CutSuffix(col.Name, "_type")
		if !ok || stem == "" {
			continue
		}
		idColumn := stem + "_id"
		if !t.HasColumn(idColumn) {
			continue
		}
		if t.ForeignKeyFor(idColumn) != nil {
			continue
		}
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	return stems
}

// isPivot reports the many-to-many join shape: exactly two foreign keys and
// no columns besides the key pair, a surrogate id, and timestamps.
func isPivot(t *schema.Table) bool {
	if len(t.ForeignKeys) != 2 {
		return false
	}
	fkColumns := map[string]bool{
		t.ForeignKeys[0].Column: true,
		t.ForeignKeys[1].Column: true,
	}
	for _, col := range t.Columns {
		if fkColumns[col.Name] || schema.IsBookkeeping(col.Name) {
			continue
		}
		return false
	}
	return true
}

// morphPivotStem reports the polymorphic join shape: exactly one foreign key
// plus one morph pair and nothing else besides bookkeeping columns.
func morphPivotStem(t *schema.Table) (string, bool) {
	if len(t.ForeignKeys) != 1 {
		return "", false
	}
	stems := morphStems(t)
	if len(stems) != 1 {
		return "", false
	}
	stem := stems[0]
	allowed := map[string]bool{
		t.ForeignKeys[0].Column: true,
		stem + "_type":          true,
		stem + "_id":            true,
	}
	for _, col := range t.Columns {
		if allowed[col.Name] || schema.IsBookkeeping(col.Name) {
			continue
		}
		return "", false
	}
	return stem, true
}

func sortedForeignKeys(t *schema.Table) []schema.ForeignKey {
	fks := make([]schema.ForeignKey, len(t.ForeignKeys))
	copy(fks, t.ForeignKeys)
	sort.Slice(fks, func(i, j int) bool { return fks[i].Column < fks[j].Column })
	return fks
}

// collector accumulates descriptors, deduplicating by (kind, related table,
// foreign key) and keeping method names unique per table.
type collector struct {
	graph *Graph
	seen  map[string]bool
	used  map[string]bool
}

func newCollector(table string) *collector {
	return &collector{
		graph: &Graph{Table: table},
		seen:  make(map[string]bool),
		used:  make(map[string]bool),
	}
}

func (c *collector) add(d Descriptor) {
	key := string(d.Kind) + "|" + d.RelatedTable + "|" + d.ForeignKey
	if c.seen[key] {
		return
	}
	c.seen[key] = true

	// On a method name collision, re-derive from the foreign key (or pivot)
	// rather than failing.
	if c.used[d.MethodName] {
		suffix := d.ForeignKey
		if suffix == "" {
			suffix = d.PivotTable
		}
		d.MethodName = naming.Camel(naming.Snake(d.MethodName) + "_" + suffix)
	}
	for i := 2; c.used[d.MethodName]; i++ {
		d.MethodName = fmt.Sprintf("%s%d", d.MethodName, i)
	}
	c.used[d.MethodName] = true

	c.graph.Relations = append(c.graph.Relations, d)
}
