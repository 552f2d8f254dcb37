// Package relation infers a convention-based relationship graph for a table
// from foreign key constraints, pivot-table shapes, and polymorphic column
// naming conventions.
package relation

// Kind is the relationship flavor carried by a Descriptor.
type Kind string

const (
	BelongsTo     Kind = "belongsTo"
	HasOne        Kind = "hasOne"
	HasMany       Kind = "hasMany"
	BelongsToMany Kind = "belongsToMany"
	MorphTo       Kind = "morphTo"
	MorphOne      Kind = "morphOne"
	MorphMany     Kind = "morphMany"
	MorphToMany   Kind = "morphToMany"
	MorphedByMany Kind = "morphedByMany"
)

// Confidence qualifies heuristic inferences. Foreign-key and pivot matches
// are exact; polymorphic matches are name-pattern guesses and may be wrong.
type Confidence int

const (
	High Confidence = iota
	Low
)

func (c Confidence) String() string {
	if c == Low {
		return "low"
	}
	return "high"
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// Descriptor is one inferred relationship owned by the analyzed table.
type Descriptor struct {
	Kind         Kind       `json:"kind"`
	RelatedTable string     `json:"related_table"`
	LocalKey     string     `json:"local_key,omitempty"`
	ForeignKey   string     `json:"foreign_key,omitempty"`
	PivotTable   string     `json:"pivot_table,omitempty"`
	MorphName    string     `json:"morph_name,omitempty"`
	MethodName   string     `json:"method_name"`
	Confidence   Confidence `json:"confidence"`
}

// MorphNameOrKey returns the morph stem when present, else the foreign key.
// Used when reporting heuristic matches.
func (d Descriptor) MorphNameOrKey() string {
	if d.MorphName != "" {
		return d.MorphName
	}
	return d.ForeignKey
}

// IsMorph reports whether the descriptor is one of the polymorphic kinds.
func (d Descriptor) IsMorph() bool {
	switch d.Kind {
	case MorphTo, MorphOne, MorphMany, MorphToMany, MorphedByMany:
		return true
	}
	return false
}

// Graph is the full set of relationships inferred for one table.
type Graph struct {
	Table     string       `json:"table"`
	Relations []Descriptor `json:"relations"`
}

// ByKind returns the descriptors of the given kind, in graph order.
func (g *Graph) ByKind(kind Kind) []Descriptor {
	var out []Descriptor
	for _, d := range g.Relations {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// LowConfidence returns the descriptors that need manual confirmation.
func (g *Graph) LowConfidence() []Descriptor {
	var out []Descriptor
	for _, d := range g.Relations {
		if d.Confidence == Low {
			out = append(out, d)
		}
	}
	return out
}
