package facet

import "fmt"

// Table is the ordered facet lookup table for one index deployment.
// It is read-only after construction.
type Table struct {
	facets []Facet
	byName map[string]int
}

// NewTable validates and creates a Table. Names must be unique.
func NewTable(facets ...Facet) (Table, error) {
	if len(facets) == 0 {
		return Table{}, fmt.Errorf("at least one facet is required")
	}
	byName := make(map[string]int, len(facets))
	for i, f := range facets {
		if f.name == "" {
			return Table{}, fmt.Errorf("facet %d has no name", i)
		}
		if _, dup := byName[f.name]; dup {
			return Table{}, fmt.Errorf("duplicate facet %q", f.name)
		}
		byName[f.name] = i
	}
	return Table{facets: append([]Facet(nil), facets...), byName: byName}, nil
}

// FromPaths builds a Table from a name -> path mapping. Every facet is aggregated.
// Facets are ordered by the names slice.
func FromPaths(names []string, paths map[string]string) (Table, error) {
	facets := make([]Facet, 0, len(names))
	for _, name := range names {
		f, err := New(name, paths[name], "", true)
		if err != nil {
			return Table{}, err
		}
		facets = append(facets, f)
	}
	return NewTable(facets...)
}

// Get returns the facet by name or an *UnknownError.
func (t Table) Get(name string) (Facet, error) {
	i, ok := t.byName[name]
	if !ok {
		return Facet{}, &UnknownError{Name: name}
	}
	return t.facets[i], nil
}

// Path returns the field path of the named facet.
func (t Table) Path(name string) (string, error) {
	f, err := t.Get(name)
	if err != nil {
		return "", err
	}
	return f.path, nil
}

// All returns the facets in table order.
func (t Table) All() []Facet {
	return append([]Facet(nil), t.facets...)
}

// Aggregated returns the facets of the default aggregation set in table order.
func (t Table) Aggregated() []Facet {
	out := make([]Facet, 0, len(t.facets))
	for _, f := range t.facets {
		if f.aggregate {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of facets.
func (t Table) Len() int { return len(t.facets) }
