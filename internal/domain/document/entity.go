package document

import "github.com/kailas-cloud/facetdex/internal/domain/facet"

// Entity pairs a facet name with one value extracted from a document.
type Entity struct {
	Facet string `json:"facet"`
	Value Value  `json:"value"`
}

// CompileEntities extracts (facet, value) pairs from doc, one pass per facet.
// Paths fanning out over a list, or ending on one, yield one entity per element.
// A path that does not resolve pairs the facet with the whole document.
func CompileEntities(doc Value, facets []facet.Facet) []Entity {
	entities := make([]Entity, 0, len(facets))
	for _, f := range facets {
		values, ok := doc.Resolve(f.Path())
		if !ok {
			entities = append(entities, Entity{Facet: f.Name(), Value: doc})
			continue
		}
		for _, v := range values {
			entities = append(entities, Entity{Facet: f.Name(), Value: v})
		}
	}
	return entities
}
