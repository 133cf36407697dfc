package facet

import (
	"fmt"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

// KeywordSuffix is appended to a field path to address its keyword sub-field.
const KeywordSuffix = ".keyword"

// Facet is an immutable value object mapping a logical name to a document field path.
type Facet struct {
	name           string
	path           string
	aggregateField string
	aggregate      bool
}

// New validates and creates a Facet.
// aggregateField defaults to path + ".keyword".
func New(name, path, aggregateField string, aggregate bool) (Facet, error) {
	if name == "" {
		return Facet{}, fmt.Errorf("facet name is required")
	}
	if path == "" {
		return Facet{}, fmt.Errorf("field path is required for facet %q", name)
	}
	if aggregateField == "" {
		aggregateField = path + KeywordSuffix
	}
	return Facet{name: name, path: path, aggregateField: aggregateField, aggregate: aggregate}, nil
}

// Name returns the logical facet name.
func (f Facet) Name() string { return f.name }

// Path returns the dotted field path in the document schema.
func (f Facet) Path() string { return f.path }

// AggregateField returns the field used for terms/cardinality aggregations.
func (f Facet) AggregateField() string { return f.aggregateField }

// Aggregated reports whether the facet is part of the default aggregation set.
func (f Facet) Aggregated() bool { return f.aggregate }

// UnknownError wraps domain.ErrUnknownFacet with the offending name.
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("%s: %q", domain.ErrUnknownFacet.Error(), e.Name)
}

func (e *UnknownError) Unwrap() error { return domain.ErrUnknownFacet }
