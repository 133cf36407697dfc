package facetdex

import (
	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/document"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
	exploreuc "github.com/kailas-cloud/facetdex/internal/usecase/explore"
)

// Result types.
type (
	// Envelope is a reshaped search response: total, hits and aggregations.
	Envelope = result.Envelope
	// Hit is a single scored document.
	Hit = result.Hit
	// Aggregation is a terms (buckets) or metric (value) aggregation result.
	Aggregation = result.Aggregation
	// Bucket is one terms aggregation value with its document count.
	Bucket = result.Bucket
	// Document is a decoded source document.
	Document = document.Value
	// Entity is a (facet, value) pair extracted from a document.
	Entity = document.Entity
)

// Request types.
type (
	// Pair restricts a summary to documents whose facet equals a value.
	Pair = exploreuc.Pair
	// SummaryRequest describes a SummarizeSubset call.
	SummaryRequest = exploreuc.SummaryRequest
	// Aggregations maps result names to aggregation specs.
	Aggregations = db.Aggregations
	// AggregationSpec is one engine aggregation spec.
	AggregationSpec = db.Aggregation
)

// Terms builds a terms aggregation over field keeping the size most frequent values.
func Terms(field string, size int) AggregationSpec { return db.Terms(field, size) }

// Cardinality builds a distinct-count aggregation over field.
func Cardinality(field string) AggregationSpec { return db.Cardinality(field) }

// FacetInfo describes one entry of the facet table.
type FacetInfo struct {
	Name           string
	Field          string
	AggregateField string
	Aggregated     bool
}
