package chi

import (
	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/document"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
	exploreuc "github.com/kailas-cloud/facetdex/internal/usecase/explore"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnknownFacet      ErrorCode = "unknown_facet"
	ErrorCodeInvalidOperator   ErrorCode = "invalid_operator"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeInvalidQuery      ErrorCode = "invalid_query"
	ErrorCodeIndexNotFound     ErrorCode = "index_not_found"
	ErrorCodeBadEngineResponse ErrorCode = "bad_engine_response"
	ErrorCodeEngineError       ErrorCode = "engine_error"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type hitResponse struct {
	Hit *result.Hit `json:"hit"`
}

type documentResponse struct {
	Document *document.Value `json:"document"`
}

type aggregationsResponse struct {
	Aggregations map[string]result.Aggregation `json:"aggregations"`
}

type cardinalityResponse struct {
	Cardinality map[string]int64 `json:"cardinality"`
}

type entitiesResponse struct {
	Entities []document.Entity `json:"entities"`
}

type facetItem struct {
	Name           string `json:"name"`
	Field          string `json:"field"`
	AggregateField string `json:"aggregate_field"`
	Aggregated     bool   `json:"aggregated"`
}

type facetsResponse struct {
	Index  string      `json:"index"`
	Facets []facetItem `json:"facets"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

// summaryRequest is the POST /summary body.
type summaryRequest struct {
	Pairs    []exploreuc.Pair `json:"pairs"`
	Keywords string           `json:"keywords"`
	Limit    int              `json:"limit"`
	Operator string           `json:"operator"`
	// Aggregations are raw engine aggregation specs keyed by result name.
	Aggregations map[string]map[string]any `json:"aggregations"`
}

func (r summaryRequest) toDomain() exploreuc.SummaryRequest {
	var aggs db.Aggregations
	if r.Aggregations != nil {
		aggs = make(db.Aggregations, len(r.Aggregations))
		for name, spec := range r.Aggregations {
			aggs[name] = db.Aggregation(spec)
		}
	}
	return exploreuc.SummaryRequest{
		Pairs:        r.Pairs,
		Keywords:     r.Keywords,
		Limit:        r.Limit,
		Operator:     r.Operator,
		Aggregations: aggs,
	}
}
