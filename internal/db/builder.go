package db

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultSize matches the engine's default page size.
const DefaultSize = 10

// SearchBuilder is a fluent builder for search requests.
type SearchBuilder struct {
	req SearchRequest
}

// NewSearch starts building a search request against index.
func NewSearch(index string) *SearchBuilder {
	return &SearchBuilder{
		req: SearchRequest{
			Index: index,
			Size:  DefaultSize,
		},
	}
}

// Query sets the body query.
func (b *SearchBuilder) Query(q Query) *SearchBuilder {
	b.req.Query = q
	return b
}

// QueryString sets the URI "q" parameter.
func (b *SearchBuilder) QueryString(q string) *SearchBuilder {
	b.req.QueryString = q
	return b
}

// Size sets the maximum number of hits returned.
func (b *SearchBuilder) Size(n int) *SearchBuilder {
	b.req.Size = n
	return b
}

// From sets the hit offset.
func (b *SearchBuilder) From(n int) *SearchBuilder {
	b.req.From = n
	return b
}

// Agg adds one named aggregation.
func (b *SearchBuilder) Agg(name string, a Aggregation) *SearchBuilder {
	if b.req.Aggregations == nil {
		b.req.Aggregations = make(Aggregations)
	}
	b.req.Aggregations[name] = a
	return b
}

// Aggs adds every aggregation in aggs.
func (b *SearchBuilder) Aggs(aggs Aggregations) *SearchBuilder {
	for name, a := range aggs {
		b.Agg(name, a)
	}
	return b
}

// Explain asks the engine to explain hit scores.
func (b *SearchBuilder) Explain() *SearchBuilder {
	b.req.Explain = true
	return b
}

// TrackTotalHits requests an exact total instead of a lower bound.
func (b *SearchBuilder) TrackTotalHits() *SearchBuilder {
	b.req.TrackTotalHits = true
	return b
}

// Build validates and returns the search request.
func (b *SearchBuilder) Build() (*SearchRequest, error) {
	if err := b.req.Validate(); err != nil {
		return nil, err
	}
	req := b.req
	return &req, nil
}

// MustBuild calls Build and panics on error.
func (b *SearchBuilder) MustBuild() *SearchRequest {
	req, err := b.Build()
	if err != nil {
		panic(err)
	}
	return req
}

// Validate checks the request for structural errors.
func (r *SearchRequest) Validate() error {
	if r.Index == "" {
		return errors.New("index name is required")
	}
	if r.Size < 0 {
		return fmt.Errorf("size must be non-negative, got %d", r.Size)
	}
	if r.From < 0 {
		return fmt.Errorf("from must be non-negative, got %d", r.From)
	}
	if r.Query != nil && r.QueryString != "" {
		return errors.New("query and query string are mutually exclusive")
	}
	for name, a := range r.Aggregations {
		if name == "" {
			return errors.New("aggregation name is required")
		}
		if len(a) == 0 {
			return fmt.Errorf("aggregation %q is empty", name)
		}
	}
	return nil
}

// String returns a debug representation resembling the REST call.
func (r *SearchRequest) String() string {
	parts := []string{"GET", "/" + r.Index + "/_search"}
	params := []string{"size=" + strconv.Itoa(r.Size)}
	if r.From > 0 {
		params = append(params, "from="+strconv.Itoa(r.From))
	}
	if r.QueryString != "" {
		params = append(params, "q="+r.QueryString)
	}
	parts = append(parts, "?"+strings.Join(params, "&"))
	if r.Query != nil {
		kinds := make([]string, 0, len(r.Query))
		for k := range r.Query {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts = append(parts, "query="+strings.Join(kinds, ","))
	}
	if len(r.Aggregations) > 0 {
		names := make([]string, 0, len(r.Aggregations))
		for k := range r.Aggregations {
			names = append(names, k)
		}
		sort.Strings(names)
		parts = append(parts, "aggs="+strings.Join(names, ","))
	}
	return strings.Join(parts, " ")
}
