package explore

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/document"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/querystring"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
)

const (
	// DefaultLimit is used when Config.DefaultLimit is not set.
	DefaultLimit = db.DefaultSize
	// DefaultTopN is used when Config.DefaultTopN is not set.
	DefaultTopN = 10
	// DefaultSampleLimit is the SampleSubset page size when limit <= 0.
	DefaultSampleLimit = 2
)

// Config holds per-deployment query settings.
type Config struct {
	Index        string
	Facets       facet.Table
	DefaultLimit int
	DefaultTopN  int
	// TextFields are searched by free-text queries. Empty means every field.
	TextFields []string
	// Cardinality maps result labels to facet names.
	Cardinality map[string]string
}

// Pair is a (facet, value) restriction in a summary request.
type Pair struct {
	Facet string `json:"facet"`
	Value string `json:"value"`
}

// SummaryRequest describes a SummarizeSubset call.
type SummaryRequest struct {
	Pairs    []Pair
	Keywords string
	Limit    int
	// Operator joins the pair clauses: AND (default) or OR.
	Operator string
	// Aggregations attached to the query. Nil means DefaultAggregations.
	Aggregations db.Aggregations
}

// Service runs exploration queries against one index.
type Service struct {
	repo         Repository
	index        string
	facets       facet.Table
	defaultLimit int
	defaultTopN  int
	textFields   []string
	cardinality  map[string]facet.Facet
}

// New creates an exploration service. Cardinality labels must reference known facets.
func New(repo Repository, cfg Config) (*Service, error) {
	if cfg.Index == "" {
		return nil, fmt.Errorf("%w: index is required", domain.ErrInvalidRequest)
	}
	if cfg.Facets.Len() == 0 {
		return nil, fmt.Errorf("%w: facet table is empty", domain.ErrInvalidRequest)
	}

	card := make(map[string]facet.Facet, len(cfg.Cardinality))
	for label, name := range cfg.Cardinality {
		f, err := cfg.Facets.Get(name)
		if err != nil {
			return nil, fmt.Errorf("cardinality %q: %w", label, err)
		}
		card[label] = f
	}

	s := &Service{
		repo:         repo,
		index:        cfg.Index,
		facets:       cfg.Facets,
		defaultLimit: cfg.DefaultLimit,
		defaultTopN:  cfg.DefaultTopN,
		textFields:   cfg.TextFields,
		cardinality:  card,
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = DefaultLimit
	}
	if s.defaultTopN <= 0 {
		s.defaultTopN = DefaultTopN
	}
	return s, nil
}

// Index returns the queried index name.
func (s *Service) Index() string { return s.index }

// Facets returns the facet table.
func (s *Service) Facets() facet.Table { return s.facets }

// CountAll returns the number of documents in the index.
func (s *Service) CountAll(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(withOperation(ctx, OpCountAll), s.index, db.MatchAll())
	if err != nil {
		return 0, fmt.Errorf("count all: %w", err)
	}
	return n, nil
}

// FetchSample returns one arbitrary document, or nil when the index is empty.
func (s *Service) FetchSample(ctx context.Context) (*result.Hit, error) {
	req := db.NewSearch(s.index).Query(db.MatchAll()).Size(1)
	env, err := s.run(ctx, OpFetchSample, req)
	if err != nil {
		return nil, err
	}
	return env.First(), nil
}

// Search matches keywords against the configured text fields.
// Empty keywords match every document.
func (s *Service) Search(ctx context.Context, keywords string, limit int) (*result.Envelope, error) {
	req := db.NewSearch(s.index).Query(s.keywordQuery(keywords)).Size(s.limit(limit))
	return s.run(ctx, OpSearch, req)
}

// SearchQueryString runs expr in the engine's query-string syntax.
// Syntax errors are reported by the engine.
func (s *Service) SearchQueryString(ctx context.Context, expr string, limit int) (*result.Envelope, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: query string is empty", domain.ErrInvalidRequest)
	}
	req := db.NewSearch(s.index).QueryString(expr).Size(s.limit(limit))
	return s.run(ctx, OpSearchQueryString, req)
}

// SampleSubset returns up to limit documents whose facet matches value,
// optionally narrowed by keywords. limit <= 0 means DefaultSampleLimit.
func (s *Service) SampleSubset(
	ctx context.Context, keywords, facetName, value string, limit int,
) (*result.Envelope, error) {
	f, err := s.facets.Get(facetName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSampleLimit
	}

	must := []db.Query{db.Match(f.Path(), value)}
	if keywords != "" {
		must = append(must, s.keywordQuery(keywords))
	}
	req := db.NewSearch(s.index).Query(db.Bool(must...)).Size(limit)
	return s.run(ctx, OpSampleSubset, req)
}

// DescribeSubset returns the keyword subset with score explanations, its exact
// total and the default aggregations capped at topN.
func (s *Service) DescribeSubset(
	ctx context.Context, keywords string, topN, limit int,
) (*result.Envelope, error) {
	req := db.NewSearch(s.index).
		Query(s.keywordQuery(keywords)).
		Aggs(s.DefaultAggregations(topN)).
		Size(s.limit(limit)).
		Explain().
		TrackTotalHits()
	return s.run(ctx, OpDescribeSubset, req)
}

// AggregateEntity aggregates the documents whose facet equals value over every
// other aggregated facet. The queried facet is never aggregated.
func (s *Service) AggregateEntity(
	ctx context.Context, facetName, value string, topN, limit int,
) (map[string]result.Aggregation, error) {
	f, err := s.facets.Get(facetName)
	if err != nil {
		return nil, err
	}

	req := db.NewSearch(s.index).
		QueryString(querystring.FieldEquals(f.Path(), value)).
		Aggs(s.DefaultAggregations(topN).Without(f.Name())).
		Size(s.limit(limit))
	env, err := s.run(ctx, OpAggregateEntity, req)
	if err != nil {
		return nil, err
	}
	return env.Aggregations, nil
}

// SearchBy returns documents whose facet equals value.
func (s *Service) SearchBy(
	ctx context.Context, facetName, value string, limit int,
) (*result.Envelope, error) {
	f, err := s.facets.Get(facetName)
	if err != nil {
		return nil, err
	}
	req := db.NewSearch(s.index).
		QueryString(querystring.FieldEquals(f.Path(), value)).
		Size(s.limit(limit))
	return s.run(ctx, OpSearchBy, req)
}

// FirstBy returns the source of the first document whose facet equals value, or nil.
func (s *Service) FirstBy(ctx context.Context, facetName, value string) (*document.Value, error) {
	env, err := s.SearchBy(ctx, facetName, value, 1)
	if err != nil {
		return nil, err
	}
	return sourceOf(env.First()), nil
}

// Top returns the n most frequent values of every aggregated facet.
func (s *Service) Top(ctx context.Context, n int) (map[string]result.Aggregation, error) {
	req := db.NewSearch(s.index).
		Query(db.MatchAll()).
		Aggs(s.DefaultAggregations(n)).
		Size(0)
	env, err := s.run(ctx, OpTop, req)
	if err != nil {
		return nil, err
	}
	return env.Aggregations, nil
}

// CountCardinality returns the approximate number of distinct values per
// configured cardinality label.
func (s *Service) CountCardinality(ctx context.Context) (map[string]int64, error) {
	if len(s.cardinality) == 0 {
		return map[string]int64{}, nil
	}

	b := db.NewSearch(s.index).Query(db.MatchAll()).Size(0)
	for label, f := range s.cardinality {
		b.Agg(label, db.Cardinality(f.AggregateField()))
	}
	env, err := s.run(ctx, OpCountCardinality, b)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(s.cardinality))
	for label := range s.cardinality {
		agg, ok := env.Aggregations[label]
		if !ok || agg.Value == nil {
			return nil, fmt.Errorf("%w: cardinality %q missing from response", db.ErrBadResponse, label)
		}
		counts[label] = int64(math.Round(*agg.Value))
	}
	return counts, nil
}

// RandomDocument returns one random document matching filter (query-string
// syntax, empty matches all), or nil. Seed 0 lets the engine pick.
func (s *Service) RandomDocument(ctx context.Context, filter string, seed int64) (*document.Value, error) {
	var base db.Query
	if filter != "" {
		base = db.QueryString(filter, nil, "")
	}
	req := db.NewSearch(s.index).Query(db.RandomScore(base, seed)).Size(1)
	env, err := s.run(ctx, OpRandomDocument, req)
	if err != nil {
		return nil, err
	}
	return sourceOf(env.First()), nil
}

// CompileEntities extracts (facet, value) pairs from doc in table order.
func (s *Service) CompileEntities(doc document.Value) []document.Entity {
	return document.CompileEntities(doc, s.facets.All())
}

// SummarizeSubset restricts the index by (facet, value) pairs and keywords and
// attaches aggregations minus the queried facets. Without pairs it matches
// every document and attaches the aggregations unchanged.
// req.Aggregations is never modified.
func (s *Service) SummarizeSubset(ctx context.Context, req SummaryRequest) (*result.Envelope, error) {
	op, err := querystring.ParseOperator(req.Operator)
	if err != nil {
		return nil, err
	}

	clauses := make([]string, 0, len(req.Pairs)+1)
	queried := make([]string, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		f, err := s.facets.Get(p.Facet)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, querystring.FieldEquals(f.Path(), p.Value))
		queried = append(queried, f.Name())
	}

	aggs := req.Aggregations
	if aggs == nil {
		aggs = s.DefaultAggregations(0)
	}

	b := db.NewSearch(s.index).Size(s.limit(req.Limit))
	if len(clauses) == 0 {
		b.Query(db.MatchAll()).Aggs(aggs)
	} else {
		if req.Keywords != "" {
			clauses = append(clauses, querystring.Group(req.Keywords))
		}
		b.QueryString(querystring.Join(op, clauses...)).Aggs(aggs.Without(queried...))
	}
	return s.run(ctx, OpSummarizeSubset, b)
}

// DefaultAggregations returns a terms aggregation per aggregated facet, keyed by
// facet name and capped at topN. topN <= 0 means the configured default.
func (s *Service) DefaultAggregations(topN int) db.Aggregations {
	if topN <= 0 {
		topN = s.defaultTopN
	}
	aggs := make(db.Aggregations)
	for _, f := range s.facets.Aggregated() {
		aggs[f.Name()] = db.Terms(f.AggregateField(), topN)
	}
	return aggs
}

func (s *Service) run(ctx context.Context, op string, b *db.SearchBuilder) (*result.Envelope, error) {
	req, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	env, err := s.repo.Search(withOperation(ctx, op), req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return env, nil
}

func (s *Service) keywordQuery(keywords string) db.Query {
	if keywords == "" {
		return db.MatchAll()
	}
	return db.MultiMatch(keywords, s.textFields...)
}

func (s *Service) limit(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}
	return n
}

func sourceOf(h *result.Hit) *document.Value {
	if h == nil {
		return nil
	}
	src := h.Source
	return &src
}
