package facetdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/db/elastic"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	searchrepo "github.com/kailas-cloud/facetdex/internal/repository/search"
	exploreuc "github.com/kailas-cloud/facetdex/internal/usecase/explore"
)

const defaultReadinessTimeout = 10 * time.Second

// exploreUseCase is the internal surface the Client delegates to; tests substitute it.
type exploreUseCase interface {
	CountAll(ctx context.Context) (int64, error)
	FetchSample(ctx context.Context) (*Hit, error)
	Search(ctx context.Context, keywords string, limit int) (*Envelope, error)
	SearchQueryString(ctx context.Context, expr string, limit int) (*Envelope, error)
	SampleSubset(ctx context.Context, keywords, facetName, value string, limit int) (*Envelope, error)
	DescribeSubset(ctx context.Context, keywords string, topN, limit int) (*Envelope, error)
	AggregateEntity(ctx context.Context, facetName, value string, topN, limit int) (map[string]Aggregation, error)
	SearchBy(ctx context.Context, facetName, value string, limit int) (*Envelope, error)
	FirstBy(ctx context.Context, facetName, value string) (*Document, error)
	Top(ctx context.Context, n int) (map[string]Aggregation, error)
	CountCardinality(ctx context.Context) (map[string]int64, error)
	RandomDocument(ctx context.Context, filter string, seed int64) (*Document, error)
	CompileEntities(doc Document) []Entity
	SummarizeSubset(ctx context.Context, req SummaryRequest) (*Envelope, error)
	DefaultAggregations(topN int) Aggregations
	Facets() facet.Table
	Index() string
}

// Client is the facetdex SDK entry point. It is safe for concurrent use.
type Client struct {
	store db.Store
	svc   exploreUseCase
	obs   *observer
}

// New creates a Client for one index and waits until the engine answers,
// unless WithoutReadinessCheck is given. The context bounds the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:            DefaultIndex,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if len(cfg.addresses) == 0 {
		cfg.addresses = []string{elastic.HostAddress(DefaultHost, DefaultPort)}
	}
	if len(cfg.facets) == 0 {
		cfg.facets = DefaultFacets()
		if cfg.cardinality == nil {
			cfg.cardinality = DefaultCardinality()
		}
	}

	table, err := buildTable(cfg.facets)
	if err != nil {
		return nil, fmt.Errorf("facetdex: %w", err)
	}

	store, err := elastic.NewStore(elastic.Config{
		Addresses:      cfg.addresses,
		RequestTimeout: cfg.requestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("facetdex: create store: %w", err)
	}

	if !cfg.skipReadiness {
		if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("facetdex: search engine not ready: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(store, table, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func buildTable(infos []FacetInfo) (facet.Table, error) {
	facets := make([]facet.Facet, 0, len(infos))
	for _, fi := range infos {
		f, err := facet.New(fi.Name, fi.Field, fi.AggregateField, fi.Aggregated)
		if err != nil {
			return facet.Table{}, err
		}
		facets = append(facets, f)
	}
	return facet.NewTable(facets...)
}

func wireClient(store db.Store, table facet.Table, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := exploreuc.NewInstrumentedRepository(searchrepo.New(store), logger)

	svc, err := exploreuc.New(repo, exploreuc.Config{
		Index:        cfg.index,
		Facets:       table,
		DefaultLimit: cfg.defaultLimit,
		DefaultTopN:  cfg.defaultTopN,
		TextFields:   cfg.textFields,
		Cardinality:  cfg.cardinality,
	})
	if err != nil {
		return nil, fmt.Errorf("facetdex: %w", err)
	}

	return &Client{store: store, svc: svc, obs: obs}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return errors.New("facetdex: client is not connected")
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Index returns the queried index name.
func (c *Client) Index() string { return c.svc.Index() }

// Facets returns the facet table in order.
func (c *Client) Facets() []FacetInfo {
	all := c.svc.Facets().All()
	out := make([]FacetInfo, len(all))
	for i, f := range all {
		out[i] = FacetInfo{
			Name:           f.Name(),
			Field:          f.Path(),
			AggregateField: f.AggregateField(),
			Aggregated:     f.Aggregated(),
		}
	}
	return out
}

// CountAll returns the number of documents in the index.
func (c *Client) CountAll(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpCountAll, start, err) }()
	return c.svc.CountAll(ctx)
}

// FetchSample returns one document, or nil for an empty index.
func (c *Client) FetchSample(ctx context.Context) (hit *Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpFetchSample, start, err) }()
	return c.svc.FetchSample(ctx)
}

// Search matches keywords against the text fields. limit 0 means the default.
func (c *Client) Search(ctx context.Context, keywords string, limit int) (env *Envelope, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpSearch, start, err) }()
	return c.svc.Search(ctx, keywords, limit)
}

// SearchQueryString runs an expression in the engine's query-string syntax.
func (c *Client) SearchQueryString(ctx context.Context, expr string, limit int) (env *Envelope, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpSearchQueryString, start, err) }()
	return c.svc.SearchQueryString(ctx, expr, limit)
}

// SampleSubset returns a few documents whose facet matches value, optionally
// narrowed by keywords. limit 0 means 2.
func (c *Client) SampleSubset(
	ctx context.Context, keywords, facetName, value string, limit int,
) (env *Envelope, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpSampleSubset, start, err) }()
	return c.svc.SampleSubset(ctx, keywords, facetName, value, limit)
}

// DescribeSubset returns the keyword subset with its exact total and the
// default aggregations capped at topN.
func (c *Client) DescribeSubset(ctx context.Context, keywords string, topN, limit int) (env *Envelope, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpDescribeSubset, start, err) }()
	return c.svc.DescribeSubset(ctx, keywords, topN, limit)
}

// AggregateEntity aggregates documents whose facet equals value over every other facet.
func (c *Client) AggregateEntity(
	ctx context.Context, facetName, value string, topN, limit int,
) (aggs map[string]Aggregation, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpAggregateEntity, start, err) }()
	return c.svc.AggregateEntity(ctx, facetName, value, topN, limit)
}

// SearchBy returns documents whose facet equals value.
func (c *Client) SearchBy(ctx context.Context, facetName, value string, limit int) (env *Envelope, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpSearchBy, start, err) }()
	return c.svc.SearchBy(ctx, facetName, value, limit)
}

// FirstBy returns the first document whose facet equals value, or nil.
func (c *Client) FirstBy(ctx context.Context, facetName, value string) (doc *Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpSearchBy, start, err) }()
	return c.svc.FirstBy(ctx, facetName, value)
}

// Top returns the n most frequent values of every aggregated facet.
func (c *Client) Top(ctx context.Context, n int) (aggs map[string]Aggregation, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpTop, start, err) }()
	return c.svc.Top(ctx, n)
}

// CountCardinality returns the approximate distinct value count per label.
func (c *Client) CountCardinality(ctx context.Context) (counts map[string]int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpCountCardinality, start, err) }()
	return c.svc.CountCardinality(ctx)
}

// RandomDocument returns a random document matching filter, or nil.
// Seed 0 lets the engine choose; a fixed seed repeats the pick.
func (c *Client) RandomDocument(ctx context.Context, filter string, seed int64) (doc *Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpRandomDocument, start, err) }()
	return c.svc.RandomDocument(ctx, filter, seed)
}

// CompileEntities extracts (facet, value) pairs from a source document.
func (c *Client) CompileEntities(doc Document) []Entity {
	return c.svc.CompileEntities(doc)
}

// SummarizeSubset restricts the index by facet pairs and keywords and returns
// hits with aggregations over the facets not queried.
func (c *Client) SummarizeSubset(ctx context.Context, req SummaryRequest) (env *Envelope, err error) {
	start := time.Now()
	defer func() { c.obs.observe(exploreuc.OpSummarizeSubset, start, err) }()
	return c.svc.SummarizeSubset(ctx, req)
}

// DefaultAggregations returns the terms aggregation set used by Top and
// DescribeSubset, ready to be passed to SummarizeSubset.
func (c *Client) DefaultAggregations(topN int) Aggregations {
	return c.svc.DefaultAggregations(topN)
}
