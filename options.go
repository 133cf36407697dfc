package facetdex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db/elastic"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addresses []string
	index     string

	facets      []FacetInfo
	cardinality map[string]string

	defaultLimit int
	defaultTopN  int
	textFields   []string

	requestTimeout   time.Duration
	readinessTimeout time.Duration
	skipReadiness    bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// Defaults for the data.gv.at metadata index.
const (
	DefaultIndex = "odexploration"
	DefaultHost  = "localhost"
	DefaultPort  = 9200
)

// DefaultFacets returns the data.gv.at facet table.
func DefaultFacets() []FacetInfo {
	return []FacetInfo{
		{Name: "dataset_id", Field: "raw.id"},
		{Name: "title", Field: "raw.title", Aggregated: true},
		{Name: "license", Field: "raw.license_id", Aggregated: true},
		{Name: "categorization", Field: "raw.categorization", Aggregated: true},
		{Name: "tags", Field: "raw.tags.name", Aggregated: true},
		{Name: "organization", Field: "raw.organization.name", Aggregated: true},
		{Name: "dataset_link", Field: "dataset.dataset_link"},
	}
}

// DefaultCardinality returns the cardinality labels for the data.gv.at table.
func DefaultCardinality() map[string]string {
	return map[string]string{
		"licenses":      "license",
		"categories":    "categorization",
		"tags":          "tags",
		"organizations": "organization",
	}
}

// WithHost adds an engine node by host and port.
func WithHost(host string, port int) Option {
	return optionFunc(func(c *clientConfig) {
		c.addresses = append(c.addresses, elastic.HostAddress(host, port))
	})
}

// WithAddresses adds engine node URLs such as "http://es:9200".
func WithAddresses(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addresses = append(c.addresses, addrs...)
	})
}

// WithIndex sets the queried index. Default: DefaultIndex.
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithFacet adds an aggregated facet. The first WithFacet or WithFacetSpec
// replaces the default table.
func WithFacet(name, field string) Option {
	return WithFacetSpec(FacetInfo{Name: name, Field: field, Aggregated: true})
}

// WithFacetSpec adds a facet with an explicit aggregation field and flag.
func WithFacetSpec(f FacetInfo) Option {
	return optionFunc(func(c *clientConfig) {
		c.facets = append(c.facets, f)
	})
}

// WithCardinality maps a CountCardinality result label to a facet.
// The first call replaces the default labels.
func WithCardinality(label, facet string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.cardinality == nil {
			c.cardinality = make(map[string]string)
		}
		c.cardinality[label] = facet
	})
}

// WithDefaults sets the page size and terms size used when a call passes 0.
func WithDefaults(limit, topN int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = limit
		c.defaultTopN = topN
	})
}

// WithTextFields sets the fields searched by free-text queries. Default: every field.
func WithTextFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.textFields = fields
	})
}

// WithRequestTimeout bounds how long a request waits for response headers.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestTimeout = d
	})
}

// WithReadinessTimeout sets how long New waits for the engine. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithoutReadinessCheck makes New return without contacting the engine.
func WithoutReadinessCheck() Option {
	return optionFunc(func(c *clientConfig) {
		c.skipReadiness = true
	})
}

// WithLogger enables structured logging of engine requests.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
