package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/facetdex/internal/domain/facet"
)

// Config holds the facetdex API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Search        SearchConfig        `yaml:"search"`
	Facets        []FacetConfig       `yaml:"facets"`
	Cardinality   map[string]string   `yaml:"cardinality"` // result label -> facet name
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File       string `yaml:"file"`  // optional rotated log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticsearchConfig holds search engine connection settings.
type ElasticsearchConfig struct {
	Addresses         []string `yaml:"addresses"`
	Index             string   `yaml:"index"`
	ReadinessTimeout  int      `yaml:"readiness_timeout_sec"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	DefaultLimit int      `yaml:"default_limit"`
	DefaultTopN  int      `yaml:"default_top_n"`
	TextFields   []string `yaml:"text_fields"`
}

// FacetConfig maps a logical facet name to a document field.
type FacetConfig struct {
	Name           string `yaml:"name"`
	Field          string `yaml:"field"`
	AggregateField string `yaml:"aggregate_field"` // default: <field>.keyword
	Aggregate      *bool  `yaml:"aggregate"`       // default: true
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elasticsearch.ReadinessTimeout <= 0 {
		c.Elasticsearch.ReadinessTimeout = 30
	}
	if c.Elasticsearch.RequestTimeoutSec <= 0 {
		c.Elasticsearch.RequestTimeoutSec = 10
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 100
	}
	if c.Search.DefaultTopN <= 0 {
		c.Search.DefaultTopN = 10
	}
	if len(c.Search.TextFields) == 0 {
		c.Search.TextFields = []string{"*"}
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("elasticsearch.addresses is required")
	}
	if c.Elasticsearch.Index == "" {
		return fmt.Errorf("elasticsearch.index is required")
	}
	if len(c.Facets) == 0 {
		return fmt.Errorf("facets: at least one facet is required")
	}

	names := make(map[string]struct{}, len(c.Facets))
	for i, f := range c.Facets {
		if f.Name == "" || f.Field == "" {
			return fmt.Errorf("facets[%d]: name and field are required", i)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("facets[%d]: duplicate facet %q", i, f.Name)
		}
		names[f.Name] = struct{}{}
	}
	for label, name := range c.Cardinality {
		if _, ok := names[name]; !ok {
			return fmt.Errorf("cardinality.%s references unknown facet %q", label, name)
		}
	}
	return nil
}

// FacetTable builds the facet lookup table in configuration order.
func (c *Config) FacetTable() (facet.Table, error) {
	facets := make([]facet.Facet, 0, len(c.Facets))
	for _, fc := range c.Facets {
		aggregate := fc.Aggregate == nil || *fc.Aggregate
		f, err := facet.New(fc.Name, fc.Field, fc.AggregateField, aggregate)
		if err != nil {
			return facet.Table{}, fmt.Errorf("facet %q: %w", fc.Name, err)
		}
		facets = append(facets, f)
	}
	return facet.NewTable(facets...)
}

// RequestTimeout returns the per-request engine timeout.
func (e ElasticsearchConfig) RequestTimeout() time.Duration {
	return time.Duration(e.RequestTimeoutSec) * time.Second
}

// ReadinessTimeoutDuration returns how long startup waits for the engine.
func (e ElasticsearchConfig) ReadinessTimeoutDuration() time.Duration {
	return time.Duration(e.ReadinessTimeout) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
