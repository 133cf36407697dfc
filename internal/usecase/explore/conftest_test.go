package explore

import (
	"context"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
)

// mockRepo implements Repository and records every request.
type mockRepo struct {
	searchFn func(ctx context.Context, req *db.SearchRequest) (*result.Envelope, error)
	countFn  func(ctx context.Context, index string, q db.Query) (int64, error)

	requests []*db.SearchRequest
	counts   int
	ops      []string
}

func (m *mockRepo) Search(ctx context.Context, req *db.SearchRequest) (*result.Envelope, error) {
	m.requests = append(m.requests, req)
	m.ops = append(m.ops, OperationFrom(ctx))
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &result.Envelope{}, nil
}

func (m *mockRepo) Count(ctx context.Context, index string, q db.Query) (int64, error) {
	m.counts++
	m.ops = append(m.ops, OperationFrom(ctx))
	if m.countFn != nil {
		return m.countFn(ctx, index, q)
	}
	return 0, nil
}

func (m *mockRepo) calls() int { return len(m.requests) + m.counts }

func (m *mockRepo) last(t *testing.T) *db.SearchRequest {
	t.Helper()
	if len(m.requests) == 0 {
		t.Fatal("expected a search request")
	}
	return m.requests[len(m.requests)-1]
}

func testFacets(t *testing.T) facet.Table {
	t.Helper()
	specs := []struct {
		name, path string
		aggregate  bool
	}{
		{"dataset_id", "raw.id", false},
		{"title", "raw.title", true},
		{"license", "raw.license_id", true},
		{"categorization", "raw.categorization", true},
		{"tags", "raw.tags.name", true},
		{"organization", "raw.organization.name", true},
		{"publisher", "raw.publisher", true},
		{"dataset_link", "dataset.dataset_link", false},
	}
	facets := make([]facet.Facet, 0, len(specs))
	for _, s := range specs {
		f, err := facet.New(s.name, s.path, "", s.aggregate)
		if err != nil {
			t.Fatalf("facet %s: %v", s.name, err)
		}
		facets = append(facets, f)
	}
	table, err := facet.NewTable(facets...)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return table
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	repo := &mockRepo{}
	svc, err := New(repo, Config{
		Index:        "odexploration",
		Facets:       testFacets(t),
		DefaultLimit: 50,
		DefaultTopN:  5,
		TextFields:   []string{"raw.title", "raw.notes"},
		Cardinality: map[string]string{
			"licenses":      "license",
			"categories":    "categorization",
			"tags":          "tags",
			"organizations": "organization",
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func f64(v float64) *float64 { return &v }
