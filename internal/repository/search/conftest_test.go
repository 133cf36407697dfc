package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
	countFn  func(ctx context.Context, index string, q db.Query) (int64, error)
}

func (m *mockStore) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, index string, q db.Query) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, q)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func f64(v float64) *float64 { return &v }
