package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/db"
)

func TestSearch_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchFn = func(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
		if req.Index != "datasets" {
			t.Errorf("unexpected index: %s", req.Index)
		}
		return &db.SearchResult{
			Hits: db.Hits{
				Total: db.TotalHits{Value: 42},
				Hits: []db.Hit{
					{Index: "datasets", ID: "doc-1", Score: f64(2.5), Source: json.RawMessage(`{"raw":{"title":"Budget"}}`)},
					{Index: "datasets", ID: "doc-2", Source: json.RawMessage(`{"raw":{"title":"Wien"}}`)},
				},
			},
			Aggregations: map[string]json.RawMessage{
				"license": json.RawMessage(`{"doc_count_error_upper_bound":0,"buckets":[{"key":"CC-BY","doc_count":30},{"key":"OGD","doc_count":12}]}`),
				"tags":    json.RawMessage(`{"value": 311}`),
			},
		}, nil
	}

	env, err := repo.Search(ctx, db.NewSearch("datasets").MustBuild())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Total != 42 {
		t.Errorf("total = %d, want 42", env.Total)
	}
	if len(env.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(env.Hits))
	}
	if env.Hits[0].Score != 2.5 {
		t.Errorf("score = %f, want 2.5", env.Hits[0].Score)
	}
	if env.Hits[1].Score != 0 {
		t.Errorf("null score should map to 0, got %f", env.Hits[1].Score)
	}
	title, ok := env.Hits[0].Source.Resolve("raw.title")
	if !ok || title[0].String() != "Budget" {
		t.Errorf("source title = %v", title)
	}

	lic := env.Aggregations["license"]
	if len(lic.Buckets) != 2 || lic.Buckets[0].Key != "CC-BY" || lic.Buckets[0].DocCount != 30 {
		t.Errorf("license buckets = %+v", lic.Buckets)
	}
	tags := env.Aggregations["tags"]
	if tags.Value == nil || *tags.Value != 311 {
		t.Errorf("tags cardinality = %v", tags.Value)
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	env, err := repo.Search(context.Background(), db.NewSearch("datasets").MustBuild())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Total != 0 || len(env.Hits) != 0 {
		t.Errorf("expected empty envelope, got %+v", env)
	}
	if env.First() != nil {
		t.Error("expected no first hit")
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	storeErr := &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}

	ms.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return nil, storeErr
	}

	_, err := repo.Search(context.Background(), db.NewSearch("datasets").MustBuild())
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestSearch_BadAggregation(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return &db.SearchResult{
			Aggregations: map[string]json.RawMessage{"x": json.RawMessage(`[1,2]`)},
		}, nil
	}

	_, err := repo.Search(context.Background(), db.NewSearch("datasets").MustBuild())
	if !errors.Is(err, db.ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestSearch_KeyAsString(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return &db.SearchResult{
			Aggregations: map[string]json.RawMessage{
				"modified": json.RawMessage(`{"buckets":[{"key":1483228800000,"key_as_string":"2017-01-01","doc_count":4}]}`),
			},
		}, nil
	}

	env, err := repo.Search(context.Background(), db.NewSearch("datasets").MustBuild())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.Aggregations["modified"].Buckets[0].Key; got != "2017-01-01" {
		t.Errorf("key = %v, want 2017-01-01", got)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.countFn = func(_ context.Context, index string, q db.Query) (int64, error) {
		if index != "datasets" {
			t.Errorf("unexpected index: %s", index)
		}
		if _, ok := q["match_all"]; !ok {
			t.Errorf("unexpected query: %v", q)
		}
		return 2914, nil
	}

	n, err := repo.Count(context.Background(), "datasets", db.MatchAll())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2914 {
		t.Errorf("count = %d, want 2914", n)
	}
}
