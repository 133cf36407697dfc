package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
	exploreuc "github.com/kailas-cloud/facetdex/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
)

// mockRepo implements explore.Repository.
type mockRepo struct {
	searchFn func(ctx context.Context, req *db.SearchRequest) (*result.Envelope, error)
	countFn  func(ctx context.Context, index string, q db.Query) (int64, error)
	requests []*db.SearchRequest
}

func (m *mockRepo) Search(ctx context.Context, req *db.SearchRequest) (*result.Envelope, error) {
	m.requests = append(m.requests, req)
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &result.Envelope{}, nil
}

func (m *mockRepo) Count(ctx context.Context, index string, q db.Query) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, q)
	}
	return 0, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

type testEnv struct {
	router http.Handler
	repo   *mockRepo
	pinger *mockPinger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	table, err := facet.FromPaths(
		[]string{"title", "license", "tags", "publisher"},
		map[string]string{
			"title":     "dataset.title",
			"license":   "raw.license_id",
			"tags":      "raw.tags.name",
			"publisher": "raw.publisher",
		},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}

	repo := &mockRepo{}
	svc, err := exploreuc.New(repo, exploreuc.Config{
		Index:       "odexploration",
		Facets:      table,
		Cardinality: map[string]string{"licenses": "license"},
	})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	pinger := &mockPinger{}

	r := chi.NewRouter()
	NewServer(svc, healthuc.New(pinger), zap.NewNop()).Routes(r)
	return &testEnv{router: r, repo: repo, pinger: pinger}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}
