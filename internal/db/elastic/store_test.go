package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain"
)

// recorded is one request seen by the fake engine.
type recorded struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
}

// fakeEngine is an httptest server speaking just enough of the REST API.
type fakeEngine struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	response string
}

func newFakeEngine(t *testing.T, status int, response string) (*fakeEngine, *Store) {
	t.Helper()
	fe := &fakeEngine{status: status, response: response}
	srv := httptest.NewServer(http.HandlerFunc(fe.serve))
	t.Cleanup(srv.Close)

	s, err := NewStore(Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return fe, s
}

func (fe *fakeEngine) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	fe.mu.Lock()
	fe.requests = append(fe.requests, recorded{
		method: r.Method, path: r.URL.Path, query: r.URL.Query(), body: body,
	})
	fe.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(fe.status)
	_, _ = io.WriteString(w, fe.response)
}

func (fe *fakeEngine) last(t *testing.T) recorded {
	t.Helper()
	fe.mu.Lock()
	defer fe.mu.Unlock()
	if len(fe.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return fe.requests[len(fe.requests)-1]
}

const searchResponse = `{
	"took": 3,
	"timed_out": false,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"max_score": 1.5,
		"hits": [
			{"_index": "datasets", "_id": "a", "_score": 1.5, "_source": {"raw": {"title": "Budget 2017"}}},
			{"_index": "datasets", "_id": "b", "_score": 0.7, "_source": {"raw": {"title": "Budget 2018"}}}
		]
	},
	"aggregations": {
		"license": {"buckets": [{"key": "CC-BY", "doc_count": 2}]}
	}
}`

func TestNewStore_NoAddresses(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestHostAddress(t *testing.T) {
	if got := HostAddress("localhost", 9200); got != "http://localhost:9200" {
		t.Errorf("HostAddress = %q", got)
	}
	if got := HostAddress("https://es.internal", 9243); got != "https://es.internal:9243" {
		t.Errorf("HostAddress = %q", got)
	}
}

func TestPing_Success(t *testing.T) {
	fe, s := newFakeEngine(t, http.StatusOK, `{}`)

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fe.last(t).method; got != http.MethodHead {
		t.Errorf("method = %s, want HEAD", got)
	}
}

func TestPing_Error(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusServiceUnavailable, `{}`)

	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrEngine) {
		t.Errorf("expected ErrEngine, got %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusServiceUnavailable, `{}`)

	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestSearch_SendsBodyAndParams(t *testing.T) {
	fe, s := newFakeEngine(t, http.StatusOK, searchResponse)

	req := db.NewSearch("datasets").
		Query(db.MatchAll()).
		Size(5).
		Agg("license", db.Terms("raw.license_id.keyword", 3)).
		Explain().
		TrackTotalHits().
		MustBuild()

	res, err := s.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := fe.last(t)
	if got.path != "/datasets/_search" {
		t.Errorf("path = %s", got.path)
	}
	if got.query.Get("size") != "5" {
		t.Errorf("size = %q", got.query.Get("size"))
	}
	if got.query.Get("explain") != "true" {
		t.Errorf("explain = %q", got.query.Get("explain"))
	}
	if got.query.Get("track_total_hits") != "true" {
		t.Errorf("track_total_hits = %q", got.query.Get("track_total_hits"))
	}
	if _, ok := got.body["query"].(map[string]any)["match_all"]; !ok {
		t.Errorf("body query = %v", got.body["query"])
	}
	if _, ok := got.body["aggs"].(map[string]any)["license"]; !ok {
		t.Errorf("body aggs = %v", got.body["aggs"])
	}

	if res.Hits.Total.Value != 2 {
		t.Errorf("total = %d, want 2", res.Hits.Total.Value)
	}
	if len(res.Hits.Hits) != 2 || res.Hits.Hits[0].ID != "a" {
		t.Fatalf("hits = %+v", res.Hits.Hits)
	}
	if res.Hits.Hits[0].Score == nil || *res.Hits.Hits[0].Score != 1.5 {
		t.Errorf("score = %v", res.Hits.Hits[0].Score)
	}
	if _, ok := res.Aggregations["license"]; !ok {
		t.Error("missing license aggregation")
	}
}

func TestSearch_QueryStringParam(t *testing.T) {
	fe, s := newFakeEngine(t, http.StatusOK, `{"hits": {"total": 0, "hits": []}}`)

	req := db.NewSearch("datasets").QueryString(`dataset.title:"Budget 2017"`).Size(5).MustBuild()
	res, err := s.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := fe.last(t)
	if got.query.Get("q") != `dataset.title:"Budget 2017"` {
		t.Errorf("q = %q", got.query.Get("q"))
	}
	if _, ok := got.body["query"]; ok {
		t.Error("body must not carry a query when q is set")
	}
	if res.Hits.Total.Value != 0 || len(res.Hits.Hits) != 0 {
		t.Errorf("expected empty result, got %+v", res.Hits)
	}
}

func TestSearch_EngineError(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusBadRequest,
		`{"error": {"type": "query_shard_exception", "reason": "Failed to parse query [a:(]"}, "status": 400}`)

	req := db.NewSearch("datasets").QueryString("a:(").MustBuild()
	_, err := s.Search(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}

	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearch {
		t.Errorf("expected db.Error with search op, got %v", err)
	}
	if !errors.Is(err, domain.ErrEngine) {
		t.Error("expected ErrEngine")
	}
}

func TestSearch_IndexNotFound(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusNotFound,
		`{"error": {"type": "index_not_found_exception", "reason": "no such index [missing]"}, "status": 404}`)

	_, err := s.Search(context.Background(), db.NewSearch("missing").MustBuild())
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_QueryRejected(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusBadRequest, `{
		"error": {
			"root_cause": [{"type": "query_shard_exception", "reason": "Failed to parse query [raw.title:(]"}],
			"type": "search_phase_execution_exception",
			"reason": "all shards failed"
		},
		"status": 400
	}`)

	_, err := s.Search(context.Background(), db.NewSearch("datasets").QueryString("raw.title:(").MustBuild())
	var re *db.RejectedError
	if !errors.As(err, &re) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if re.Type != "query_shard_exception" || !strings.Contains(re.Reason, "raw.title:(") {
		t.Errorf("rejection = %+v", re)
	}
	if !errors.Is(err, db.ErrQueryRejected) || !errors.Is(err, domain.ErrEngine) {
		t.Errorf("err = %v, want ErrQueryRejected and ErrEngine", err)
	}
}

func TestSearch_BadRequestWithoutErrorBody(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusBadRequest, `not json`)

	_, err := s.Search(context.Background(), db.NewSearch("datasets").MustBuild())
	if errors.Is(err, db.ErrQueryRejected) {
		t.Errorf("unparseable body must not be a rejection: %v", err)
	}
	if !errors.Is(err, domain.ErrEngine) {
		t.Errorf("expected ErrEngine, got %v", err)
	}
}

func TestSearch_MalformedResponse(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusOK, `{"hits": `)

	_, err := s.Search(context.Background(), db.NewSearch("datasets").MustBuild())
	if !errors.Is(err, db.ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestSearch_InvalidRequest(t *testing.T) {
	fe, s := newFakeEngine(t, http.StatusOK, `{}`)

	_, err := s.Search(context.Background(), &db.SearchRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	fe.mu.Lock()
	defer fe.mu.Unlock()
	if len(fe.requests) != 0 {
		t.Errorf("expected no request, got %d", len(fe.requests))
	}
}

func TestCount(t *testing.T) {
	fe, s := newFakeEngine(t, http.StatusOK, `{"count": 2028}`)

	n, err := s.Count(context.Background(), "datasets", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2028 {
		t.Errorf("count = %d, want 2028", n)
	}

	got := fe.last(t)
	if got.path != "/datasets/_count" {
		t.Errorf("path = %s", got.path)
	}
	if _, ok := got.body["query"].(map[string]any)["match_all"]; !ok {
		t.Errorf("body = %v", got.body)
	}
}

func TestCount_EmptyIndex(t *testing.T) {
	_, s := newFakeEngine(t, http.StatusOK, `{"count": 0}`)

	if _, err := s.Count(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty index")
	}
}
