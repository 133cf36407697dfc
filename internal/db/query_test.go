package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

func TestAggregations_WithoutIsPure(t *testing.T) {
	aggs := Aggregations{
		"title":     Terms("raw.title.keyword", 10),
		"license":   Terms("raw.license_id.keyword", 10),
		"publisher": Terms("dataset.publisher.keyword", 10),
	}

	out := aggs.Without("publisher", "missing")

	if len(aggs) != 3 {
		t.Errorf("original mutated: %d entries", len(aggs))
	}
	if _, ok := out["publisher"]; ok {
		t.Error("publisher still present")
	}
	if len(out) != 2 {
		t.Errorf("result entries = %d, want 2", len(out))
	}
}

func TestQueryString_Params(t *testing.T) {
	q := QueryString(`a:"1"`, []string{"a"}, "OR")
	params := q["query_string"].(map[string]any)
	if params["query"] != `a:"1"` {
		t.Errorf("query = %v", params["query"])
	}
	if params["default_operator"] != "OR" {
		t.Errorf("default_operator = %v", params["default_operator"])
	}

	bare := QueryString("x", nil, "")["query_string"].(map[string]any)
	if _, ok := bare["fields"]; ok {
		t.Error("fields should be omitted")
	}
	if _, ok := bare["default_operator"]; ok {
		t.Error("default_operator should be omitted")
	}
}

func TestBool_Must(t *testing.T) {
	q := Bool(Match("raw.license_id", "CC-BY"), MultiMatch("wien", "*"))
	b, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"bool":{"must":[{"match":{"raw.license_id":"CC-BY"}},{"multi_match":{"fields":["*"],"query":"wien"}}]}}`
	if string(b) != want {
		t.Errorf("json = %s\nwant  %s", b, want)
	}
}

func TestRandomScore(t *testing.T) {
	q := RandomScore(nil, 0)
	fs := q["function_score"].(map[string]any)
	if _, ok := fs["query"].(Query)["match_all"]; !ok {
		t.Errorf("expected match_all inner query, got %v", fs["query"])
	}
	if len(fs["random_score"].(map[string]any)) != 0 {
		t.Error("expected engine-chosen seed")
	}

	seeded := RandomScore(MatchAll(), 42)["function_score"].(map[string]any)
	rs := seeded["random_score"].(map[string]any)
	if rs["seed"] != int64(42) || rs["field"] != "_seq_no" {
		t.Errorf("random_score = %v", rs)
	}
}

func TestTotalHits_BothFormats(t *testing.T) {
	var legacy TotalHits
	if err := json.Unmarshal([]byte(`2914`), &legacy); err != nil {
		t.Fatalf("legacy: %v", err)
	}
	if legacy.Value != 2914 || legacy.Relation != "eq" {
		t.Errorf("legacy = %+v", legacy)
	}

	var modern TotalHits
	if err := json.Unmarshal([]byte(`{"value": 10000, "relation": "gte"}`), &modern); err != nil {
		t.Fatalf("modern: %v", err)
	}
	if modern.Value != 10000 || modern.Relation != "gte" {
		t.Errorf("modern = %+v", modern)
	}

	var bad TotalHits
	if err := json.Unmarshal([]byte(`"x"`), &bad); err == nil {
		t.Error("expected error for string total")
	}
}

func TestError_MatchesEngine(t *testing.T) {
	inner := errors.New("connection refused")
	err := fmt.Errorf("search: %w", &Error{Op: OpSearch, Err: inner})

	if !errors.Is(err, domain.ErrEngine) {
		t.Error("expected ErrEngine match")
	}
	if !errors.Is(err, inner) {
		t.Error("expected inner error to stay reachable")
	}
	if err.Error() != "search: search: connection refused" {
		t.Errorf("message = %q", err.Error())
	}
}
