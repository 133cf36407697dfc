package db

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchRequest is the input for a search call.
type SearchRequest struct {
	Index string
	// Query is sent in the request body. Mutually exclusive with QueryString.
	Query Query
	// QueryString is sent as the URI "q" parameter.
	QueryString    string
	Aggregations   Aggregations
	Size           int
	From           int
	Explain        bool
	TrackTotalHits bool
}

// Body returns the JSON request body.
func (r *SearchRequest) Body() ([]byte, error) {
	body := make(map[string]any, 2)
	if r.Query != nil {
		body["query"] = r.Query
	}
	if len(r.Aggregations) > 0 {
		body["aggs"] = r.Aggregations
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}
	return b, nil
}

// SearchResult is the decoded engine response.
type SearchResult struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         Hits                       `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// Hits is the hits section of a search response.
type Hits struct {
	Total    TotalHits `json:"total"`
	MaxScore *float64  `json:"max_score"`
	Hits     []Hit     `json:"hits"`
}

// Hit is a single document hit.
type Hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// TotalHits is the reported hit count, {"value": n, "relation": "eq"|"gte"}.
// A bare number (rest_total_hits_as_int) is decoded as an exact total.
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// UnmarshalJSON accepts both total formats.
func (t *TotalHits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("parse total: %w", err)
		}
		*t = TotalHits{Value: n, Relation: "eq"}
		return nil
	}
	type plain TotalHits
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse total: %w", err)
	}
	*t = TotalHits(p)
	return nil
}
