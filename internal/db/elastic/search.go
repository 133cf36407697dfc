package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/facetdex/internal/db"
)

// Search runs a search request. Size is always sent; the body carries query and aggs.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	body, err := req.Body()
	if err != nil {
		return nil, err
	}

	search := s.client.Search
	opts := []func(*esapi.SearchRequest){
		search.WithContext(ctx),
		search.WithIndex(req.Index),
		search.WithBody(bytes.NewReader(body)),
		search.WithSize(req.Size),
	}
	if req.From > 0 {
		opts = append(opts, search.WithFrom(req.From))
	}
	if req.QueryString != "" {
		opts = append(opts, search.WithQuery(req.QueryString))
	}
	if req.Explain {
		opts = append(opts, search.WithExplain(true))
	}
	if req.TrackTotalHits {
		opts = append(opts, search.WithTrackTotalHits(true))
	}

	res, err := search(opts...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, &db.Error{Op: db.OpSearch, Err: responseError(res)}
	}

	var result db.SearchResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %w", db.ErrBadResponse, err)}
	}
	return &result, nil
}

// Count returns the number of documents matching q via the count API.
func (s *Store) Count(ctx context.Context, index string, q db.Query) (int64, error) {
	if index == "" {
		return 0, fmt.Errorf("index name is required")
	}
	if q == nil {
		q = db.MatchAll()
	}
	body, err := json.Marshal(map[string]any{"query": q})
	if err != nil {
		return 0, fmt.Errorf("marshal count body: %w", err)
	}

	count := s.client.Count
	res, err := count(
		count.WithContext(ctx),
		count.WithIndex(index),
		count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	defer closeBody(res)

	if res.IsError() {
		return 0, &db.Error{Op: db.OpCount, Err: responseError(res)}
	}

	var parsed struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: fmt.Errorf("%w: %w", db.ErrBadResponse, err)}
	}
	return parsed.Count, nil
}
