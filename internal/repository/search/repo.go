package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
	Count(ctx context.Context, index string, q db.Query) (int64, error)
}

// Repo implements usecase/explore.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search submits req and reshapes the engine response into an envelope.
func (r *Repo) Search(ctx context.Context, req *db.SearchRequest) (*result.Envelope, error) {
	sr, err := r.store.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Index, err)
	}
	env, err := toEnvelope(sr)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Index, err)
	}
	return env, nil
}

// Count returns the number of documents in index matching q.
func (r *Repo) Count(ctx context.Context, index string, q db.Query) (int64, error) {
	n, err := r.store.Count(ctx, index, q)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	return n, nil
}

// toEnvelope converts db.SearchResult into result.Envelope.
func toEnvelope(sr *db.SearchResult) (*result.Envelope, error) {
	if sr == nil {
		return &result.Envelope{Hits: []result.Hit{}}, nil
	}

	env := &result.Envelope{
		Total: sr.Hits.Total.Value,
		Hits:  make([]result.Hit, 0, len(sr.Hits.Hits)),
	}

	for _, h := range sr.Hits.Hits {
		hit, err := parseHit(h)
		if err != nil {
			return nil, err
		}
		env.Hits = append(env.Hits, hit)
	}

	if len(sr.Aggregations) > 0 {
		env.Aggregations = make(map[string]result.Aggregation, len(sr.Aggregations))
		for name, raw := range sr.Aggregations {
			agg, err := parseAggregation(raw)
			if err != nil {
				return nil, fmt.Errorf("aggregation %q: %w", name, err)
			}
			env.Aggregations[name] = agg
		}
	}

	return env, nil
}

// parseHit decodes the stored source of a hit.
func parseHit(h db.Hit) (result.Hit, error) {
	hit := result.Hit{Index: h.Index, ID: h.ID}
	if h.Score != nil {
		hit.Score = *h.Score
	}
	if len(h.Source) > 0 {
		if err := json.Unmarshal(h.Source, &hit.Source); err != nil {
			return result.Hit{}, fmt.Errorf("hit %s: %w", h.ID, err)
		}
	}
	return hit, nil
}

// parseAggregation decodes a terms or single-value metric aggregation.
func parseAggregation(raw json.RawMessage) (result.Aggregation, error) {
	var agg struct {
		Buckets []struct {
			Key         any    `json:"key"`
			KeyAsString string `json:"key_as_string"`
			DocCount    int64  `json:"doc_count"`
		} `json:"buckets"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil {
		return result.Aggregation{}, fmt.Errorf("%w: %w", db.ErrBadResponse, err)
	}

	out := result.Aggregation{Value: agg.Value}
	if agg.Buckets != nil {
		out.Buckets = make([]result.Bucket, len(agg.Buckets))
		for i, b := range agg.Buckets {
			key := b.Key
			if b.KeyAsString != "" {
				key = b.KeyAsString
			}
			out.Buckets[i] = result.Bucket{Key: key, DocCount: b.DocCount}
		}
	}
	return out, nil
}
