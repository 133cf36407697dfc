package db

import (
	"context"
	"time"
)

// Store is the search engine facade combining all sub-interfaces.
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs search and count requests against an index.
type Searcher interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	Count(ctx context.Context, index string, q Query) (int64, error)
}
