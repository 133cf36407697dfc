package explore

import (
	"context"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
)

// Repository defines the engine contract for exploration queries.
type Repository interface {
	Search(ctx context.Context, req *db.SearchRequest) (*result.Envelope, error)
	Count(ctx context.Context, index string, q db.Query) (int64, error)
}
