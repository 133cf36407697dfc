package facetdex

import (
	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain"
)

// Sentinel errors re-exported from the domain and engine layers.
// Use errors.Is() to check.
var (
	ErrUnknownFacet    = domain.ErrUnknownFacet
	ErrInvalidOperator = domain.ErrInvalidOperator
	ErrInvalidRequest  = domain.ErrInvalidRequest
	ErrEngine          = domain.ErrEngine
	ErrIndexNotFound   = db.ErrIndexNotFound
	ErrBadResponse     = db.ErrBadResponse
)
