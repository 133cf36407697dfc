package explore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
	"github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

// InstrumentedRepository wraps Repository with logging and search metrics.
// Metrics are labelled with the operation set by the Service.
type InstrumentedRepository struct {
	inner  Repository
	logger *zap.Logger
}

// NewInstrumentedRepository wraps a repository with observability.
func NewInstrumentedRepository(inner Repository, logger *zap.Logger) *InstrumentedRepository {
	return &InstrumentedRepository{inner: inner, logger: logger}
}

// Search delegates to the inner repository and records the outcome.
func (r *InstrumentedRepository) Search(
	ctx context.Context, req *db.SearchRequest,
) (*result.Envelope, error) {
	op := OperationFrom(ctx)
	log := logger.FromContext(ctx, r.logger)
	start := time.Now()

	env, err := r.inner.Search(ctx, req)

	duration := time.Since(start)
	r.observe(op, duration, err)

	if err != nil {
		log.Error("Search request failed",
			zap.String("operation", op),
			zap.Stringer("request", req),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("search: %w", err)
	}

	metrics.SearchHitsReturned.WithLabelValues(op).Observe(float64(len(env.Hits)))
	log.Debug("Search request completed",
		zap.String("operation", op),
		zap.Stringer("request", req),
		zap.Duration("duration", duration),
		zap.Int64("total", env.Total),
		zap.Int("hits", len(env.Hits)),
		zap.Int("aggregations", len(env.Aggregations)),
	)
	return env, nil
}

// Count delegates to the inner repository and records the outcome.
func (r *InstrumentedRepository) Count(ctx context.Context, index string, q db.Query) (int64, error) {
	op := OperationFrom(ctx)
	log := logger.FromContext(ctx, r.logger)
	start := time.Now()

	n, err := r.inner.Count(ctx, index, q)

	duration := time.Since(start)
	r.observe(op, duration, err)

	if err != nil {
		log.Error("Count request failed",
			zap.String("operation", op),
			zap.String("index", index),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return 0, fmt.Errorf("count: %w", err)
	}

	log.Debug("Count request completed",
		zap.String("operation", op),
		zap.String("index", index),
		zap.Duration("duration", duration),
		zap.Int64("count", n),
	)
	return n, nil
}

func (r *InstrumentedRepository) observe(op string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.SearchRequestDuration.WithLabelValues(op).Observe(d.Seconds())
}
