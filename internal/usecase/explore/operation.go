package explore

import "context"

// Operation names used as metric and log labels.
const (
	OpCountAll          = "count_all"
	OpFetchSample       = "fetch_sample"
	OpSearch            = "search"
	OpSearchQueryString = "search_query_string"
	OpSampleSubset      = "sample_subset"
	OpDescribeSubset    = "describe_subset"
	OpAggregateEntity   = "aggregate_entity"
	OpSearchBy          = "search_by"
	OpTop               = "top"
	OpCountCardinality  = "count_cardinality"
	OpRandomDocument    = "random_document"
	OpSummarizeSubset   = "summarize_subset"
)

type opKey struct{}

func withOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

// OperationFrom returns the operation name stored in ctx, or "unknown".
func OperationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(opKey{}).(string); ok {
		return op
	}
	return "unknown"
}
