// Package facetdex provides a Go client for exploring dataset metadata stored
// in an Elasticsearch index through a configurable facet table.
//
// A facet maps a logical name such as "license" to a dotted field path such
// as "raw.license_id". Every facet-scoped operation resolves names through
// the table before any request is sent.
//
//	client, _ := facetdex.New(ctx,
//	    facetdex.WithHost("localhost", 9200),
//	    facetdex.WithIndex("odexploration"),
//	)
//	defer client.Close()
//
//	n, _ := client.CountAll(ctx)
//	top, _ := client.Top(ctx, 5)
//	doc, _ := client.FirstBy(ctx, "dataset_link", link)
//	summary, _ := client.SummarizeSubset(ctx, facetdex.SummaryRequest{
//	    Pairs: []facetdex.Pair{{Facet: "organization", Value: "Stadt Wien"}},
//	})
package facetdex
