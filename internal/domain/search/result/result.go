package result

import "github.com/kailas-cloud/facetdex/internal/domain/document"

// Hit is a single scored document.
type Hit struct {
	Index  string         `json:"index"`
	ID     string         `json:"id"`
	Score  float64        `json:"score"`
	Source document.Value `json:"source"`
}

// Bucket is one value of a terms aggregation with its document count.
type Bucket struct {
	Key      any   `json:"key"`
	DocCount int64 `json:"doc_count"`
}

// Aggregation is either a bucketed terms result or a single metric value (cardinality).
type Aggregation struct {
	Buckets []Bucket `json:"buckets,omitempty"`
	Value   *float64 `json:"value,omitempty"`
}

// Envelope is a reshaped engine response.
type Envelope struct {
	Total        int64                  `json:"total"`
	Hits         []Hit                  `json:"hits"`
	Aggregations map[string]Aggregation `json:"aggregations,omitempty"`
}

// First returns the first hit or nil when there are none.
func (e *Envelope) First() *Hit {
	if e == nil || len(e.Hits) == 0 {
		return nil
	}
	return &e.Hits[0]
}

// Sources returns the source documents of all hits in order.
func (e *Envelope) Sources() []document.Value {
	out := make([]document.Value, len(e.Hits))
	for i := range e.Hits {
		out[i] = e.Hits[i].Source
	}
	return out
}
