package db

// Query is an engine query clause: query kind -> parameters.
type Query map[string]any

// Aggregation is a single aggregation spec: aggregation kind -> parameters.
type Aggregation map[string]any

// Aggregations maps result names to aggregation specs.
type Aggregations map[string]Aggregation

// MatchAll matches every document.
func MatchAll() Query {
	return Query{"match_all": map[string]any{}}
}

// Match is a full-text match of text against one field.
func Match(field, text string) Query {
	return Query{"match": map[string]any{field: text}}
}

// MultiMatch is a full-text match over several fields (wildcards allowed).
func MultiMatch(text string, fields ...string) Query {
	params := map[string]any{"query": text}
	if len(fields) > 0 {
		params["fields"] = fields
	}
	return Query{"multi_match": params}
}

// Bool requires every clause in must.
func Bool(must ...Query) Query {
	return Query{"bool": map[string]any{"must": must}}
}

// QueryString parses expr with the engine's query-string grammar.
// fields and operator are optional.
func QueryString(expr string, fields []string, operator string) Query {
	params := map[string]any{"query": expr}
	if len(fields) > 0 {
		params["fields"] = fields
	}
	if operator != "" {
		params["default_operator"] = operator
	}
	return Query{"query_string": params}
}

// RandomScore replaces the relevance score of q with a random one.
// A zero seed lets the engine pick; a fixed seed is reproducible.
func RandomScore(q Query, seed int64) Query {
	random := map[string]any{}
	if seed != 0 {
		random["seed"] = seed
		random["field"] = "_seq_no"
	}
	if q == nil {
		q = MatchAll()
	}
	return Query{"function_score": map[string]any{
		"query":        q,
		"random_score": random,
		"boost_mode":   "replace",
	}}
}

// Terms buckets documents by field value, keeping the size most frequent.
func Terms(field string, size int) Aggregation {
	return Aggregation{"terms": map[string]any{"field": field, "size": size}}
}

// Cardinality estimates the number of distinct field values.
func Cardinality(field string) Aggregation {
	return Aggregation{"cardinality": map[string]any{"field": field}}
}

// Without returns a copy of a with the named entries removed. a is not modified.
func (a Aggregations) Without(names ...string) Aggregations {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := make(Aggregations, len(a))
	for k, v := range a {
		if _, ok := skip[k]; ok {
			continue
		}
		out[k] = v
	}
	return out
}
