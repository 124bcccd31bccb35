package es

// Typed builders for the slice of the query DSL this service emits.
// Each node renders itself to the JSON shape Elasticsearch expects;
// repositories compose them instead of assembling raw maps.

// Query is a single query DSL node.
type Query interface {
	queryMap() map[string]any
}

// MatchQuery is a full-text match on one field.
type MatchQuery struct {
	Field     string
	Text      string
	Boost     float64
	Fuzziness string
	Operator  string
}

func (q MatchQuery) queryMap() map[string]any {
	params := map[string]any{"query": q.Text}
	if q.Boost > 0 {
		params["boost"] = q.Boost
	}
	if q.Fuzziness != "" {
		params["fuzziness"] = q.Fuzziness
	}
	if q.Operator != "" {
		params["operator"] = q.Operator
	}
	return map[string]any{"match": map[string]any{q.Field: params}}
}

// MultiMatchQuery is a full-text match across several fields.
// Fields may carry per-field boosts ("title^2").
type MultiMatchQuery struct {
	Fields []string
	Text   string
	Type   string
}

func (q MultiMatchQuery) queryMap() map[string]any {
	params := map[string]any{
		"query":  q.Text,
		"fields": q.Fields,
	}
	if q.Type != "" {
		params["type"] = q.Type
	}
	return map[string]any{"multi_match": params}
}

// TermQuery is an exact match on a keyword field.
type TermQuery struct {
	Field string
	Value any
}

func (q TermQuery) queryMap() map[string]any {
	return map[string]any{"term": map[string]any{q.Field: q.Value}}
}

// TermsQuery matches documents containing any of the given values.
type TermsQuery struct {
	Field  string
	Values []string
}

func (q TermsQuery) queryMap() map[string]any {
	return map[string]any{"terms": map[string]any{q.Field: q.Values}}
}

// PrefixQuery matches keyword values starting with a prefix.
type PrefixQuery struct {
	Field string
	Value string
}

func (q PrefixQuery) queryMap() map[string]any {
	return map[string]any{"prefix": map[string]any{q.Field: map[string]any{"value": q.Value}}}
}

// RangeQuery bounds a field between optional limits (inclusive).
type RangeQuery struct {
	Field string
	GTE   any
	LTE   any
}

func (q RangeQuery) queryMap() map[string]any {
	bounds := map[string]any{}
	if q.GTE != nil {
		bounds["gte"] = q.GTE
	}
	if q.LTE != nil {
		bounds["lte"] = q.LTE
	}
	return map[string]any{"range": map[string]any{q.Field: bounds}}
}

// MatchAllQuery matches every document.
type MatchAllQuery struct{}

func (MatchAllQuery) queryMap() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

// BoolQuery combines clauses. Empty clause lists are omitted.
type BoolQuery struct {
	Must   []Query
	Should []Query
	Filter []Query
}

func (q BoolQuery) queryMap() map[string]any {
	b := map[string]any{}
	if len(q.Must) > 0 {
		b["must"] = queryMaps(q.Must)
	}
	if len(q.Should) > 0 {
		b["should"] = queryMaps(q.Should)
	}
	if len(q.Filter) > 0 {
		b["filter"] = queryMaps(q.Filter)
	}
	return map[string]any{"bool": b}
}

// ScriptScoreQuery rescoring: the wrapped query selects documents, the
// script computes the final score (with access to the text _score).
type ScriptScoreQuery struct {
	Query  Query
	Source string
	Params map[string]any
}

func (q ScriptScoreQuery) queryMap() map[string]any {
	script := map[string]any{"source": q.Source}
	if len(q.Params) > 0 {
		script["params"] = q.Params
	}
	return map[string]any{"script_score": map[string]any{
		"query":  q.Query.queryMap(),
		"script": script,
	}}
}

// Sort orders results by a field. Use Field "_score" for relevance.
// Missing controls where documents without the field land ("_last"/"_first").
type Sort struct {
	Field   string
	Desc    bool
	Missing string
}

func (s Sort) sortMap() any {
	order := "asc"
	if s.Desc {
		order = "desc"
	}
	if s.Field == "_score" && s.Missing == "" {
		return map[string]any{"_score": map[string]any{"order": order}}
	}
	params := map[string]any{"order": order}
	if s.Missing != "" {
		params["missing"] = s.Missing
	}
	return map[string]any{s.Field: params}
}

// SearchRequest is a complete search body.
type SearchRequest struct {
	Query          Query
	Size           int
	Sort           []Sort
	SourceExcludes []string
}

func (r *SearchRequest) body() map[string]any {
	b := map[string]any{}
	if r.Query != nil {
		b["query"] = r.Query.queryMap()
	}
	if r.Size > 0 {
		b["size"] = r.Size
	}
	if len(r.Sort) > 0 {
		sorts := make([]any, len(r.Sort))
		for i, s := range r.Sort {
			sorts[i] = s.sortMap()
		}
		b["sort"] = sorts
	}
	if len(r.SourceExcludes) > 0 {
		b["_source"] = map[string]any{"excludes": r.SourceExcludes}
	}
	return b
}

// Body exposes the serialized request shape for tests.
func (r *SearchRequest) Body() map[string]any { return r.body() }

func queryMaps(qs []Query) []any {
	out := make([]any, len(qs))
	for i, q := range qs {
		out[i] = q.queryMap()
	}
	return out
}
