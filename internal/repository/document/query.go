package document

import (
	"time"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/es"
)

// scoreScript combines the text relevance score with cosine similarity
// shifted into [0,2] and a flat bonus for documents carrying keywords.
const scoreScript = "_score" +
	" + cosineSimilarity(params.query_vector, 'vector') + 1.0" +
	" + (doc['keywords'].size() > 0 ? 0.5 : 0.0)"

const dateLayout = "2006-01-02"

// heavyFields are stripped from hit sources; the vector and completion
// payloads are index-side concerns.
var heavyFields = []string{"vector", "title_completion"}

// combinedRequest builds the text+vector scoring query. Text relevance is
// a fuzzy should-match over title (weight 3), abstract (2) and content (1);
// the script rescoring adds the vector and keyword terms on top.
func combinedRequest(text string, vector []float32, size int) *es.SearchRequest {
	textQuery := es.BoolQuery{
		Should: []es.Query{
			es.MatchQuery{Field: "title", Text: text, Boost: 3, Fuzziness: "AUTO"},
			es.MatchQuery{Field: "abstract", Text: text, Boost: 2, Fuzziness: "AUTO"},
			es.MatchQuery{Field: "content", Text: text, Fuzziness: "AUTO"},
		},
	}

	return &es.SearchRequest{
		Query: es.ScriptScoreQuery{
			Query:  textQuery,
			Source: scoreScript,
			Params: map[string]any{"query_vector": vector},
		},
		Size:           size,
		SourceExcludes: heavyFields,
	}
}

// advancedRequest builds a conjunctive filter from the supplied criteria
// only. Results order by relevance, then publication date descending with
// undated documents last.
func advancedRequest(criteria domain.SearchCriteria, size int) *es.SearchRequest {
	var query es.Query
	if criteria.IsEmpty() {
		query = es.MatchAllQuery{}
	} else {
		var must []es.Query
		if criteria.Title != "" {
			must = append(must, es.MatchQuery{Field: "title", Text: criteria.Title, Fuzziness: "AUTO"})
		}
		if criteria.Author != "" {
			must = append(must, es.TermQuery{Field: "author", Value: criteria.Author})
		}
		if criteria.DateFrom != nil || criteria.DateTo != nil {
			must = append(must, es.RangeQuery{
				Field: "publication_date",
				GTE:   formatDate(criteria.DateFrom),
				LTE:   formatDate(criteria.DateTo),
			})
		}
		if len(criteria.Keywords) > 0 {
			must = append(must, es.TermsQuery{Field: "keywords", Values: criteria.Keywords})
		}
		if criteria.Content != "" {
			must = append(must, es.MatchQuery{Field: "content", Text: criteria.Content, Fuzziness: "AUTO"})
		}
		query = es.BoolQuery{Must: must}
	}

	return &es.SearchRequest{
		Query: query,
		Size:  size,
		Sort: []es.Sort{
			{Field: "_score", Desc: true},
			{Field: "publication_date", Desc: true, Missing: "_last"},
		},
		SourceExcludes: heavyFields,
	}
}

// titleMatchRequest matches the query as a phrase prefix against titles
// (boosted) and keywords.
func titleMatchRequest(query string, limit int) *es.SearchRequest {
	return &es.SearchRequest{
		Query: es.MultiMatchQuery{
			Fields: []string{"title^2", "keywords"},
			Text:   query,
			Type:   "phrase_prefix",
		},
		Size:           limit,
		SourceExcludes: []string{"vector", "title_completion", "abstract", "content"},
	}
}

// formatDate renders an optional bound; nil bounds are omitted from the range.
func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
