package domain

import "time"

// Keyword derivation limits applied before a document is indexed.
const (
	MaxKeywords   = 5
	MinKeywordLen = 4
)

// Completion is the index-side completion field feeding typeahead suggestions.
type Completion struct {
	Input  []string `json:"input"`
	Weight int      `json:"weight"`
}

// Document is the searchable unit owned by the index after write.
// Keywords are always populated before indexing; when the caller supplies
// none they are derived from title + abstract.
type Document struct {
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	PublicationDate *time.Time  `json:"publication_date,omitempty"`
	Abstract        string      `json:"abstract"`
	Keywords        []string    `json:"keywords"`
	Content         string      `json:"content"`
	Vector          []float32   `json:"vector,omitempty"`
	TitleCompletion *Completion `json:"title_completion,omitempty"`
}

// RawResult is a single hit returned by the external result fetcher.
type RawResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// SearchResult is a Document projection plus the relevance score of a hit.
type SearchResult struct {
	ID              string     `json:"id"`
	Score           float64    `json:"score"`
	Title           string     `json:"title"`
	Abstract        string     `json:"abstract"`
	Author          string     `json:"author"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Keywords        []string   `json:"keywords"`
	Content         string     `json:"content"`
}

// SearchCriteria is the optional filter set for an advanced search.
// Zero-value fields are omitted from the query; an empty criteria set
// matches every document.
type SearchCriteria struct {
	Title    string
	Author   string
	DateFrom *time.Time
	DateTo   *time.Time
	Keywords []string
	Content  string
}

// IsEmpty reports whether no filter criterion was supplied.
func (c SearchCriteria) IsEmpty() bool {
	return c.Title == "" && c.Author == "" &&
		c.DateFrom == nil && c.DateTo == nil &&
		len(c.Keywords) == 0 && c.Content == ""
}
