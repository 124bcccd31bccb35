package domain

import (
	"strings"
	"time"
)

// TrendingThreshold is the query count a stat must exceed before the
// current increment for the trending flag to flip on.
const TrendingThreshold = 5

// SearchStat is a per-normalized-query counter. The lowercased query text
// is its unique key; stats are never deleted.
type SearchStat struct {
	Query        string    `json:"query"`
	Count        int       `json:"count"`
	LastSearched time.Time `json:"last_searched"`
	IsTrending   bool      `json:"is_trending"`
}

// StatKey normalizes a query string into the statistics key.
func StatKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Suggestion is a transient typeahead candidate, built per request from
// search stats and document titles and deduplicated by text.
type Suggestion struct {
	Text     string `json:"text"`
	Count    int    `json:"count"`
	Trending bool   `json:"trending"`
}
