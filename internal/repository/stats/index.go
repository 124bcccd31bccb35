package stats

// Mapping returns the search-stats index schema. The stat key doubles as
// the document id, so lookups and increments address a single document.
func Mapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"query":         map[string]any{"type": "keyword"},
				"count":         map[string]any{"type": "integer"},
				"last_searched": map[string]any{"type": "date"},
				"is_trending":   map[string]any{"type": "boolean"},
			},
		},
	}
}
