package document

// Mapping returns the documents index schema. The analyzer drops english
// stopwords; title carries keyword and completion subfields for exact
// aggregation and typeahead; the vector width is environment configuration.
func Mapping(vectorDims int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"custom_text_analyzer": map[string]any{
						"type":      "standard",
						"stopwords": "_english_",
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"title": map[string]any{
					"type":     "text",
					"analyzer": "custom_text_analyzer",
					"fields": map[string]any{
						"keyword": map[string]any{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"author":           map[string]any{"type": "keyword"},
				"publication_date": map[string]any{"type": "date"},
				"abstract": map[string]any{
					"type":     "text",
					"analyzer": "custom_text_analyzer",
				},
				"keywords": map[string]any{"type": "keyword"},
				"content": map[string]any{
					"type":     "text",
					"analyzer": "custom_text_analyzer",
				},
				"vector": map[string]any{
					"type": "dense_vector",
					"dims": vectorDims,
				},
				"title_completion": map[string]any{
					"type":     "completion",
					"analyzer": "custom_text_analyzer",
				},
			},
		},
	}
}
