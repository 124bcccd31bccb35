package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics. Outcomes distinguish first-pass hits from
// results that only appeared after a backfill cycle.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexify",
			Name:      "searches_total",
			Help:      "Total number of search requests by outcome",
		},
		[]string{"outcome"}, // "hit" / "miss" / "backfill_hit" / "backfill_miss" / "error"
	)

	BackfillDocumentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexify",
			Name:      "backfill_documents_total",
			Help:      "Total documents indexed from the external fetcher",
		},
	)

	SuggestionsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexify",
			Name:      "suggestions_served_total",
			Help:      "Total suggestions served by source",
		},
		[]string{"source"}, // "stats" / "titles"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(BackfillDocumentsTotal)
	prometheus.MustRegister(SuggestionsServedTotal)
	searchMetricsRegistered = true
}
