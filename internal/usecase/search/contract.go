package search

import (
	"context"

	"github.com/indexify/indexify/internal/domain"
)

// Repository defines the index query contract for search operations.
type Repository interface {
	Combined(ctx context.Context, text string, vector []float32, size int) ([]domain.SearchResult, error)
	Advanced(ctx context.Context, criteria domain.SearchCriteria, size int) ([]domain.Document, error)
}

// StatsRecorder records query telemetry. Failures are logged, never fatal.
type StatsRecorder interface {
	Record(ctx context.Context, query string) error
}

// Backfiller fetches and indexes external results after a miss.
type Backfiller interface {
	FetchAndIndex(ctx context.Context, query string, count int) ([]domain.Document, error)
}
