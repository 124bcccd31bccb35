package indexing

import (
	"context"

	"github.com/indexify/indexify/internal/domain"
)

// DocumentWriter persists index-ready documents.
type DocumentWriter interface {
	Index(ctx context.Context, doc *domain.Document) (string, error)
}

// Fetcher retrieves raw results from the external search API.
type Fetcher interface {
	Fetch(ctx context.Context, query string, count int) ([]domain.RawResult, error)
}
