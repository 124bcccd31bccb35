package stats

import (
	"context"

	"github.com/indexify/indexify/internal/domain"
)

// Repository defines the storage contract for search stats.
type Repository interface {
	// Get returns the stat for a normalized key, or domain.ErrStatNotFound.
	Get(ctx context.Context, key string) (domain.SearchStat, error)
	Create(ctx context.Context, stat domain.SearchStat) error
	Update(ctx context.Context, stat domain.SearchStat) error
}
