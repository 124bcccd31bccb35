package suggest

import (
	"context"

	"github.com/indexify/indexify/internal/domain"
)

// StatsReader lists stats whose key starts with a prefix, most searched first.
type StatsReader interface {
	ByPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchStat, error)
}

// TitleReader lists document titles matching a query as a phrase prefix.
type TitleReader interface {
	MatchTitles(ctx context.Context, query string, limit int) ([]string, error)
}
