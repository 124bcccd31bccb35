// Package suggest merges statistics-based and content-based candidates
// into a ranked, deduplicated suggestion list.
package suggest

import (
	"context"

	"go.uber.org/zap"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/metrics"
)

// DefaultLimit is the suggestion count served when the caller passes none.
const DefaultLimit = 5

// Service builds search suggestions.
type Service struct {
	stats        StatsReader
	titles       TitleReader
	defaultLimit int
	logger       *zap.Logger
}

// New creates a suggestion service.
func New(stats StatsReader, titles TitleReader, logger *zap.Logger) *Service {
	return &Service{stats: stats, titles: titles, defaultLimit: DefaultLimit, logger: logger}
}

// WithMaxSuggestions overrides the limit used when callers pass none.
func (s *Service) WithMaxSuggestions(n int) *Service {
	if n > 0 {
		s.defaultLimit = n
	}
	return s
}

// Suggestions returns up to limit deduplicated suggestions for a query
// prefix. Stat-derived entries rank first and keep their counters; unseen
// document titles pad the remainder with zero counts. Lookup failures are
// logged and degrade to whatever was collected so far — never an error.
func (s *Service) Suggestions(ctx context.Context, query string, limit int) []domain.Suggestion {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	suggestions := make([]domain.Suggestion, 0, limit)
	seen := make(map[string]bool, limit)

	stats, err := s.stats.ByPrefix(ctx, domain.StatKey(query), limit)
	if err != nil {
		s.logger.Warn("suggestion stats lookup failed", zap.String("query", query), zap.Error(err))
	}
	for _, stat := range stats {
		if len(suggestions) == limit || seen[stat.Query] {
			continue
		}
		seen[stat.Query] = true
		suggestions = append(suggestions, domain.Suggestion{
			Text:     stat.Query,
			Count:    stat.Count,
			Trending: stat.IsTrending,
		})
		metrics.SuggestionsServedTotal.WithLabelValues("stats").Inc()
	}

	if len(suggestions) == limit {
		return suggestions
	}

	titles, err := s.titles.MatchTitles(ctx, query, limit-len(suggestions))
	if err != nil {
		s.logger.Warn("suggestion title lookup failed", zap.String("query", query), zap.Error(err))
		return suggestions
	}
	for _, title := range titles {
		if len(suggestions) == limit || seen[title] {
			continue
		}
		seen[title] = true
		suggestions = append(suggestions, domain.Suggestion{Text: title})
		metrics.SuggestionsServedTotal.WithLabelValues("titles").Inc()
	}

	return suggestions
}
