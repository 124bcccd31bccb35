// Package search orchestrates the request flow: stats, embedding, the
// combined scoring query, and the miss-triggered backfill-and-retry cycle.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/metrics"
)

// Result size bounds for both search endpoints.
const (
	MinSize     = 1
	MaxSize     = 100
	DefaultSize = 10
)

// Service is the search orchestrator.
type Service struct {
	repo          Repository
	stats         StatsRecorder
	backfill      Backfiller
	embed         domain.Embedder
	backfillCount int
	logger        *zap.Logger
}

// New creates a search service.
func New(
	repo Repository,
	stats StatsRecorder,
	backfill Backfiller,
	embed domain.Embedder,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:          repo,
		stats:         stats,
		backfill:      backfill,
		embed:         embed,
		backfillCount: 10,
		logger:        logger,
	}
}

// WithBackfillCount overrides how many external results a miss requests.
func (s *Service) WithBackfillCount(n int) *Service {
	if n > 0 {
		s.backfillCount = n
	}
	return s
}

// Search runs the combined scoring query and, when it comes back empty,
// backfills the index from the external fetcher and retries exactly once
// with identical parameters. The retry result is returned even if still
// empty; there is never a second cycle.
//
// Stats recording and the backfill degrade to no-ops on failure; only the
// embedding and the primary (or retry) index query surface errors.
func (s *Service) Search(ctx context.Context, query string, size int) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	size = clampSize(size)

	if err := s.stats.Record(ctx, query); err != nil {
		s.logger.Warn("search stats update failed", zap.String("query", query), zap.Error(err))
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.repo.Combined(ctx, query, emb.Vector, size)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(results) > 0 {
		metrics.SearchesTotal.WithLabelValues("hit").Inc()
		return results, nil
	}

	indexed, err := s.backfill.FetchAndIndex(ctx, query, s.backfillCount)
	if err != nil {
		s.logger.Warn("backfill failed", zap.String("query", query), zap.Error(err))
		metrics.SearchesTotal.WithLabelValues("miss").Inc()
		return results, nil
	}
	if len(indexed) == 0 {
		metrics.SearchesTotal.WithLabelValues("miss").Inc()
		return results, nil
	}

	retried, err := s.repo.Combined(ctx, query, emb.Vector, size)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search after backfill: %w", err)
	}

	if len(retried) > 0 {
		metrics.SearchesTotal.WithLabelValues("backfill_hit").Inc()
	} else {
		metrics.SearchesTotal.WithLabelValues("backfill_miss").Inc()
	}
	return retried, nil
}

// Advanced runs the filtered query built from the supplied criteria.
func (s *Service) Advanced(
	ctx context.Context, criteria domain.SearchCriteria, size int,
) ([]domain.Document, error) {
	size = clampSize(size)

	docs, err := s.repo.Advanced(ctx, criteria, size)
	if err != nil {
		return nil, fmt.Errorf("advanced search: %w", err)
	}
	return docs, nil
}

func clampSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}
