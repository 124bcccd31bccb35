// Package stats tracks query frequency and recency per normalized query.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/indexify/indexify/internal/domain"
)

// Service records search statistics.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a stats service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record increments the counter for a query's normalized key, creating the
// stat on first sight. The trending flag is lagging: it reflects the count
// BEFORE this increment crossing the threshold, so the sixth search of a
// query is the first one marked trending.
//
// Callers treat this as best-effort telemetry; the returned error is for
// logging, never for failing a search.
func (s *Service) Record(ctx context.Context, query string) error {
	key := domain.StatKey(query)
	if key == "" {
		return nil
	}

	stat, err := s.repo.Get(ctx, key)
	if errors.Is(err, domain.ErrStatNotFound) {
		fresh := domain.SearchStat{
			Query:        key,
			Count:        1,
			LastSearched: s.now(),
			IsTrending:   false,
		}
		if err := s.repo.Create(ctx, fresh); err != nil {
			return fmt.Errorf("create stat: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read stat: %w", err)
	}

	updated := domain.SearchStat{
		Query:        key,
		Count:        stat.Count + 1,
		LastSearched: s.now(),
		IsTrending:   stat.Count > domain.TrendingThreshold,
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return fmt.Errorf("update stat: %w", err)
	}
	return nil
}
