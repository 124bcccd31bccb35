// Package stats persists per-query search statistics, keyed by the
// normalized query text.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/es"
)

// store is the consumer interface for stat operations.
type store interface {
	Search(ctx context.Context, index string, req *es.SearchRequest) (*es.SearchResponse, error)
	Index(ctx context.Context, index, id string, doc any, refresh string) (string, error)
	Update(ctx context.Context, index, id string, partial any) error
	Get(ctx context.Context, index, id string, out any) error
	EnsureIndex(ctx context.Context, index string, mapping any) error
}

// Repo implements search stat storage over the stats index.
type Repo struct {
	store store
	index string
}

// New creates a stats repository bound to an index name.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// EnsureIndex creates the stats index if absent.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	if err := r.store.EnsureIndex(ctx, r.index, Mapping()); err != nil {
		return wrapIndexErr("ensure stats index", err)
	}
	return nil
}

// Get reads the stat stored under a normalized query key.
// Returns domain.ErrStatNotFound for first-seen queries.
func (r *Repo) Get(ctx context.Context, key string) (domain.SearchStat, error) {
	var stat domain.SearchStat
	if err := r.store.Get(ctx, r.index, key, &stat); err != nil {
		if errors.Is(err, es.ErrNotFound) {
			return domain.SearchStat{}, fmt.Errorf("stat %q: %w", key, domain.ErrStatNotFound)
		}
		return domain.SearchStat{}, wrapIndexErr("get stat", err)
	}
	return stat, nil
}

// Create writes a fresh stat under its query key.
func (r *Repo) Create(ctx context.Context, stat domain.SearchStat) error {
	if _, err := r.store.Index(ctx, r.index, stat.Query, stat, ""); err != nil {
		return wrapIndexErr("create stat", err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing stat.
func (r *Repo) Update(ctx context.Context, stat domain.SearchStat) error {
	partial := map[string]any{
		"count":         stat.Count,
		"last_searched": stat.LastSearched,
		"is_trending":   stat.IsTrending,
	}
	if err := r.store.Update(ctx, r.index, stat.Query, partial); err != nil {
		return wrapIndexErr("update stat", err)
	}
	return nil
}

// ByPrefix returns stats whose key starts with prefix, most searched first.
func (r *Repo) ByPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchStat, error) {
	req := &es.SearchRequest{
		Query: es.PrefixQuery{Field: "query", Value: prefix},
		Size:  limit,
		Sort: []es.Sort{
			{Field: "count", Desc: true},
		},
	}

	resp, err := r.store.Search(ctx, r.index, req)
	if err != nil {
		return nil, wrapIndexErr("stats by prefix", err)
	}

	stats := make([]domain.SearchStat, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var stat domain.SearchStat
		if err := json.Unmarshal(hit.Source, &stat); err != nil {
			return nil, fmt.Errorf("decode stat %s: %w", hit.ID, err)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

func wrapIndexErr(op string, err error) error {
	if errors.Is(err, es.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrIndexUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
