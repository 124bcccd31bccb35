package suggest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/indexify/indexify/internal/domain"
)

// --- Mocks ---

type mockStatsReader struct {
	stats      []domain.SearchStat
	err        error
	lastPrefix string
}

func (m *mockStatsReader) ByPrefix(_ context.Context, prefix string, _ int) ([]domain.SearchStat, error) {
	m.lastPrefix = prefix
	return m.stats, m.err
}

type mockTitleReader struct {
	titles    []string
	err       error
	calls     int
	lastLimit int
}

func (m *mockTitleReader) MatchTitles(_ context.Context, _ string, limit int) ([]string, error) {
	m.calls++
	m.lastLimit = limit
	return m.titles, m.err
}

func stat(query string, count int, trending bool) domain.SearchStat {
	return domain.SearchStat{Query: query, Count: count, IsTrending: trending}
}

// --- Tests ---

func TestSuggestions_StatsRankFirst(t *testing.T) {
	stats := &mockStatsReader{stats: []domain.SearchStat{
		stat("golang tutorial", 12, true),
		stat("golang testing", 3, false),
	}}
	titles := &mockTitleReader{titles: []string{"Golang in Production"}}
	svc := New(stats, titles, zap.NewNop())

	got := svc.Suggestions(context.Background(), "golang", 5)

	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(got))
	}
	if got[0].Text != "golang tutorial" || got[0].Count != 12 || !got[0].Trending {
		t.Errorf("unexpected first suggestion: %+v", got[0])
	}
	if got[1].Text != "golang testing" {
		t.Errorf("expected stats before titles, got %+v", got[1])
	}
	if got[2].Text != "Golang in Production" || got[2].Count != 0 {
		t.Errorf("unexpected title suggestion: %+v", got[2])
	}
}

func TestSuggestions_PrefixNormalized(t *testing.T) {
	stats := &mockStatsReader{}
	svc := New(stats, &mockTitleReader{}, zap.NewNop())

	svc.Suggestions(context.Background(), "  GoLang ", 5)

	if stats.lastPrefix != "golang" {
		t.Errorf("expected normalized prefix 'golang', got %q", stats.lastPrefix)
	}
}

func TestSuggestions_DeduplicatesAcrossSources(t *testing.T) {
	stats := &mockStatsReader{stats: []domain.SearchStat{stat("rust", 4, false)}}
	titles := &mockTitleReader{titles: []string{"rust", "rust book"}}
	svc := New(stats, titles, zap.NewNop())

	got := svc.Suggestions(context.Background(), "rust", 5)

	if len(got) != 2 {
		t.Fatalf("expected 2 deduplicated suggestions, got %d: %+v", len(got), got)
	}
	if got[0].Text != "rust" || got[0].Count != 4 {
		t.Errorf("expected the stat entry to win, got %+v", got[0])
	}
	if got[1].Text != "rust book" {
		t.Errorf("unexpected second suggestion: %+v", got[1])
	}
}

func TestSuggestions_LimitEnforced(t *testing.T) {
	stats := &mockStatsReader{stats: []domain.SearchStat{
		stat("a", 5, false), stat("b", 4, false), stat("c", 3, false),
	}}
	titles := &mockTitleReader{titles: []string{"d", "e", "f"}}
	svc := New(stats, titles, zap.NewNop())

	got := svc.Suggestions(context.Background(), "x", 4)

	if len(got) != 4 {
		t.Fatalf("expected 4 suggestions, got %d", len(got))
	}
	if titles.lastLimit != 1 {
		t.Errorf("expected title lookup limited to the remainder (1), got %d", titles.lastLimit)
	}
}

func TestSuggestions_SkipsTitleLookupWhenStatsFill(t *testing.T) {
	stats := &mockStatsReader{stats: []domain.SearchStat{
		stat("a", 2, false), stat("b", 1, false),
	}}
	titles := &mockTitleReader{}
	svc := New(stats, titles, zap.NewNop())

	got := svc.Suggestions(context.Background(), "x", 2)

	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}
	if titles.calls != 0 {
		t.Errorf("expected no title lookup when stats fill the limit, got %d calls", titles.calls)
	}
}

func TestSuggestions_DefaultLimit(t *testing.T) {
	stats := &mockStatsReader{stats: []domain.SearchStat{
		stat("a", 9, false), stat("b", 8, false), stat("c", 7, false),
		stat("d", 6, false), stat("e", 5, false), stat("f", 4, false),
	}}
	svc := New(stats, &mockTitleReader{}, zap.NewNop())

	got := svc.Suggestions(context.Background(), "x", 0)

	if len(got) != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, len(got))
	}
}

func TestSuggestions_WithMaxSuggestions(t *testing.T) {
	stats := &mockStatsReader{stats: []domain.SearchStat{
		stat("a", 3, false), stat("b", 2, false), stat("c", 1, false),
	}}
	svc := New(stats, &mockTitleReader{}, zap.NewNop()).WithMaxSuggestions(2)

	got := svc.Suggestions(context.Background(), "x", 0)

	if len(got) != 2 {
		t.Errorf("expected configured limit 2, got %d", len(got))
	}
}

func TestSuggestions_StatsFailureFallsBackToTitles(t *testing.T) {
	stats := &mockStatsReader{err: errors.New("stats index down")}
	titles := &mockTitleReader{titles: []string{"Go Patterns"}}
	svc := New(stats, titles, zap.NewNop())

	got := svc.Suggestions(context.Background(), "go", 5)

	if len(got) != 1 || got[0].Text != "Go Patterns" {
		t.Errorf("expected title-only suggestions, got %+v", got)
	}
}

func TestSuggestions_BothSourcesFailingYieldsEmpty(t *testing.T) {
	stats := &mockStatsReader{err: errors.New("down")}
	titles := &mockTitleReader{err: errors.New("down")}
	svc := New(stats, titles, zap.NewNop())

	got := svc.Suggestions(context.Background(), "go", 5)

	if len(got) != 0 {
		t.Errorf("expected empty suggestions, got %+v", got)
	}
}
