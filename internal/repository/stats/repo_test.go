package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/es"
)

// --- Mocks ---

type mockStore struct {
	searchResp  *es.SearchResponse
	searchErr   error
	lastReq     *es.SearchRequest
	getSource   string
	getErr      error
	lastID      string
	indexedDoc  any
	indexErr    error
	lastRefresh string
	updated     any
	updateErr   error
	ensureErr   error
}

func (m *mockStore) Search(_ context.Context, _ string, req *es.SearchRequest) (*es.SearchResponse, error) {
	m.lastReq = req
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchResp == nil {
		return &es.SearchResponse{}, nil
	}
	return m.searchResp, nil
}

func (m *mockStore) Index(_ context.Context, _, id string, doc any, refresh string) (string, error) {
	m.lastID = id
	m.indexedDoc = doc
	m.lastRefresh = refresh
	return id, m.indexErr
}

func (m *mockStore) Update(_ context.Context, _, id string, partial any) error {
	m.lastID = id
	m.updated = partial
	return m.updateErr
}

func (m *mockStore) Get(_ context.Context, _, id string, out any) error {
	m.lastID = id
	if m.getErr != nil {
		return m.getErr
	}
	return json.Unmarshal([]byte(m.getSource), out)
}

func (m *mockStore) EnsureIndex(_ context.Context, _ string, _ any) error {
	return m.ensureErr
}

// --- Tests ---

func TestGet_ReturnsStat(t *testing.T) {
	store := &mockStore{getSource: `{"query":"golang","count":7,"is_trending":true}`}
	repo := New(store, "search_stats")

	stat, err := repo.Get(context.Background(), "golang")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stat.Query != "golang" || stat.Count != 7 || !stat.IsTrending {
		t.Errorf("unexpected stat: %+v", stat)
	}
	if store.lastID != "golang" {
		t.Errorf("expected lookup by key, got id %q", store.lastID)
	}
}

func TestGet_MissingMapsToNotFound(t *testing.T) {
	store := &mockStore{getErr: fmt.Errorf("get: %w", es.ErrNotFound)}
	repo := New(store, "search_stats")

	_, err := repo.Get(context.Background(), "unseen")
	if !errors.Is(err, domain.ErrStatNotFound) {
		t.Fatalf("expected ErrStatNotFound, got %v", err)
	}
}

func TestGet_UnavailableMapsToDomainError(t *testing.T) {
	store := &mockStore{getErr: fmt.Errorf("get: %w: refused", es.ErrUnavailable)}
	repo := New(store, "search_stats")

	_, err := repo.Get(context.Background(), "golang")
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestCreate_UsesQueryAsID(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "search_stats")

	stat := domain.SearchStat{Query: "golang", Count: 1, LastSearched: time.Now()}
	if err := repo.Create(context.Background(), stat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastID != "golang" {
		t.Errorf("expected stat keyed by query, got id %q", store.lastID)
	}
}

func TestUpdate_SendsMutableFieldsOnly(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "search_stats")

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stat := domain.SearchStat{Query: "golang", Count: 6, LastSearched: now, IsTrending: true}
	if err := repo.Update(context.Background(), stat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	partial, ok := store.updated.(map[string]any)
	if !ok {
		t.Fatalf("expected partial map, got %T", store.updated)
	}
	if partial["count"] != 6 || partial["is_trending"] != true {
		t.Errorf("unexpected partial: %+v", partial)
	}
	if _, hasQuery := partial["query"]; hasQuery {
		t.Error("key field must not be part of the partial update")
	}
}

func TestByPrefix_RequestShapeAndParsing(t *testing.T) {
	store := &mockStore{searchResp: &es.SearchResponse{
		Total: 2,
		Hits: []es.Hit{
			{ID: "golang tutorial", Source: json.RawMessage(`{"query":"golang tutorial","count":12,"is_trending":true}`)},
			{ID: "golang testing", Source: json.RawMessage(`{"query":"golang testing","count":3}`)},
		},
	}}
	repo := New(store, "search_stats")

	stats, err := repo.ByPrefix(context.Background(), "gol", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 2 || stats[0].Count != 12 || stats[1].Query != "golang testing" {
		t.Errorf("unexpected stats: %+v", stats)
	}

	body, err := json.Marshal(store.lastReq.Body())
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	want := `{"query":{"prefix":{"query":{"value":"gol"}}},"size":5,"sort":[{"count":{"order":"desc"}}]}`
	if string(body) != want {
		t.Errorf("unexpected request body:\ngot:  %s\nwant: %s", body, want)
	}
}
