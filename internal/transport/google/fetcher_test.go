package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/indexify/indexify/internal/domain"
)

func newTestFetcher(serverURL string) *Fetcher {
	return NewFetcher(Config{
		APIKey:          "test-key",
		EngineID:        "test-engine",
		BaseURL:         serverURL,
		RateLimitPerSec: 1000, // keep tests fast
	})
}

func TestFetch_ParsesItems(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"title": "Go Patterns", "snippet": "about go", "link": "https://example.com/1"},
				{"title": "Go Proverbs", "snippet": "more go", "link": "https://example.com/2"}
			]
		}`))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	results, err := f.Fetch(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Go Patterns" || results[0].Snippet != "about go" || results[0].Link != "https://example.com/1" {
		t.Errorf("unexpected first result: %+v", results[0])
	}

	if gotQuery.Get("q") != "golang" {
		t.Errorf("expected q=golang, got %q", gotQuery.Get("q"))
	}
	if gotQuery.Get("key") != "test-key" || gotQuery.Get("cx") != "test-engine" {
		t.Errorf("expected credentials in query, got %v", gotQuery)
	}
	if gotQuery.Get("num") != "5" {
		t.Errorf("expected num=5, got %q", gotQuery.Get("num"))
	}
}

func TestFetch_ClampsCount(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want string
	}{
		{"zero", 0, "10"},
		{"negative", -1, "10"},
		{"above cap", 50, "10"},
		{"in range", 3, "3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotNum string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotNum = r.URL.Query().Get("num")
				_, _ = w.Write([]byte(`{"items": []}`))
			}))
			defer srv.Close()

			f := newTestFetcher(srv.URL)
			if _, err := f.Fetch(context.Background(), "golang", tc.in); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotNum != tc.want {
				t.Errorf("expected num=%s, got %q", tc.want, gotNum)
			}
		})
	}
}

func TestFetch_NoItemsYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`)) // the API omits "items" when nothing matched
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	results, err := f.Fetch(context.Background(), "no matches anywhere", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %+v", results)
	}
}

func TestFetch_ErrorStatusWrapsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	_, err := f.Fetch(context.Background(), "golang", 10)
	if !errors.Is(err, domain.ErrFetcherUnavailable) {
		t.Fatalf("expected ErrFetcherUnavailable, got %v", err)
	}
}

func TestFetch_ConnectionFailureWrapsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	f := newTestFetcher(srv.URL)
	_, err := f.Fetch(context.Background(), "golang", 10)
	if !errors.Is(err, domain.ErrFetcherUnavailable) {
		t.Fatalf("expected ErrFetcherUnavailable, got %v", err)
	}
}
