// Package google fetches raw web results from the Custom Search JSON API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/indexify/indexify/internal/domain"
)

// MaxResultsPerQuery is the API's per-page result cap.
const MaxResultsPerQuery = 10

// Config holds the Custom Search API settings.
type Config struct {
	APIKey          string
	EngineID        string
	BaseURL         string
	Timeout         time.Duration
	RateLimitPerSec float64
	Logger          *zap.Logger
}

// Fetcher calls the Custom Search JSON API with client-side rate limiting.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	engineID   string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewFetcher creates a Custom Search fetcher.
func NewFetcher(cfg Config) *Fetcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	qps := cfg.RateLimitPerSec
	if qps <= 0 {
		qps = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		limiter:    rate.NewLimiter(rate.Limit(qps), 1),
		logger:     logger,
	}
}

// Fetch returns up to count raw results for a query. count is clamped to
// the API's page cap. Failures wrap domain.ErrFetcherUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, query string, count int) ([]domain.RawResult, error) {
	if count <= 0 || count > MaxResultsPerQuery {
		count = MaxResultsPerQuery
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", f.apiKey)
	params.Set("cx", f.engineID)
	params.Set("num", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("custom search request: %w: %w", domain.ErrFetcherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("custom search status %d: %s: %w",
			resp.StatusCode, string(body), domain.ErrFetcherUnavailable)
	}

	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode custom search response: %w: %w", domain.ErrFetcherUnavailable, err)
	}

	results := make([]domain.RawResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, domain.RawResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}

	f.logger.Debug("custom search fetched",
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("latency", time.Since(start)),
	)
	return results, nil
}
