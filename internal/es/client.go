// Package es wraps the Elasticsearch low-level client behind the small
// surface this service needs: index bootstrap, document writes, and query
// execution. Query bodies are built with the typed DSL in query.go and
// serialized once, at the client boundary.
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
)

var (
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable signals that the cluster could not be reached.
	ErrUnavailable = errors.New("elasticsearch unavailable")
)

// Config holds connection parameters for the cluster.
// Either Addresses or CloudID must be set; APIKey and Username/Password
// are alternative credential schemes.
type Config struct {
	Addresses []string
	CloudID   string
	APIKey    string
	Username  string
	Password  string
}

// Client is a thin wrapper over the official Elasticsearch client.
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client.
func NewClient(cfg Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		CloudID:   cfg.CloudID,
		APIKey:    cfg.APIKey,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Client{es: es}, nil
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping: %w: %s", ErrUnavailable, res.Status())
	}
	return nil
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// EnsureIndex creates an index with the given mapping if it does not exist.
// An index that already exists is left untouched.
func (c *Client) EnsureIndex(ctx context.Context, index string, mapping any) error {
	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists %s: %w: %w", index, ErrUnavailable, err)
	}
	drain(res.Body)
	if res.StatusCode == 200 {
		return nil
	}

	body, err := encodeBody(mapping)
	if err != nil {
		return fmt.Errorf("encode mapping %s: %w", index, err)
	}

	res, err = c.es.Indices.Create(index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(body),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w: %w", index, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, responseError(res.Body, res.Status()))
	}
	return nil
}

// Index writes a document. An empty id lets the cluster assign one.
// refresh is the Elasticsearch refresh policy ("", "true", "wait_for");
// "wait_for" makes the document visible to the next search.
func (c *Client) Index(ctx context.Context, index, id string, doc any, refresh string) (string, error) {
	body, err := encodeBody(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	res, err := c.es.Index(index, body,
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithRefresh(refresh),
	)
	if err != nil {
		return "", fmt.Errorf("index %s: %w: %w", index, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("index %s: %s", index, responseError(res.Body, res.Status()))
	}

	var out struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}
	return out.ID, nil
}

// Update applies a partial document update.
func (c *Client) Update(ctx context.Context, index, id string, partial any) error {
	body, err := encodeBody(map[string]any{"doc": partial})
	if err != nil {
		return fmt.Errorf("encode partial document: %w", err)
	}

	res, err := c.es.Update(index, id, body, c.es.Update.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w: %w", index, id, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return fmt.Errorf("update %s/%s: %w", index, id, ErrNotFound)
	}
	if res.IsError() {
		return fmt.Errorf("update %s/%s: %s", index, id, responseError(res.Body, res.Status()))
	}
	return nil
}

// Get reads a document source into out. Returns ErrNotFound for missing ids.
func (c *Client) Get(ctx context.Context, index, id string, out any) error {
	res, err := c.es.Get(index, id, c.es.Get.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("get %s/%s: %w: %w", index, id, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return fmt.Errorf("get %s/%s: %w", index, id, ErrNotFound)
	}
	if res.IsError() {
		return fmt.Errorf("get %s/%s: %s", index, id, responseError(res.Body, res.Status()))
	}

	var env struct {
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode get response: %w", err)
	}
	if err := json.Unmarshal(env.Source, out); err != nil {
		return fmt.Errorf("decode document source: %w", err)
	}
	return nil
}

// Hit is a single search hit. Score is zero when the query sorts by
// fields only and the cluster reports a null _score.
type Hit struct {
	ID     string
	Score  float64
	Source json.RawMessage
}

// SearchResponse holds the parsed hits of a search call.
type SearchResponse struct {
	Total int
	Hits  []Hit
}

// Search executes a search request against an index.
func (c *Client) Search(ctx context.Context, index string, req *SearchRequest) (*SearchResponse, error) {
	body, err := encodeBody(req.body())
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(body),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w: %w", index, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, responseError(res.Body, res.Status()))
	}

	var env struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string          `json:"_id"`
				Score  *float64        `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &SearchResponse{Total: env.Hits.Total.Value}
	for _, h := range env.Hits.Hits {
		hit := Hit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func encodeBody(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return &buf, nil
}

// responseError extracts the error reason from an error response body.
func responseError(body io.Reader, status string) string {
	var env struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&env); err == nil && env.Error.Reason != "" {
		return fmt.Sprintf("%s: %s: %s", status, env.Error.Type, env.Error.Reason)
	}
	return status
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
