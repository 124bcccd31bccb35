// Package document persists searchable documents and owns the query shapes
// sent to the index: the combined text+vector scoring query, the filtered
// advanced query, and the title phrase-prefix lookup behind suggestions.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/es"
)

// store is the consumer interface for document operations.
type store interface {
	Search(ctx context.Context, index string, req *es.SearchRequest) (*es.SearchResponse, error)
	Index(ctx context.Context, index, id string, doc any, refresh string) (string, error)
	EnsureIndex(ctx context.Context, index string, mapping any) error
}

// Repo implements document storage over the search index.
type Repo struct {
	store store
	index string
}

// New creates a document repository bound to an index name.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// EnsureIndex creates the documents index with the given vector width if absent.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDims int) error {
	if err := r.store.EnsureIndex(ctx, r.index, Mapping(vectorDims)); err != nil {
		return wrapIndexErr("ensure documents index", err)
	}
	return nil
}

// Index writes a document. Writes wait for a refresh so a backfilled
// document is visible to the retry query in the same request.
func (r *Repo) Index(ctx context.Context, doc *domain.Document) (string, error) {
	id, err := r.store.Index(ctx, r.index, "", doc, "wait_for")
	if err != nil {
		return "", wrapIndexErr("index document", err)
	}
	return id, nil
}

// Combined runs the text+vector scoring query: fuzzy text match over
// title/abstract/content (weighted 3/2/1) plus shifted cosine similarity
// and a flat keyword bonus.
func (r *Repo) Combined(
	ctx context.Context, text string, vector []float32, size int,
) ([]domain.SearchResult, error) {
	resp, err := r.store.Search(ctx, r.index, combinedRequest(text, vector, size))
	if err != nil {
		return nil, wrapIndexErr("combined search", err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc domain.Document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", hit.ID, err)
		}
		results = append(results, domain.SearchResult{
			ID:              hit.ID,
			Score:           hit.Score,
			Title:           doc.Title,
			Abstract:        doc.Abstract,
			Author:          doc.Author,
			PublicationDate: doc.PublicationDate,
			Keywords:        doc.Keywords,
			Content:         doc.Content,
		})
	}
	return results, nil
}

// Advanced runs the conjunctive filter query built from the supplied
// criteria only; empty criteria match every document.
func (r *Repo) Advanced(
	ctx context.Context, criteria domain.SearchCriteria, size int,
) ([]domain.Document, error) {
	resp, err := r.store.Search(ctx, r.index, advancedRequest(criteria, size))
	if err != nil {
		return nil, wrapIndexErr("advanced search", err)
	}

	docs := make([]domain.Document, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc domain.Document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", hit.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// MatchTitles returns titles of documents whose title or keywords match the
// query as a phrase prefix, title matches boosted.
func (r *Repo) MatchTitles(ctx context.Context, query string, limit int) ([]string, error) {
	resp, err := r.store.Search(ctx, r.index, titleMatchRequest(query, limit))
	if err != nil {
		return nil, wrapIndexErr("match titles", err)
	}

	titles := make([]string, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", hit.ID, err)
		}
		if doc.Title != "" {
			titles = append(titles, doc.Title)
		}
	}
	return titles, nil
}

func wrapIndexErr(op string, err error) error {
	if errors.Is(err, es.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrIndexUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
