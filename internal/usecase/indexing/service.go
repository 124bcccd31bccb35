// Package indexing converts raw external results into index-ready
// documents and writes them to the search index.
package indexing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/metrics"
)

// DefaultFetchCount is the number of raw results requested per backfill.
const DefaultFetchCount = 10

// ExternalAuthor marks documents sourced from the external fetcher.
const ExternalAuthor = "external-search"

// Service is the indexing pipeline.
type Service struct {
	docs    DocumentWriter
	fetcher Fetcher
	embed   domain.Embedder
	logger  *zap.Logger
}

// New creates an indexing service.
func New(docs DocumentWriter, fetcher Fetcher, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{docs: docs, fetcher: fetcher, embed: embed, logger: logger}
}

// IndexDocument prepares and writes one document. Keywords are derived
// from title + abstract when the caller supplied none, and the completion
// field is always re-synthesized from the final keyword set.
func (s *Service) IndexDocument(ctx context.Context, doc *domain.Document) error {
	if len(doc.Keywords) == 0 {
		doc.Keywords = ExtractKeywords(doc.Title + " " + doc.Abstract)
	}
	doc.TitleCompletion = &domain.Completion{
		Input:  completionInput(doc),
		Weight: 1,
	}

	if _, err := s.docs.Index(ctx, doc); err != nil {
		return fmt.Errorf("index document %q: %w", doc.Title, err)
	}
	return nil
}

// FetchAndIndex fetches raw results for a query and indexes each as a
// document, embedding title + snippet for the vector. Per-document
// failures (embedding or write) are logged and skipped; only successfully
// indexed documents are returned. A failed fetch returns the error so the
// caller can tell "nothing out there" from "fetcher down".
func (s *Service) FetchAndIndex(ctx context.Context, query string, count int) ([]domain.Document, error) {
	if count <= 0 {
		count = DefaultFetchCount
	}

	raw, err := s.fetcher.Fetch(ctx, query, count)
	if err != nil {
		return nil, fmt.Errorf("fetch external results: %w", err)
	}

	indexed := make([]domain.Document, 0, len(raw))
	for _, r := range raw {
		emb, err := s.embed.Embed(ctx, r.Title+" "+r.Snippet)
		if err != nil {
			s.logger.Warn("backfill embedding failed, skipping result",
				zap.String("title", r.Title), zap.Error(err))
			continue
		}

		doc := domain.Document{
			Title:    r.Title,
			Author:   ExternalAuthor,
			Abstract: r.Snippet,
			Content:  r.Link,
			Vector:   emb.Vector,
		}
		if err := s.IndexDocument(ctx, &doc); err != nil {
			s.logger.Warn("backfill indexing failed, skipping result",
				zap.String("title", r.Title), zap.Error(err))
			continue
		}
		indexed = append(indexed, doc)
		metrics.BackfillDocumentsTotal.Inc()
	}

	return indexed, nil
}

// ExtractKeywords derives up to MaxKeywords unique lowercase tokens longer
// than three characters from the text. Order is not guaranteed beyond
// first-seen within the token stream.
func ExtractKeywords(text string) []string {
	seen := make(map[string]bool)
	keywords := make([]string, 0, domain.MaxKeywords)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) < domain.MinKeywordLen || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == domain.MaxKeywords {
			break
		}
	}
	return keywords
}

// completionInput joins the title with the keyword set for typeahead.
func completionInput(doc *domain.Document) []string {
	input := make([]string, 0, len(doc.Keywords)+1)
	if doc.Title != "" {
		input = append(input, doc.Title)
	}
	for _, kw := range doc.Keywords {
		if kw != doc.Title {
			input = append(input, kw)
		}
	}
	return input
}
