package domain

import "errors"

var (
	// ErrInvalidQuery signals a request rejected at the API boundary.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrIndexUnavailable signals that the search index could not be reached.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrStatNotFound signals a missing search stat entry.
	ErrStatNotFound = errors.New("search stat not found")
	// ErrFetcherUnavailable signals an external result fetcher failure.
	ErrFetcherUnavailable = errors.New("external fetcher unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
