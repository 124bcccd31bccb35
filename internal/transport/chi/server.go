// Package chi implements the HTTP API handlers mounted on the chi router.
package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/logger"
	searchuc "github.com/indexify/indexify/internal/usecase/search"
)

// Searcher is the search use case consumed by the handlers.
type Searcher interface {
	Search(ctx context.Context, query string, size int) ([]domain.SearchResult, error)
	Advanced(ctx context.Context, criteria domain.SearchCriteria, size int) ([]domain.Document, error)
}

// Suggester builds typeahead suggestions. It never fails.
type Suggester interface {
	Suggestions(ctx context.Context, query string, limit int) []domain.Suggestion
}

// Pinger checks search index connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP API handlers.
type Server struct {
	search  Searcher
	suggest Suggester
	health  Pinger
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, suggest Suggester, health Pinger, logger *zap.Logger) *Server {
	return &Server{search: search, suggest: suggest, health: health, logger: logger}
}

type searchRequest struct {
	Query string `json:"query"`
	Size  int    `json:"size"`
}

type advancedSearchRequest struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	DateFrom string   `json:"date_from"`
	DateTo   string   `json:"date_to"`
	Keywords []string `json:"keywords"`
	Content  string   `json:"content"`
	Size     int      `json:"size"`
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Size != 0 && (req.Size < searchuc.MinSize || req.Size > searchuc.MaxSize) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("size must be between %d and %d", searchuc.MinSize, searchuc.MaxSize))
		return
	}

	results, err := s.search.Search(r.Context(), req.Query, req.Size)
	if err != nil {
		logger.FromContext(r.Context()).Error("search failed",
			zap.String("query", req.Query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Suggestions handles GET /api/suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	suggestions := s.suggest.Suggestions(r.Context(), query, 0)
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// AdvancedSearch handles POST /api/advanced-search.
func (s *Server) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var req advancedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Size != 0 && (req.Size < searchuc.MinSize || req.Size > searchuc.MaxSize) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("size must be between %d and %d", searchuc.MinSize, searchuc.MaxSize))
		return
	}

	criteria := domain.SearchCriteria{
		Title:    req.Title,
		Author:   req.Author,
		Keywords: req.Keywords,
		Content:  req.Content,
	}

	var err error
	if criteria.DateFrom, err = parseDate(req.DateFrom); err != nil {
		writeError(w, http.StatusBadRequest, "date_from: "+err.Error())
		return
	}
	if criteria.DateTo, err = parseDate(req.DateTo); err != nil {
		writeError(w, http.StatusBadRequest, "date_to: "+err.Error())
		return
	}

	docs, err := s.search.Advanced(r.Context(), criteria, req.Size)
	if err != nil {
		logger.FromContext(r.Context()).Error("advanced search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": docs})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"detail": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
