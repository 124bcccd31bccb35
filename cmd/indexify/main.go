package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/indexify/indexify/internal/cache"
	"github.com/indexify/indexify/internal/config"
	"github.com/indexify/indexify/internal/domain"
	"github.com/indexify/indexify/internal/es"
	logpkg "github.com/indexify/indexify/internal/logger"
	"github.com/indexify/indexify/internal/metrics"
	documentrepo "github.com/indexify/indexify/internal/repository/document"
	"github.com/indexify/indexify/internal/repository/embcache"
	statsrepo "github.com/indexify/indexify/internal/repository/stats"
	chiTransport "github.com/indexify/indexify/internal/transport/chi"
	"github.com/indexify/indexify/internal/transport/google"
	openaiEmb "github.com/indexify/indexify/internal/transport/openai"
	indexinguc "github.com/indexify/indexify/internal/usecase/indexing"
	searchuc "github.com/indexify/indexify/internal/usecase/search"
	statsuc "github.com/indexify/indexify/internal/usecase/stats"
	suggestuc "github.com/indexify/indexify/internal/usecase/suggest"
	"github.com/indexify/indexify/internal/version"
)

func main() {
	// .env first, so ${VAR} expansion in the YAML config sees it
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting indexify API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index", cfg.Elasticsearch.Index),
		zap.Int("vector_dims", cfg.Elasticsearch.VectorDims),
	)

	esClient, err := es.NewClient(es.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		CloudID:   cfg.Elasticsearch.CloudID,
		APIKey:    cfg.Elasticsearch.APIKey,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	ctx := context.Background()
	readiness := time.Duration(cfg.Elasticsearch.ReadinessTimeout) * time.Second
	if err := esClient.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Elasticsearch not ready", zap.Error(err))
	}
	logger.Info("Connected to elasticsearch")

	// Register search/embedding metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()

	// Repositories own the index schemas; bootstrap both indices.
	docRepo := documentrepo.New(esClient, cfg.Elasticsearch.Index)
	statRepo := statsrepo.New(esClient, cfg.Elasticsearch.StatsIndex)

	if err := docRepo.EnsureIndex(ctx, cfg.Elasticsearch.VectorDims); err != nil {
		logger.Fatal("Failed to ensure documents index", zap.Error(err))
	}
	if err := statRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure stats index", zap.Error(err))
	}

	embedder, cacheStore := buildEmbedder(cfg, logger)
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	fetcher := google.NewFetcher(google.Config{
		APIKey:          cfg.Google.APIKey,
		EngineID:        cfg.Google.EngineID,
		BaseURL:         cfg.Google.BaseURL,
		Timeout:         time.Duration(cfg.Google.TimeoutSec) * time.Second,
		RateLimitPerSec: cfg.Google.RateLimitPerSec,
		Logger:          logger,
	})

	// Use case services
	statsSvc := statsuc.New(statRepo)
	suggestSvc := suggestuc.New(statRepo, docRepo, logger).
		WithMaxSuggestions(cfg.Suggest.MaxSuggestions)
	indexingSvc := indexinguc.New(docRepo, fetcher, embedder, logger)
	searchSvc := searchuc.New(docRepo, statsSvc, indexingSvc, embedder, logger).
		WithBackfillCount(cfg.Google.ResultsPerQuery)

	server := chiTransport.NewServer(searchSvc, suggestSvc, esClient, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(metrics.Middleware())

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", server.Search)
		r.Get("/suggestions", server.Suggestions)
		r.Post("/advanced-search", server.AdvancedSearch)
	})
	r.Get("/healthz", server.Health)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the provider chain: (random | openai) -> cached.
// The cache layer is present only when a Redis address is configured.
func buildEmbedder(cfg config.Config, logger *zap.Logger) (domain.Embedder, *cache.Store) {
	var embedder domain.Embedder

	switch cfg.Embedding.Provider {
	case "openai":
		embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Elasticsearch.VectorDims,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
	default:
		embedder = domain.NewRandomEmbedder(cfg.Elasticsearch.VectorDims)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Elasticsearch.VectorDims),
	)

	if len(cfg.Cache.Addrs) == 0 {
		return embedder, nil
	}

	cacheStore, err := cache.NewStore(cache.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Warn("Embedding cache disabled: failed to create store", zap.Error(err))
		return embedder, nil
	}

	logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	return embcache.New(embedder, cacheStore, metrics.EmbeddingCacheTotal, logger), cacheStore
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"detail": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
