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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jobgenie/jobgenie/internal/config"
	dbRedis "github.com/jobgenie/jobgenie/internal/db/redis"
	"github.com/jobgenie/jobgenie/internal/domain"
	"github.com/jobgenie/jobgenie/internal/extract"
	logpkg "github.com/jobgenie/jobgenie/internal/logger"
	"github.com/jobgenie/jobgenie/internal/metrics"
	"github.com/jobgenie/jobgenie/internal/repository/embcache"
	historyrepo "github.com/jobgenie/jobgenie/internal/repository/history"
	"github.com/jobgenie/jobgenie/internal/transport/adzuna"
	chiTransport "github.com/jobgenie/jobgenie/internal/transport/chi"
	openaiProvider "github.com/jobgenie/jobgenie/internal/transport/openai"
	analysisuc "github.com/jobgenie/jobgenie/internal/usecase/analysis"
	cataloguc "github.com/jobgenie/jobgenie/internal/usecase/catalog"
	embeddinguc "github.com/jobgenie/jobgenie/internal/usecase/embedding"
	"github.com/jobgenie/jobgenie/internal/usecase/jobdesc"
	matchuc "github.com/jobgenie/jobgenie/internal/usecase/match"
	"github.com/jobgenie/jobgenie/internal/version"
)

func main() {
	// Local development convenience; in deployment env vars come from the
	// environment itself.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting jobgenie API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	embedder, embedHealth := buildEmbedder(&cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.OpenAI.EmbeddingModel),
		zap.Int("dimensions", cfg.OpenAI.Dimensions),
	)

	completer := openaiProvider.NewCompleter(&openaiProvider.CompleterConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.CompletionModel,
		Logger:  logger,
	})

	// The job-listing client is optional; without credentials fetch mode
	// degrades to the static fallback description.
	var fetcher jobdesc.Fetcher
	if cfg.HasAdzuna() {
		fetcher = adzuna.New(&adzuna.Config{
			BaseURL: cfg.Adzuna.BaseURL,
			Country: cfg.Adzuna.Country,
			AppID:   cfg.Adzuna.AppID,
			AppKey:  cfg.Adzuna.AppKey,
			Logger:  logger,
		})
	} else {
		logger.Warn("Job listing credentials not configured, fetch mode will use the fallback description")
	}

	descs := jobdesc.New(fetcher, completer, logger)
	history := historyrepo.New(store)

	matcher := matchuc.New(
		embedder, descs, history, extract.Text,
		cfg.Match.DefaultQuery, cfg.Match.DefaultLocation,
		logger,
	)

	catalogSvc := cataloguc.New(embedder, catalogPostings(cfg.Catalog), logger)
	if err := catalogSvc.Warmup(ctx); err != nil {
		logger.Fatal("Failed to warm up job catalog", zap.Error(err))
	}

	analysisSvc := analysisuc.New(completer)

	server := chiTransport.NewServer(matcher, catalogSvc, analysisSvc, history, store, embedHealth, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Resilient.
// The base provider doubles as the health checker for /healthz.
func buildEmbedder(cfg *config.Config, store *dbRedis.Store, logger *zap.Logger) (domain.Embedder, domain.HealthChecker) {
	base := openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
		Logger:     logger,
	})

	cached := embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)

	resilient := embeddinguc.NewResilientEmbedder(
		cached, "openai", cfg.OpenAI.EmbeddingModel,
		cfg.Match.RetryAttempts,
		time.Duration(cfg.Match.RetryBackoffMS)*time.Millisecond,
		time.Duration(cfg.Match.CallTimeoutSec)*time.Second,
		logger,
	)
	return resilient, base
}

func catalogPostings(jobs []config.CatalogJob) []domain.JobPosting {
	postings := make([]domain.JobPosting, len(jobs))
	for i, j := range jobs {
		postings[i] = domain.JobPosting{
			ID:          j.ID,
			Title:       j.Title,
			Description: j.Description,
			Location:    j.Location,
		}
	}
	return postings
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
						"code":    "internal_error",
						"message": "internal error",
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
