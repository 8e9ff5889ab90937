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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/catalog"
	"github.com/kailas-cloud/mattdex/internal/config"
	dbRedis "github.com/kailas-cloud/mattdex/internal/db/redis"
	"github.com/kailas-cloud/mattdex/internal/domain"
	"github.com/kailas-cloud/mattdex/internal/enrich"
	logpkg "github.com/kailas-cloud/mattdex/internal/logger"
	"github.com/kailas-cloud/mattdex/internal/metrics"
	"github.com/kailas-cloud/mattdex/internal/relevance"
	"github.com/kailas-cloud/mattdex/internal/repository/embcache"
	"github.com/kailas-cloud/mattdex/internal/repository/synonyms"
	"github.com/kailas-cloud/mattdex/internal/repository/vectorstore"
	chiTransport "github.com/kailas-cloud/mattdex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/mattdex/internal/transport/openai"
	advisoruc "github.com/kailas-cloud/mattdex/internal/usecase/advisor"
	indexuc "github.com/kailas-cloud/mattdex/internal/usecase/index"
	searchuc "github.com/kailas-cloud/mattdex/internal/usecase/search"
	"github.com/kailas-cloud/mattdex/internal/version"
)

func main() {
	// .env is optional; real environments set variables directly.
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

	logger.Info("Starting mattdex API server",
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

	metrics.Register()

	// Probe the candidate embedding models; the winner fixes the collection
	// dimensionality.
	embedder, dims, err := openaiTransport.ProbeEmbedder(ctx, &openaiTransport.EmbedderConfig{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Provider: "openai",
		Logger:   logger,
	}, cfg.Embedding.Models)
	if err != nil {
		logger.Fatal("No usable embedding model", zap.Error(err))
	}

	// The language collaborator is optional; without it the service degrades
	// to keyword-only enrichment and templated answers.
	var llm *openaiTransport.LLM
	if cfg.LLM.APIKey != "" {
		llm = openaiTransport.NewLLM(&openaiTransport.LLMConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Logger:  logger,
		})
		logger.Info("Language collaborator enabled", zap.String("model", cfg.LLM.Model))
	} else {
		logger.Warn("Language collaborator disabled, running with degraded enrichment")
	}

	// Enrichment pipeline: synonym cache -> enrichment service -> embedding cache.
	var synonymProvider enrich.SynonymProvider
	var expander enrich.QueryExpander
	if llm != nil {
		synonymProvider = synonyms.NewCachedProvider(llm, store, logger)
		expander = llm
	}
	// Cosine distances in the index assume unit-length vectors.
	normEmbedder := domain.NewNormalizedEmbedder(embedder)

	enrichSvc := enrich.NewService(normEmbedder, synonymProvider, expander, logger)
	vectorizer := embcache.NewCachedVectorizer(
		enrichSvc, store, time.Duration(cfg.Embedding.CacheTTLSec)*time.Second, logger,
	)

	// Load and index the catalog before serving.
	records, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	stats := catalog.ComputeStats(records)
	logger.Info("Catalog loaded",
		zap.Int("records", stats.Total),
		zap.Strings("brands", stats.BrandNames),
	)

	repo := vectorstore.New(store, cfg.Search.Collection, dims, logger)
	indexSvc := indexuc.NewService(normEmbedder, repo, logger)
	if err := indexSvc.Run(ctx, records, cfg.Catalog.ResetOnStart); err != nil {
		logger.Fatal("Failed to index catalog", zap.Error(err))
	}

	searchSvc := searchuc.NewService(vectorizer, repo, cfg.Search.DefaultK, cfg.Search.MaxK, logger)

	var judge relevance.Judge
	var composer advisoruc.Composer
	if llm != nil {
		judge = llm
		composer = llm
	}
	gate := relevance.NewGate(judge, logger)
	advisorSvc := advisoruc.NewService(gate, searchSvc, composer, logger)

	server := chiTransport.NewServer(chiTransport.ServerConfig{
		Advisor:    advisorSvc,
		Search:     searchSvc,
		Collection: repo,
		Stats:      stats,
		Model:      embedder.Model(),
		LLMEnabled: llm != nil,
		Version:    version.String(),
		APIKeys:    cfg.Auth.APIKeys,
		Logger:     logger,
		Checks: []chiTransport.HealthCheck{
			{Name: "database", Check: store.Ping},
			{Name: "embedding", Check: embedder.HealthCheck},
		},
	})

	handler := jsonRecoverer(logger)(server.Router())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain
// text stacktrace.
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
