package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/app"
	"github.com/derekjytan/xai/internal/config"
	"github.com/derekjytan/xai/internal/db/sqlite"
	logpkg "github.com/derekjytan/xai/internal/logger"
	"github.com/derekjytan/xai/internal/metrics"
	"github.com/derekjytan/xai/internal/repository/corpus"
	searchlogrepo "github.com/derekjytan/xai/internal/repository/searchlog"
	chiTransport "github.com/derekjytan/xai/internal/transport/chi"
	"github.com/derekjytan/xai/internal/usecase/catalog"
	healthuc "github.com/derekjytan/xai/internal/usecase/health"
	ingestuc "github.com/derekjytan/xai/internal/usecase/ingest"
	searchuc "github.com/derekjytan/xai/internal/usecase/search"
	"github.com/derekjytan/xai/internal/version"
)

func main() {
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

	logger.Info("Starting xsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	ctx := context.Background()
	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Opened corpus database")

	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	cache, err := app.OpenCache(ctx, cfg.Cache, time.Duration(cfg.Database.ReadinessTimeout)*time.Second)
	if err != nil {
		logger.Fatal("Failed to open embedding cache", zap.Error(err))
	}
	defer cache.Close()
	logger.Info("Embedding cache ready", zap.String("driver", cache.Driver()))

	embedder := app.BuildEmbedder(cfg.Embedding, cache, cfg.Cache.TTL(), logger)
	llm := app.BuildIntelligence(cfg.Intelligence, logger)

	posts := corpus.New(store.DB())
	history := searchlogrepo.New(store.DB())

	searchSvc := searchuc.New(posts, history, embedder, searchuc.Collaborators{
		Enhancer:   llm,
		Summarizer: llm,
		Answerer:   llm,
	}, logger)
	catalogSvc := catalog.New(posts, history)
	ingestEmbedder := app.BuildIngestEmbedder(cfg.Embedding, cache, cfg.Cache.TTL(), logger)
	ingestSvc := ingestuc.New(posts, llm, ingestEmbedder, logger)

	healthSvc := healthuc.New(store, cache.Pinger(), app.NewEmbeddingHealth(embedder), logger)

	server := chiTransport.NewServer(searchSvc, catalogSvc, ingestSvc, healthSvc, cfg.Search.DefaultLimit, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(cfg.Auth.APIKeys),
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
