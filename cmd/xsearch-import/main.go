// xsearch-import loads a JSON array of posts into the corpus, generating AI
// metadata and embeddings the same way POST /posts does. Posts already in
// the corpus are skipped.
//
// Usage:
//
//	xsearch-import -file data/sample_posts.json -workers 4
//
// Configuration (database path, API keys, cache) comes from the same
// config/<ENV>.yaml as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/app"
	"github.com/derekjytan/xai/internal/config"
	"github.com/derekjytan/xai/internal/db/sqlite"
	logpkg "github.com/derekjytan/xai/internal/logger"
	"github.com/derekjytan/xai/internal/repository/corpus"
	ingestuc "github.com/derekjytan/xai/internal/usecase/ingest"
)

type options struct {
	file    string
	workers int
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.file, "file", "data/sample_posts.json", "JSON array of posts to import")
	flag.IntVar(&o.workers, "workers", ingestuc.DefaultConcurrency, "parallel metadata requests")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("Import failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) error {
	start := time.Now()

	f, err := os.Open(filepath.Clean(opts.file))
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	posts, err := readRecords(f)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	cache, err := app.OpenCache(ctx, cfg.Cache, time.Duration(cfg.Database.ReadinessTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("open embedding cache: %w", err)
	}
	defer cache.Close()

	svc := ingestuc.New(
		corpus.New(store.DB()),
		app.BuildIntelligence(cfg.Intelligence, logger),
		app.BuildIngestEmbedder(cfg.Embedding, cache, cfg.Cache.TTL(), logger),
		logger,
	).WithConcurrency(opts.workers)

	logger.Info("Importing posts", zap.String("file", opts.file), zap.Int("posts", len(posts)))
	rep, err := svc.Import(ctx, posts)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	logger.Info("Import complete",
		zap.Int("inserted", rep.Inserted),
		zap.Int("duplicates", rep.Duplicates),
		zap.Int("invalid", rep.Invalid),
		zap.Int("embedded", rep.Embedded),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
