// Package app assembles the collaborator chains shared by the server and the
// importer: the embedding cache, the embedder decorator chain and the
// retrying language-model client.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/config"
	dbRedis "github.com/derekjytan/xai/internal/db/redis"
	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/metrics"
	"github.com/derekjytan/xai/internal/repository/embcache"
	"github.com/derekjytan/xai/internal/retry"
	openaiTransport "github.com/derekjytan/xai/internal/transport/openai"
	embeddinguc "github.com/derekjytan/xai/internal/usecase/embedding"
	healthuc "github.com/derekjytan/xai/internal/usecase/health"
	"github.com/derekjytan/xai/internal/usecase/intelligence"
)

// Provider labels for embedding metrics and logs.
const (
	ProviderXAI   = "xai"
	ProviderLocal = "local"
)

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is the embedding cache selected by configuration. A nil store means
// caching is off.
type Cache struct {
	store  kvStore
	redis  *dbRedis.Store
	driver string
}

// OpenCache opens the configured cache backend. For redis it waits up to
// readiness for the server to answer.
func OpenCache(ctx context.Context, cfg config.CacheConfig, readiness time.Duration) (*Cache, error) {
	switch cfg.Driver {
	case config.CacheNone:
		return &Cache{driver: cfg.Driver}, nil
	case config.CacheMemory, "":
		return &Cache{store: embcache.NewMemoryStore(cfg.MemorySize), driver: config.CacheMemory}, nil
	case config.CacheRedis:
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if err := rs.WaitForReady(ctx, readiness); err != nil {
			rs.Close()
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return &Cache{store: rs, redis: rs, driver: cfg.Driver}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Enabled reports whether embeddings are cached.
func (c *Cache) Enabled() bool { return c.store != nil }

// Driver names the backend.
func (c *Cache) Driver() string { return c.driver }

// Pinger returns the health check of a networked cache, or nil.
func (c *Cache) Pinger() healthuc.Pinger {
	if c.redis == nil {
		return nil
	}
	return c.redis
}

// Close releases the backend connection.
func (c *Cache) Close() {
	if c.redis != nil {
		c.redis.Close()
	}
}

// BuildEmbedder assembles the decorator chain:
// OpenAI -> Retrying -> Cached -> Fallback(hash) -> Instrumented.
// With no API key the hash embedder is used alone. Hash vectors are never
// cached, so the cache only ever holds provider vectors.
func BuildEmbedder(cfg config.EmbeddingConfig, cache *Cache, ttl time.Duration, logger *zap.Logger) domain.Embedder {
	local := embeddinguc.NewHashEmbedder(cfg.LocalDimension)
	if cfg.APIKey == "" {
		logger.Warn("No embedding API key, using local hash embeddings",
			zap.Int("dimensions", local.Dimensions()))
		return embeddinguc.NewInstrumentedEmbedder(local, ProviderLocal, "hash", logger)
	}

	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   ProviderXAI,
		Logger:     logger,
	})
	embedder = embeddinguc.NewRetryingEmbedder(embedder, cfg.Retry.Policy(retry.EmbeddingDefaults()), logger)

	if cache != nil && cache.Enabled() {
		embedder = embcache.New(embedder, cache.store, cfg.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}
	if cfg.LocalFallback {
		embedder = embeddinguc.NewFallbackEmbedder(embedder, local, logger)
	}

	logger.Info("Embedder created",
		zap.String("provider", ProviderXAI),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
		zap.Bool("local_fallback", cfg.LocalFallback),
	)
	return embeddinguc.NewInstrumentedEmbedder(embedder, ProviderXAI, cfg.Model, logger)
}

// BuildIngestEmbedder is BuildEmbedder without the hash fallback when a
// provider is configured. A provider failure then stores the post without a
// vector instead of one whose dimensionality differs from the corpus.
func BuildIngestEmbedder(cfg config.EmbeddingConfig, cache *Cache, ttl time.Duration, logger *zap.Logger) domain.Embedder {
	if cfg.APIKey != "" {
		cfg.LocalFallback = false
	}
	return BuildEmbedder(cfg, cache, ttl, logger)
}

// BuildIntelligence returns the retrying chat collaborator used for query
// enhancement, summaries, answers and post metadata.
func BuildIntelligence(cfg config.IntelligenceConfig, logger *zap.Logger) *intelligence.Service {
	if cfg.APIKey == "" {
		logger.Warn("No intelligence API key, collaborator calls will degrade")
	}
	chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Logger:  logger,
	})
	return intelligence.New(chat, cfg.Retry.Policy(retry.ChatDefaults()), logger)
}

// EmbeddingHealth adapts an embedder to health.EmbeddingChecker.
type EmbeddingHealth struct {
	embedder domain.Embedder
}

// NewEmbeddingHealth wraps embedder.
func NewEmbeddingHealth(embedder domain.Embedder) *EmbeddingHealth {
	return &EmbeddingHealth{embedder: embedder}
}

// HealthCheck probes the embedder when it supports health checks.
func (h *EmbeddingHealth) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
