package embedding

import (
	"context"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/metrics"
)

// FallbackEmbedder serves from a secondary embedder when the primary fails.
// Context cancellation is never masked.
type FallbackEmbedder struct {
	primary   domain.Embedder
	secondary domain.Embedder
	logger    *zap.Logger
}

// NewFallbackEmbedder creates a fallback decorator.
func NewFallbackEmbedder(primary, secondary domain.Embedder, logger *zap.Logger) *FallbackEmbedder {
	return &FallbackEmbedder{primary: primary, secondary: secondary, logger: logger}
}

// Embed tries the primary, then the secondary.
func (f *FallbackEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := f.primary.Embed(ctx, text)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return domain.EmbeddingResult{}, err
	}
	f.record(err, 1)
	return f.secondary.Embed(ctx, text)
}

// BatchEmbed tries the primary, then the secondary, for the whole batch.
func (f *FallbackEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	res, err := domain.EmbedBatch(ctx, f.primary, texts)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	f.record(err, len(texts))
	return domain.EmbedBatch(ctx, f.secondary, texts)
}

// HealthCheck reports the primary's health.
func (f *FallbackEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := f.primary.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (f *FallbackEmbedder) record(err error, n int) {
	metrics.EmbeddingFallbackTotal.Add(float64(n))
	f.logger.Warn("Embedding provider failed, using local embeddings",
		zap.Int("texts", n),
		zap.Error(err),
	)
}
