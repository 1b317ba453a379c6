package embedding

import (
	"context"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/metrics"
	"github.com/derekjytan/xai/internal/retry"
)

// RetryingEmbedder retries provider calls with backoff. When attempts run out
// the error wraps domain.ErrCollaboratorUnavailable.
type RetryingEmbedder struct {
	inner  domain.Embedder
	cfg    retry.Config
	logger *zap.Logger
}

// NewRetryingEmbedder wraps inner with the given retry policy.
func NewRetryingEmbedder(inner domain.Embedder, cfg retry.Config, logger *zap.Logger) *RetryingEmbedder {
	return &RetryingEmbedder{inner: inner, cfg: cfg, logger: logger}
}

// Embed retries inner.Embed.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var res domain.EmbeddingResult
	err := retry.Do(ctx, r.cfg, r.onRetry, func(ctx context.Context) error {
		var err error
		res, err = r.inner.Embed(ctx, text)
		return err
	})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return res, nil
}

// BatchEmbed retries the whole batch.
func (r *RetryingEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var res domain.BatchEmbeddingResult
	err := retry.Do(ctx, r.cfg, r.onRetry, func(ctx context.Context) error {
		var err error
		res, err = domain.EmbedBatch(ctx, r.inner, texts)
		return err
	})
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return res, nil
}

// HealthCheck is not retried.
func (r *RetryingEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := r.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (r *RetryingEmbedder) onRetry(attempt int, err error) {
	metrics.CollaboratorRetriesTotal.WithLabelValues("embedding").Inc()
	r.logger.Warn("Retrying embedding request", zap.Int("attempt", attempt), zap.Error(err))
}
