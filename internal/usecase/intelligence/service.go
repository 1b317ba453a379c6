// Package intelligence wraps the language-model collaborator with retries.
package intelligence

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/metrics"
	"github.com/derekjytan/xai/internal/retry"
)

// Client is one attempt at each collaborator call.
type Client interface {
	Enhance(ctx context.Context, query string) (analysis.QueryAnalysis, error)
	Summarize(ctx context.Context, query string, posts []post.Post, intent string) (analysis.Summary, error)
	Answer(ctx context.Context, question string, posts []post.Post) (string, error)
	GenerateMetadata(ctx context.Context, content, author string) (post.Metadata, error)
}

// Service retries transient client failures. Malformed replies are not retried.
type Service struct {
	client Client
	cfg    retry.Config
	logger *zap.Logger
}

// New creates a retrying collaborator.
func New(client Client, cfg retry.Config, logger *zap.Logger) *Service {
	return &Service{client: client, cfg: cfg, logger: logger}
}

// Enhance analyzes a search query.
func (s *Service) Enhance(ctx context.Context, query string) (analysis.QueryAnalysis, error) {
	var out analysis.QueryAnalysis
	err := s.do(ctx, "enhance", func(ctx context.Context) error {
		var err error
		out, err = s.client.Enhance(ctx, query)
		return err
	})
	return out, err
}

// Summarize digests search results.
func (s *Service) Summarize(
	ctx context.Context, query string, posts []post.Post, intent string,
) (analysis.Summary, error) {
	var out analysis.Summary
	err := s.do(ctx, "summarize", func(ctx context.Context) error {
		var err error
		out, err = s.client.Summarize(ctx, query, posts, intent)
		return err
	})
	return out, err
}

// Answer composes an answer to a question from posts.
func (s *Service) Answer(ctx context.Context, question string, posts []post.Post) (string, error) {
	var out string
	err := s.do(ctx, "answer", func(ctx context.Context) error {
		var err error
		out, err = s.client.Answer(ctx, question, posts)
		return err
	})
	return out, err
}

// GenerateMetadata describes a post for indexing.
func (s *Service) GenerateMetadata(ctx context.Context, content, author string) (post.Metadata, error) {
	var out post.Metadata
	err := s.do(ctx, "metadata", func(ctx context.Context) error {
		var err error
		out, err = s.client.GenerateMetadata(ctx, content, author)
		return err
	})
	return out, err
}

func (s *Service) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	onRetry := func(attempt int, err error) {
		metrics.CollaboratorRetriesTotal.WithLabelValues(op).Inc()
		s.logger.Warn("Retrying collaborator call",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return retry.Do(ctx, s.cfg, onRetry, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, domain.ErrMalformedResponse) {
			return retry.Permanent(err)
		}
		return err
	})
}
