// Package ingest adds posts to the corpus with AI metadata and embeddings.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/metrics"
)

// DefaultConcurrency bounds parallel metadata calls during an import.
const DefaultConcurrency = 4

// Report counts the outcome of an import.
type Report struct {
	Inserted   int
	Duplicates int
	Invalid    int
	// Embedded counts inserted posts that carry a vector.
	Embedded int
}

// Service handles post ingestion.
type Service struct {
	repo        Repository
	meta        MetadataGenerator
	embed       Embedder
	concurrency int
	logger      *zap.Logger
}

// New creates an ingestion service. embed may be nil, in which case posts are
// stored without vectors.
func New(repo Repository, meta MetadataGenerator, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, meta: meta, embed: embed, concurrency: DefaultConcurrency, logger: logger}
}

// WithConcurrency sets how many posts are described in parallel on import.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Add describes, vectorizes and stores one post. Metadata and embedding
// failures degrade; a duplicate post id returns domain.ErrAlreadyExists.
func (s *Service) Add(ctx context.Context, p *post.Post) error {
	if err := p.Validate(); err != nil {
		return err
	}

	p.ApplyMetadata(s.describe(ctx, p))

	if s.embed != nil {
		res, err := s.embed.Embed(ctx, p.Content)
		switch {
		case err != nil:
			metrics.CollaboratorFailuresTotal.WithLabelValues("embedding").Inc()
			s.logger.Warn("post embedding failed, storing without vector",
				zap.Stringer("post", p), zap.Error(err))
		default:
			domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
			p.Embedding = res.Embedding
		}
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Import stores many posts. Invalid posts and duplicates are counted and
// skipped; any other storage error aborts the import.
func (s *Service) Import(ctx context.Context, posts []post.Post) (Report, error) {
	var rep Report

	valid := make([]*post.Post, 0, len(posts))
	for i := range posts {
		if err := posts[i].Validate(); err != nil {
			rep.Invalid++
			s.logger.Warn("skipping invalid post", zap.Int("index", i), zap.Error(err))
			continue
		}
		valid = append(valid, &posts[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, p := range valid {
		g.Go(func() error {
			p.ApplyMetadata(s.describe(gctx, p))
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	s.embedAll(ctx, valid)

	for _, p := range valid {
		err := s.repo.Insert(ctx, p)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			rep.Duplicates++
		case err != nil:
			return rep, fmt.Errorf("insert %s: %w", p.PostID, err)
		default:
			rep.Inserted++
			if len(p.Embedding) > 0 {
				rep.Embedded++
			}
		}
	}

	s.logger.Info("import finished",
		zap.Int("inserted", rep.Inserted),
		zap.Int("duplicates", rep.Duplicates),
		zap.Int("invalid", rep.Invalid),
		zap.Int("embedded", rep.Embedded),
	)
	return rep, nil
}

func (s *Service) describe(ctx context.Context, p *post.Post) post.Metadata {
	m, err := s.meta.GenerateMetadata(ctx, p.Content, p.AuthorUsername)
	if err != nil {
		metrics.CollaboratorFailuresTotal.WithLabelValues("metadata").Inc()
		s.logger.Warn("metadata generation failed, using fallback",
			zap.Stringer("post", p), zap.Error(err))
		return post.FallbackMetadata(p.Content)
	}
	return m
}

// embedAll vectorizes posts in one batch. On failure posts keep no vector.
func (s *Service) embedAll(ctx context.Context, posts []*post.Post) {
	if s.embed == nil || len(posts) == 0 {
		return
	}
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Content
	}

	res, err := domain.EmbedBatch(ctx, s.embed, texts)
	if err == nil && len(res.Embeddings) != len(posts) {
		err = fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrEmbeddingProviderError, len(res.Embeddings), len(posts))
	}
	if err != nil {
		metrics.CollaboratorFailuresTotal.WithLabelValues("embedding").Inc()
		s.logger.Warn("batch embedding failed, importing without vectors", zap.Error(err))
		return
	}
	for i, p := range posts {
		p.Embedding = res.Embeddings[i]
	}
}
