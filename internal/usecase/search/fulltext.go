package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain/search/filter"
	"github.com/derekjytan/xai/internal/domain/search/ordering"
	"github.com/derekjytan/xai/internal/domain/search/result"
	"github.com/derekjytan/xai/internal/metrics"
)

// FullTextSearcher runs token searches and degrades to substring matching
// when the engine rejects the expression.
type FullTextSearcher struct {
	corpus Corpus
	logger *zap.Logger
}

// NewFullTextSearcher creates a full-text searcher.
func NewFullTextSearcher(corpus Corpus, logger *zap.Logger) *FullTextSearcher {
	return &FullTextSearcher{corpus: corpus, logger: logger}
}

// Search matches expression against the index. raw is the caller's original
// text, used only by the substring fallback.
func (s *FullTextSearcher) Search(
	ctx context.Context, expression, raw string, f filter.Filter, sort ordering.Sort, limit, offset int,
) (result.Page, error) {
	if expression == EmptyExpression {
		return result.EmptyPage(), nil
	}

	page, err := s.corpus.FindByTokens(ctx, expression, f, sort, limit, offset)
	if err == nil {
		return page, nil
	}
	if ctx.Err() != nil {
		return result.Page{}, ctx.Err()
	}

	metrics.FullTextFallbackTotal.Inc()
	s.logger.Warn("token search failed, falling back to substring match",
		zap.String("expression", expression),
		zap.Error(err),
	)

	page, err = s.corpus.FindBySubstring(ctx, raw, f, sort, limit, offset)
	if err != nil {
		return result.Page{}, fmt.Errorf("substring fallback: %w", err)
	}
	return page, nil
}
