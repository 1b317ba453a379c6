package search

import (
	"context"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/domain/search/filter"
	"github.com/derekjytan/xai/internal/domain/search/ordering"
	"github.com/derekjytan/xai/internal/domain/search/result"
	"github.com/derekjytan/xai/internal/domain/searchlog"
)

// Corpus is the read side of the post store used by retrieval.
type Corpus interface {
	FindByTokens(
		ctx context.Context, expression string, f filter.Filter, s ordering.Sort, limit, offset int,
	) (result.Page, error)

	FindBySubstring(
		ctx context.Context, text string, f filter.Filter, s ordering.Sort, limit, offset int,
	) (result.Page, error)

	FindWithEmbeddings(ctx context.Context, f filter.Filter) ([]post.Post, error)
}

// SearchLog records completed searches and serves suggestions from them.
type SearchLog interface {
	Append(ctx context.Context, e searchlog.Entry) error
	Suggestions(ctx context.Context, partial string, limit int) ([]string, error)
}

// Enhancer analyzes and expands a raw query.
type Enhancer interface {
	Enhance(ctx context.Context, query string) (analysis.QueryAnalysis, error)
}

// Summarizer digests a result page.
type Summarizer interface {
	Summarize(ctx context.Context, query string, posts []post.Post, intent string) (analysis.Summary, error)
}

// Answerer composes an answer from posts.
type Answerer interface {
	Answer(ctx context.Context, question string, posts []post.Post) (string, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
