package catalog

import (
	"context"

	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/domain/searchlog"
	"github.com/derekjytan/xai/internal/repository/corpus"
)

// Posts reads the stored corpus.
type Posts interface {
	List(ctx context.Context, author string, limit, offset int) ([]post.Post, int, error)
	Get(ctx context.Context, postID string) (post.Post, error)
	CountPosts(ctx context.Context) (int, error)
	CountAuthors(ctx context.Context) (int, error)
	SentimentDistribution(ctx context.Context) (map[string]int, error)
	TopAuthors(ctx context.Context, limit int) ([]corpus.AuthorCount, error)
}

// SearchHistory reads the search log.
type SearchHistory interface {
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]searchlog.Entry, error)
}
