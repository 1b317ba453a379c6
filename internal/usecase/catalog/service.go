// Package catalog serves read-only views of the corpus: post listings,
// single posts and aggregate statistics.
package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/domain/searchlog"
	"github.com/derekjytan/xai/internal/repository/corpus"
)

// Listing and statistics sizes.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	TopAuthorsLimit = 10
	RecentSearches  = 10
)

// Page is one window of posts, newest first.
type Page struct {
	Posts  []post.Post
	Total  int
	Limit  int
	Offset int
}

// Stats summarizes the corpus and search activity.
type Stats struct {
	TotalPosts            int
	TotalAuthors          int
	TotalSearches         int
	SentimentDistribution map[string]int
	TopAuthors            []corpus.AuthorCount
	RecentSearches        []searchlog.Entry
}

// Service handles catalog reads.
type Service struct {
	posts   Posts
	history SearchHistory
}

// New creates a catalog service.
func New(posts Posts, history SearchHistory) *Service {
	return &Service{posts: posts, history: history}
}

// List returns posts newest first, optionally restricted to one author.
func (s *Service) List(ctx context.Context, author string, limit, offset int) (Page, error) {
	if limit < 1 || limit > MaxPageSize {
		return Page{}, domain.NewValidationError("limit", "must be between 1 and %d, got %d", MaxPageSize, limit)
	}
	if offset < 0 {
		return Page{}, domain.NewValidationError("offset", "must be non-negative, got %d", offset)
	}

	posts, total, err := s.posts.List(ctx, author, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list posts: %w", err)
	}
	return Page{Posts: posts, Total: total, Limit: limit, Offset: offset}, nil
}

// Get returns a post by its external id.
func (s *Service) Get(ctx context.Context, postID string) (post.Post, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return post.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// Stats gathers corpus and search-log aggregates concurrently.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		st.TotalPosts, err = s.posts.CountPosts(gctx)
		return wrap("count posts", err)
	})
	g.Go(func() (err error) {
		st.TotalAuthors, err = s.posts.CountAuthors(gctx)
		return wrap("count authors", err)
	})
	g.Go(func() (err error) {
		st.SentimentDistribution, err = s.posts.SentimentDistribution(gctx)
		return wrap("sentiment distribution", err)
	})
	g.Go(func() (err error) {
		st.TopAuthors, err = s.posts.TopAuthors(gctx, TopAuthorsLimit)
		return wrap("top authors", err)
	})
	g.Go(func() (err error) {
		st.TotalSearches, err = s.history.Count(gctx)
		return wrap("count searches", err)
	})
	g.Go(func() (err error) {
		st.RecentSearches, err = s.history.Recent(gctx, RecentSearches)
		return wrap("recent searches", err)
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
