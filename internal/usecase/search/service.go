// Package search runs keyword, semantic and hybrid retrieval over the post
// corpus, with optional query enhancement and result summarization.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/search/mode"
	"github.com/derekjytan/xai/internal/domain/search/request"
	"github.com/derekjytan/xai/internal/domain/search/result"
	"github.com/derekjytan/xai/internal/domain/searchlog"
	"github.com/derekjytan/xai/internal/metrics"
)

// Result counts.
const (
	// SummaryWindow is how many top results the summarizer sees.
	SummaryWindow = 10
	// hybridOverfetch multiplies the page size each retriever fetches before fusion.
	hybridOverfetch = 2

	DefaultSuggestions = 5
	MaxSuggestions     = 10
)

// Collaborators groups the language-model dependencies of the service.
type Collaborators struct {
	Enhancer   Enhancer
	Summarizer Summarizer
	Answerer   Answerer
}

// Service handles post search across keyword, semantic and hybrid modes.
type Service struct {
	fullText *FullTextSearcher
	vector   *VectorSearcher
	log      SearchLog
	llm      Collaborators
	logger   *zap.Logger
}

// New creates a search service.
func New(corpus Corpus, log SearchLog, embed Embedder, llm Collaborators, logger *zap.Logger) *Service {
	return &Service{
		fullText: NewFullTextSearcher(corpus, logger),
		vector:   NewVectorSearcher(corpus, embed, logger),
		log:      log,
		llm:      llm,
		logger:   logger,
	}
}

// Search runs enhance, retrieve, summarize and log for one request. Only a
// cancelled context fails it; collaborator and engine failures degrade.
func (s *Service) Search(ctx context.Context, req *request.Request) (*Response, error) {
	start := time.Now()
	m := string(req.Mode())
	defer func() {
		metrics.SearchesTotal.WithLabelValues(m).Inc()
		metrics.SearchDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())
	}()

	resp := &Response{
		Query:  req.Query(),
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}

	executed := req.Query()
	if req.EnhanceQuery() {
		qa := s.enhance(ctx, req.Query())
		if terms := qa.Terms(); len(terms) > 0 && !qa.IsDegraded() {
			executed = expandTerms(terms)
		}
		resp.Analysis = &qa
		resp.EnhancedQuery = &executed
	}

	page, err := s.retrieve(ctx, req, executed)
	if err != nil {
		return nil, err
	}
	resp.Results = page.Items
	resp.TotalCount = page.Total

	intent := ""
	if resp.Analysis != nil {
		intent = resp.Analysis.Intent
	}

	if req.IncludeSummary() && len(page.Items) > 0 {
		sum := s.summarize(ctx, req.Query(), page.Items, intent)
		resp.Summary = &sum
	}

	s.record(ctx, searchlog.Entry{
		OriginalQuery: req.Query(),
		ExecutedQuery: executed,
		Intent:        intent,
		ResultCount:   page.Total,
	})

	return resp, nil
}

// Suggestions returns distinct earlier queries containing partial, newest first.
func (s *Service) Suggestions(ctx context.Context, partial string, limit int) ([]string, error) {
	if partial == "" {
		return nil, domain.NewValidationError("q", "is required")
	}
	if limit < 1 || limit > MaxSuggestions {
		return nil, domain.NewValidationError("limit", "must be between 1 and %d, got %d", MaxSuggestions, limit)
	}
	out, err := s.log.Suggestions(ctx, partial, limit)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}
	return out, nil
}

func (s *Service) enhance(ctx context.Context, query string) analysis.QueryAnalysis {
	qa, err := s.llm.Enhancer.Enhance(ctx, query)
	if err != nil {
		metrics.CollaboratorFailuresTotal.WithLabelValues("enhance").Inc()
		s.logger.Warn("query enhancement failed, using original query", zap.Error(err))
		return analysis.Degraded(query, err)
	}
	return qa
}

func (s *Service) retrieve(ctx context.Context, req *request.Request, executed string) (result.Page, error) {
	switch req.Mode() {
	case mode.Keyword:
		return s.keyword(ctx, req, executed, req.Limit(), req.Offset())
	case mode.Semantic:
		return s.semantic(ctx, req, req.Limit(), req.Offset())
	case mode.Hybrid:
		return s.hybrid(ctx, req, executed)
	default:
		return result.Page{}, fmt.Errorf("unsupported search mode: %s", req.Mode())
	}
}

// keyword and semantic log retrieval failures and return an empty page; only
// cancellation propagates.
func (s *Service) keyword(
	ctx context.Context, req *request.Request, executed string, limit, offset int,
) (result.Page, error) {
	page, err := s.fullText.Search(ctx, Normalize(executed), req.Query(), req.Filters(), req.Sort(), limit, offset)
	return s.soft(ctx, "full-text", page, err)
}

func (s *Service) semantic(ctx context.Context, req *request.Request, limit, offset int) (result.Page, error) {
	page, err := s.vector.Search(ctx, req.Query(), req.Filters(), limit, offset)
	return s.soft(ctx, "vector", page, err)
}

func (s *Service) hybrid(ctx context.Context, req *request.Request, executed string) (result.Page, error) {
	fetch := req.Limit() * hybridOverfetch
	var fts, vec result.Page

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fts, err = s.keyword(gctx, req, executed, fetch, 0)
		return err
	})
	g.Go(func() error {
		var err error
		vec, err = s.semantic(gctx, req, fetch, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return result.Page{}, err
	}

	return Fuse(fts.Items, vec.Items, req.Limit(), req.Offset()), nil
}

func (s *Service) soft(ctx context.Context, retriever string, page result.Page, err error) (result.Page, error) {
	if err == nil {
		return page, nil
	}
	if ctx.Err() != nil {
		return result.Page{}, ctx.Err()
	}
	s.logger.Error("retrieval failed, returning no results",
		zap.String("retriever", retriever),
		zap.Error(err),
	)
	return result.EmptyPage(), nil
}

func (s *Service) summarize(ctx context.Context, query string, items []result.Result, intent string) analysis.Summary {
	top := items
	if len(top) > SummaryWindow {
		top = top[:SummaryWindow]
	}
	sum, err := s.llm.Summarizer.Summarize(ctx, query, result.Posts(top), intent)
	if err != nil {
		metrics.CollaboratorFailuresTotal.WithLabelValues("summarize").Inc()
		s.logger.Warn("summarization failed", zap.Error(err))
		return analysis.DegradedSummary(len(items), err)
	}
	return sum
}

// record appends to the search log. Failures are logged and dropped.
func (s *Service) record(ctx context.Context, e searchlog.Entry) {
	if err := s.log.Append(ctx, e); err != nil {
		s.logger.Warn("failed to record search", zap.String("query", e.OriginalQuery), zap.Error(err))
	}
}
