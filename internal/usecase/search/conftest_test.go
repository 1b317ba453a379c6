package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/domain/search/filter"
	"github.com/derekjytan/xai/internal/domain/search/ordering"
	"github.com/derekjytan/xai/internal/domain/search/request"
	"github.com/derekjytan/xai/internal/domain/search/result"
	"github.com/derekjytan/xai/internal/domain/searchlog"
)

// --- Mocks ---

type mockCorpus struct {
	mu sync.Mutex

	tokensPage    result.Page
	tokensErr     error
	substringPage result.Page
	substringErr  error
	embedded      []post.Post
	embeddedErr   error

	tokensCalled    bool
	substringCalled bool
	embeddedCalled  bool
	lastExpression  string
	lastSubstring   string
	lastTokensLimit int
	lastFilter      filter.Filter
}

func (m *mockCorpus) FindByTokens(
	_ context.Context, expression string, f filter.Filter, _ ordering.Sort, limit, _ int,
) (result.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokensCalled = true
	m.lastExpression = expression
	m.lastTokensLimit = limit
	m.lastFilter = f
	return m.tokensPage, m.tokensErr
}

func (m *mockCorpus) FindBySubstring(
	_ context.Context, text string, _ filter.Filter, _ ordering.Sort, _, _ int,
) (result.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.substringCalled = true
	m.lastSubstring = text
	return m.substringPage, m.substringErr
}

func (m *mockCorpus) FindWithEmbeddings(_ context.Context, _ filter.Filter) ([]post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddedCalled = true
	return m.embedded, m.embeddedErr
}

type mockLog struct {
	entries     []searchlog.Entry
	appendErr   error
	suggestions []string
	lastPartial string
	lastLimit   int
}

func (m *mockLog) Append(_ context.Context, e searchlog.Entry) error {
	m.entries = append(m.entries, e)
	return m.appendErr
}

func (m *mockLog) Suggestions(_ context.Context, partial string, limit int) ([]string, error) {
	m.lastPartial = partial
	m.lastLimit = limit
	return m.suggestions, nil
}

type mockEmbedder struct {
	vec    []float32
	tokens int
	err    error
	called bool
	last   string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.called = true
	m.last = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: m.tokens}, nil
}

type mockLLM struct {
	analysis   analysis.QueryAnalysis
	enhanceErr error
	summary    analysis.Summary
	summaryErr error
	answer     string
	answerErr  error

	enhanceCalled   bool
	summarizeCalled bool
	answerCalled    bool
	summarizedPosts int
	summaryIntent   string
	answerPosts     int
}

func (m *mockLLM) Enhance(_ context.Context, _ string) (analysis.QueryAnalysis, error) {
	m.enhanceCalled = true
	return m.analysis, m.enhanceErr
}

func (m *mockLLM) Summarize(_ context.Context, _ string, posts []post.Post, intent string) (analysis.Summary, error) {
	m.summarizeCalled = true
	m.summarizedPosts = len(posts)
	m.summaryIntent = intent
	return m.summary, m.summaryErr
}

func (m *mockLLM) Answer(_ context.Context, _ string, posts []post.Post) (string, error) {
	m.answerCalled = true
	m.answerPosts = len(posts)
	return m.answer, m.answerErr
}

// --- Helpers ---

func newTestService(c *mockCorpus, l *mockLog, e *mockEmbedder, llm *mockLLM) *Service {
	return New(c, l, e, Collaborators{Enhancer: llm, Summarizer: llm, Answerer: llm}, zap.NewNop())
}

func mkPost(id string) post.Post {
	posted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return post.Post{PostID: id, AuthorUsername: "user_" + id, Content: "content " + id, PostedAt: &posted}
}

func hits(ids ...string) []result.Result {
	out := make([]result.Result, len(ids))
	for i, id := range ids {
		out[i] = result.New(mkPost(id))
	}
	return out
}

func similar(id string, s float64) result.Result {
	return result.New(mkPost(id)).WithSimilarity(s)
}

func embeddedPost(id string, vec ...float32) post.Post {
	p := mkPost(id)
	p.Embedding = vec
	return p
}

func resultIDs(items []result.Result) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.ID()
	}
	return out
}

func mustRequest(p request.Params) *request.Request {
	if p.Limit == 0 {
		p.Limit = request.DefaultLimit
	}
	r, err := request.New(p)
	if err != nil {
		panic(err)
	}
	return &r
}
