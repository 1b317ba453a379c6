package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/db/sqlite"
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/repository/corpus"
	searchlogrepo "github.com/derekjytan/xai/internal/repository/searchlog"
	cataloguc "github.com/derekjytan/xai/internal/usecase/catalog"
	"github.com/derekjytan/xai/internal/usecase/embedding"
	healthuc "github.com/derekjytan/xai/internal/usecase/health"
	ingestuc "github.com/derekjytan/xai/internal/usecase/ingest"
	searchuc "github.com/derekjytan/xai/internal/usecase/search"
)

// stubLLM stands in for every language-model collaborator.
type stubLLM struct {
	fail bool
}

var errStub = errors.New("stub collaborator down")

func (s *stubLLM) Enhance(_ context.Context, query string) (analysis.QueryAnalysis, error) {
	if s.fail {
		return analysis.QueryAnalysis{}, errStub
	}
	return analysis.QueryAnalysis{EnhancedQuery: query, Intent: "news", Keywords: []string{query}}, nil
}

func (s *stubLLM) Summarize(_ context.Context, _ string, posts []post.Post, _ string) (analysis.Summary, error) {
	if s.fail {
		return analysis.Summary{}, errStub
	}
	return analysis.Summary{Summary: "digest", KeyInsights: []string{}, Themes: []string{},
		NotablePosts: []int{}, SuggestedQueries: []string{}}, nil
}

func (s *stubLLM) Answer(_ context.Context, _ string, posts []post.Post) (string, error) {
	if s.fail {
		return "", errStub
	}
	return "answer from posts", nil
}

func (s *stubLLM) GenerateMetadata(_ context.Context, content, _ string) (post.Metadata, error) {
	if s.fail {
		return post.Metadata{}, errStub
	}
	return post.Metadata{
		Description: "about: " + content,
		Topics:      []string{"tech"},
		Sentiment:   post.Positive,
		Entities:    []string{},
	}, nil
}

type testEnv struct {
	store   *sqlite.Store
	handler http.Handler
	llm     *stubLLM
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := zap.NewNop()
	posts := corpus.New(store.DB())
	history := searchlogrepo.New(store.DB())
	embedder := embedding.NewHashEmbedder(32)
	llm := &stubLLM{}

	search := searchuc.New(posts, history, embedder,
		searchuc.Collaborators{Enhancer: llm, Summarizer: llm, Answerer: llm}, logger)
	catalog := cataloguc.New(posts, history)
	ingest := ingestuc.New(posts, llm, embedder, logger)
	health := healthuc.New(store, nil, nil, logger)

	srv := NewServer(search, catalog, ingest, health, 20, logger)
	return &testEnv{store: store, handler: srv.Handler(apiKeys), llm: llm}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) createPost(t *testing.T, id, author, content string) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/posts", CreatePostRequest{
		PostID:         id,
		AuthorUsername: author,
		Content:        content,
		Likes:          int64(len(content)),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	e.createPost(t, "1", "alice", "Rust 1.80 ships a faster borrow checker")
	e.createPost(t, "2", "bob", "Rust async runtimes compared")
	e.createPost(t, "3", "alice", "Weekend hiking photos from the Alps")
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
