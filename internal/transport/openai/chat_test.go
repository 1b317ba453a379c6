package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/post"
)

// chatRequest is the subset of the request body the tests inspect.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// chatServer replies with content and records the last request.
func chatServer(t *testing.T, content string, last *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if last != nil {
			_ = json.NewDecoder(r.Body).Decode(last)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "grok-3-latest",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestChat(url string) *Chat {
	return NewChat(&ChatConfig{APIKey: "k", BaseURL: url, Logger: zap.NewNop()})
}

func TestChat_Enhance(t *testing.T) {
	var req chatRequest
	reply := "```json\n" + `{"enhanced_query":"ai safety research","intent":"find_discussions",` +
		`"keywords":["ai","safety"],"expanded_terms":["alignment"],"clarification_needed":false}` + "\n```"
	srv := chatServer(t, reply, &req)

	a, err := newTestChat(srv.URL).Enhance(context.Background(), "ai safety")
	require.NoError(t, err)

	assert.Equal(t, "ai safety research", a.EnhancedQuery)
	assert.Equal(t, "find_discussions", a.Intent)
	assert.Equal(t, []string{"ai", "safety"}, a.Keywords)
	assert.Equal(t, []string{"alignment"}, a.ExpandedTerms)

	assert.Equal(t, DefaultChatModel, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "Analyze this search query: ai safety", req.Messages[1].Content)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Equal(t, 1024, req.MaxTokens)
}

func TestChat_Enhance_DefaultsIntent(t *testing.T) {
	srv := chatServer(t, `{"enhanced_query":"x"}`, nil)

	a, err := newTestChat(srv.URL).Enhance(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultIntent, a.Intent)
}

func TestChat_Enhance_Malformed(t *testing.T) {
	srv := chatServer(t, "Sure! Here is your analysis.", nil)

	_, err := newTestChat(srv.URL).Enhance(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestChat_APIErrorIsCollaboratorUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestChat(srv.URL).Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}

func TestChat_GenerateMetadata(t *testing.T) {
	var req chatRequest
	srv := chatServer(t, `{"description":"A launch update","topics":["space","rockets"],`+
		`"sentiment":"Positive","entities":["SpaceX"],"content_type":"news","search_tokens":["launch","falcon"]}`, &req)

	m, err := newTestChat(srv.URL).GenerateMetadata(context.Background(), "Falcon 9 is go", "spacex")
	require.NoError(t, err)

	assert.Equal(t, "A launch update", m.Description)
	assert.Equal(t, []string{"space", "rockets"}, m.Topics)
	assert.Equal(t, post.Positive, m.Sentiment)
	assert.Equal(t, "news", m.ContentType)
	assert.Equal(t, "launch falcon", m.SearchTokens)
	assert.Equal(t, "Author: @spacex\n\nPost content:\nFalcon 9 is go", req.Messages[1].Content)
	assert.Equal(t, 512, req.MaxTokens)
}

func TestChat_GenerateMetadata_UnknownSentimentIsNeutral(t *testing.T) {
	srv := chatServer(t, `{"description":"d","sentiment":"ecstatic","search_tokens":"a b"}`, nil)

	m, err := newTestChat(srv.URL).GenerateMetadata(context.Background(), "c", "a")
	require.NoError(t, err)
	assert.Equal(t, post.Neutral, m.Sentiment)
	assert.Equal(t, "a b", m.SearchTokens)
	assert.Equal(t, []string{}, m.Topics)
}

func TestChat_Summarize(t *testing.T) {
	var req chatRequest
	srv := chatServer(t, `{"summary":"People like Go.","key_insights":["fast builds"],"themes":["tooling"],`+
		`"notable_posts":[0],"suggested_queries":["go generics"]}`, &req)

	posts := make([]post.Post, 12)
	for i := range posts {
		posts[i] = post.Post{AuthorUsername: "gopher", Content: strings.Repeat("x", 600)}
	}

	s, err := newTestChat(srv.URL).Summarize(context.Background(), "golang", posts, "")
	require.NoError(t, err)

	assert.Equal(t, "People like Go.", s.Summary)
	assert.Equal(t, []int{0}, s.NotablePosts)

	user := req.Messages[1].Content
	assert.True(t, strings.HasPrefix(user, "Search Query: golang\nUser Intent: general search\n\nMatching Posts:\n"))
	assert.Equal(t, 10, strings.Count(user, "[@gopher]: "), "only the first 10 posts are sent")
	assert.NotContains(t, user, strings.Repeat("x", 501), "content is truncated to 500 runes")
	assert.InDelta(t, 0.5, req.Temperature, 1e-6)
}

func TestChat_Answer(t *testing.T) {
	var req chatRequest
	srv := chatServer(t, "Go 1.22 shipped range-over-int.", &req)

	posted := time.Date(2024, 2, 6, 10, 0, 0, 0, time.UTC)
	posts := []post.Post{
		{AuthorUsername: "golang", Content: "Go 1.22 is out", PostedAt: &posted},
		{AuthorUsername: "", Content: "anonymous"},
	}

	answer, err := newTestChat(srv.URL).Answer(context.Background(), "What shipped in Go 1.22?", posts)
	require.NoError(t, err)
	assert.Equal(t, "Go 1.22 shipped range-over-int.", answer)

	user := req.Messages[1].Content
	assert.Contains(t, user, "Question: What shipped in Go 1.22?\n\nRelevant posts:\n")
	assert.Contains(t, user, "[@golang - 2024-02-06T10:00:00Z]: Go 1.22 is out")
	assert.Contains(t, user, "[@unknown - unknown date]: anonymous")
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, stripFences(tc.in))
	}
}

func TestEmbedder_APIErrorIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{APIKey: "k", BaseURL: server.URL, Model: "m", Provider: "xai", Logger: zap.NewNop()})

	_, err := emb.Embed(context.Background(), "hello")
	assert.True(t, errors.Is(err, domain.ErrEmbeddingProviderError), "got %v", err)
}
