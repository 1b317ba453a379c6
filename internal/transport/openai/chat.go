package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/post"
)

// DefaultChatModel is the xAI model used when none is configured.
const DefaultChatModel = "grok-3-latest"

// How much of the result list goes into a prompt.
const (
	summaryContextPosts = 10
	summaryContentRunes = 500
	answerContextPosts  = 15
)

// Sampling parameters per request kind.
const (
	enhanceTemperature   = 0.3
	metadataTemperature  = 0.3
	summarizeTemperature = 0.5
	answerTemperature    = 0.7
	metadataMaxTokens    = 512
	completionMaxTokens  = 1024
)

// ChatConfig holds the chat completion settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// Chat performs query enhancement, summarization, answering and metadata
// generation over one chat-completion endpoint. Every method makes a single
// request; retries belong to the caller.
type Chat struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewChat creates a chat client.
func NewChat(cfg *ChatConfig) *Chat {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Enhance asks the model to analyze a search query.
func (c *Chat) Enhance(ctx context.Context, query string) (analysis.QueryAnalysis, error) {
	reply, err := c.complete(ctx, enhancePrompt, "Analyze this search query: "+query,
		enhanceTemperature, completionMaxTokens)
	if err != nil {
		return analysis.QueryAnalysis{}, err
	}

	var a analysis.QueryAnalysis
	if err := decodeJSON(reply, &a); err != nil {
		return analysis.QueryAnalysis{}, err
	}
	if a.Intent == "" {
		a.Intent = analysis.DefaultIntent
	}
	return a, nil
}

// metadataReply tolerates search_tokens as either a string or a list.
type metadataReply struct {
	Description  string          `json:"description"`
	Topics       []string        `json:"topics"`
	Sentiment    string          `json:"sentiment"`
	Entities     []string        `json:"entities"`
	ContentType  string          `json:"content_type"`
	SearchTokens json.RawMessage `json:"search_tokens"`
}

// GenerateMetadata asks the model to describe a post for indexing.
func (c *Chat) GenerateMetadata(ctx context.Context, content, author string) (post.Metadata, error) {
	user := fmt.Sprintf("Author: @%s\n\nPost content:\n%s", author, content)
	reply, err := c.complete(ctx, metadataPrompt, user, metadataTemperature, metadataMaxTokens)
	if err != nil {
		return post.Metadata{}, err
	}

	var m metadataReply
	if err := decodeJSON(reply, &m); err != nil {
		return post.Metadata{}, err
	}

	sentiment, err := post.ParseSentiment(strings.ToLower(m.Sentiment))
	if err != nil {
		sentiment = post.Neutral
	}
	return post.Metadata{
		Description:  m.Description,
		Topics:       nonNil(m.Topics),
		Sentiment:    sentiment,
		Entities:     nonNil(m.Entities),
		ContentType:  m.ContentType,
		SearchTokens: flattenTokens(m.SearchTokens),
	}, nil
}

// Summarize asks the model to digest the leading results of a search.
func (c *Chat) Summarize(ctx context.Context, query string, posts []post.Post, intent string) (analysis.Summary, error) {
	if intent == "" {
		intent = "general search"
	}
	user := fmt.Sprintf("Search Query: %s\nUser Intent: %s\n\nMatching Posts:\n%s",
		query, intent, summaryContext(posts))

	reply, err := c.complete(ctx, summarizePrompt, user, summarizeTemperature, completionMaxTokens)
	if err != nil {
		return analysis.Summary{}, err
	}

	var s analysis.Summary
	if err := decodeJSON(reply, &s); err != nil {
		return analysis.Summary{}, err
	}
	s.KeyInsights = nonNil(s.KeyInsights)
	s.Themes = nonNil(s.Themes)
	s.SuggestedQueries = nonNil(s.SuggestedQueries)
	if s.NotablePosts == nil {
		s.NotablePosts = []int{}
	}
	return s, nil
}

// Answer asks the model to answer a question from the given posts.
func (c *Chat) Answer(ctx context.Context, question string, posts []post.Post) (string, error) {
	user := fmt.Sprintf("Question: %s\n\nRelevant posts:\n%s", question, answerContext(posts))
	return c.complete(ctx, answerPrompt, user, answerTemperature, completionMaxTokens)
}

// HealthCheck verifies API availability via ListModels.
func (c *Chat) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (c *Chat) complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", parseAPIError("chat", err, domain.ErrCollaboratorUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion has no choices: %w", domain.ErrMalformedResponse)
	}

	c.logger.Debug("Chat completion finished",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// stripFences removes a surrounding markdown code fence and a "json" tag.
func stripFences(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		parts := strings.Split(reply, "```")
		reply = parts[1]
		reply = strings.TrimPrefix(reply, "json")
	}
	return strings.TrimSpace(reply)
}

func decodeJSON(reply string, v any) error {
	if err := json.Unmarshal([]byte(stripFences(reply)), v); err != nil {
		return fmt.Errorf("decode reply: %w: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

func summaryContext(posts []post.Post) string {
	n := min(len(posts), summaryContextPosts)
	parts := make([]string, 0, n)
	for _, p := range posts[:n] {
		content := p.Content
		if r := []rune(content); len(r) > summaryContentRunes {
			content = string(r[:summaryContentRunes])
		}
		parts = append(parts, fmt.Sprintf("[@%s]: %s", author(p), content))
	}
	return strings.Join(parts, "\n\n")
}

func answerContext(posts []post.Post) string {
	n := min(len(posts), answerContextPosts)
	parts := make([]string, 0, n)
	for _, p := range posts[:n] {
		date := "unknown date"
		if p.PostedAt != nil {
			date = p.PostedAt.UTC().Format(time.RFC3339)
		}
		parts = append(parts, fmt.Sprintf("[@%s - %s]: %s", author(p), date, p.Content))
	}
	return strings.Join(parts, "\n\n")
}

func author(p post.Post) string {
	if p.AuthorUsername == "" {
		return "unknown"
	}
	return p.AuthorUsername
}

func flattenTokens(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, " ")
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
