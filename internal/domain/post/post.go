package post

import (
	"fmt"
	"time"

	"github.com/derekjytan/xai/internal/domain"
)

// Field limits.
const (
	MaxPostIDLength  = 64
	MaxAuthorLength  = 255
	MaxContentLength = 10000
	// DescriptionFallbackLength is how much content stands in for a missing AI description.
	DescriptionFallbackLength = 200
)

// Sentiment is the AI-derived tone label of a post.
type Sentiment string

// Sentiment labels.
const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
	Mixed    Sentiment = "mixed"
)

// IsValid checks if the sentiment is one of the closed set of labels.
func (s Sentiment) IsValid() bool {
	return s == Positive || s == Negative || s == Neutral || s == Mixed
}

// ParseSentiment validates a sentiment label. An empty string means "none".
func ParseSentiment(s string) (Sentiment, error) {
	if s == "" {
		return "", nil
	}
	v := Sentiment(s)
	if !v.IsValid() {
		return "", domain.NewValidationError("sentiment", "must be one of positive, negative, neutral, mixed, got %q", s)
	}
	return v, nil
}

// Post is one indexed social-media post. Posts are written by ingestion and
// read-only for search.
type Post struct {
	ID                int64
	PostID            string
	AuthorUsername    string
	AuthorDisplayName string
	Content           string

	Likes    int64
	Reshares int64
	Replies  int64
	Views    int64

	PostedAt   *time.Time
	IngestedAt time.Time

	Description  string
	Topics       []string
	Sentiment    Sentiment
	Entities     []string
	SearchTokens string

	HasMedia  bool
	MediaURLs []string

	// Embedding is nil when the post has not been vectorized.
	Embedding []float32
}

// Validate checks the fields ingestion must provide.
func (p *Post) Validate() error {
	if p.PostID == "" {
		return domain.NewValidationError("post_id", "is required")
	}
	if len(p.PostID) > MaxPostIDLength {
		return domain.NewValidationError("post_id", "too long (max %d)", MaxPostIDLength)
	}
	if p.AuthorUsername == "" {
		return domain.NewValidationError("author_username", "is required")
	}
	if len(p.AuthorUsername) > MaxAuthorLength {
		return domain.NewValidationError("author_username", "too long (max %d)", MaxAuthorLength)
	}
	if p.Content == "" {
		return domain.NewValidationError("content", "is required")
	}
	if len(p.Content) > MaxContentLength {
		return domain.NewValidationError("content", "too long (max %d bytes)", MaxContentLength)
	}
	if p.Likes < 0 || p.Reshares < 0 || p.Replies < 0 || p.Views < 0 {
		return domain.NewValidationError("engagement", "counters must be non-negative")
	}
	if p.Sentiment != "" && !p.Sentiment.IsValid() {
		return domain.NewValidationError("sentiment", "unknown label %q", p.Sentiment)
	}
	return nil
}

// ApplyMetadata copies AI-derived metadata onto the post.
func (p *Post) ApplyMetadata(m Metadata) {
	p.Description = m.Description
	p.Topics = m.Topics
	p.Sentiment = m.Sentiment
	p.Entities = m.Entities
	p.SearchTokens = m.SearchTokens
}

// Metadata is what the language collaborator derives from a post's text.
type Metadata struct {
	Description  string
	Topics       []string
	Sentiment    Sentiment
	Entities     []string
	ContentType  string
	SearchTokens string
}

// FallbackMetadata is used when metadata generation is unavailable.
func FallbackMetadata(content string) Metadata {
	desc := content
	if r := []rune(content); len(r) > DescriptionFallbackLength {
		desc = string(r[:DescriptionFallbackLength])
	}
	return Metadata{
		Description: desc,
		Topics:      []string{},
		Sentiment:   Neutral,
		Entities:    []string{},
		ContentType: "other",
	}
}

// String implements fmt.Stringer for log fields.
func (p *Post) String() string {
	return fmt.Sprintf("post(%s by @%s)", p.PostID, p.AuthorUsername)
}
