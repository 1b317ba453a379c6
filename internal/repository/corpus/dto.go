package corpus

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/derekjytan/xai/internal/db"
	"github.com/derekjytan/xai/internal/domain/post"
)

// postColumns is the projection every post query scans, in scanPost order.
var postColumns = []string{
	"p.id", "p.post_id", "p.author_username", "p.author_display_name", "p.content",
	"p.likes", "p.reshares", "p.replies", "p.views",
	"p.posted_at", "p.ingested_at",
	"p.ai_description", "p.ai_topics", "p.ai_sentiment", "p.ai_entities", "p.search_tokens",
	"p.has_media", "p.media_urls", "p.embedding",
}

type scanner interface {
	Scan(dest ...any) error
}

// row mirrors the posts table.
type row struct {
	id                int64
	postID            string
	authorUsername    string
	authorDisplayName string
	content           string
	likes             int64
	reshares          int64
	replies           int64
	views             int64
	postedAt          sql.NullInt64
	ingestedAt        int64
	description       string
	topics            string
	sentiment         sql.NullString
	entities          string
	searchTokens      string
	hasMedia          bool
	mediaURLs         string
	embedding         []byte
}

// scanPost reads one post. extra receives any columns projected after postColumns.
func scanPost(s scanner, extra ...any) (post.Post, error) {
	var r row
	dest := []any{
		&r.id, &r.postID, &r.authorUsername, &r.authorDisplayName, &r.content,
		&r.likes, &r.reshares, &r.replies, &r.views,
		&r.postedAt, &r.ingestedAt,
		&r.description, &r.topics, &r.sentiment, &r.entities, &r.searchTokens,
		&r.hasMedia, &r.mediaURLs, &r.embedding,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return post.Post{}, err
	}
	return r.toDomain(), nil
}

func (r row) toDomain() post.Post {
	p := post.Post{
		ID:                r.id,
		PostID:            r.postID,
		AuthorUsername:    r.authorUsername,
		AuthorDisplayName: r.authorDisplayName,
		Content:           r.content,
		Likes:             r.likes,
		Reshares:          r.reshares,
		Replies:           r.replies,
		Views:             r.views,
		IngestedAt:        fromMillis(r.ingestedAt),
		Description:       r.description,
		Topics:            decodeStrings(r.topics),
		Entities:          decodeStrings(r.entities),
		SearchTokens:      r.searchTokens,
		HasMedia:          r.hasMedia,
		MediaURLs:         decodeStrings(r.mediaURLs),
	}
	if r.postedAt.Valid {
		t := fromMillis(r.postedAt.Int64)
		p.PostedAt = &t
	}
	if r.sentiment.Valid {
		p.Sentiment = post.Sentiment(r.sentiment.String)
	}
	// A blob that does not decode leaves Embedding nil; vector search skips it.
	if len(r.embedding) > 0 {
		if vec, err := db.DecodeVector(r.embedding); err == nil {
			p.Embedding = vec
		}
	}
	return p
}

// insertArgs returns the values for insertSQL.
func insertArgs(p *post.Post) []any {
	var postedAt any
	if p.PostedAt != nil {
		postedAt = toMillis(*p.PostedAt)
	}
	var sentiment any
	if p.Sentiment != "" {
		sentiment = string(p.Sentiment)
	}
	var embedding any
	if len(p.Embedding) > 0 {
		embedding = db.EncodeVector(p.Embedding)
	}
	return []any{
		p.PostID, p.AuthorUsername, p.AuthorDisplayName, p.Content,
		p.Likes, p.Reshares, p.Replies, p.Views,
		postedAt, toMillis(p.IngestedAt),
		p.Description, encodeStrings(p.Topics), sentiment, encodeStrings(p.Entities), p.SearchTokens,
		p.HasMedia, encodeStrings(p.MediaURLs), embedding,
	}
}

const insertSQL = `INSERT INTO posts (
	post_id, author_username, author_display_name, content,
	likes, reshares, replies, views,
	posted_at, ingested_at,
	ai_description, ai_topics, ai_sentiment, ai_entities, search_tokens,
	has_media, media_urls, embedding
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func encodeStrings(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	data, err := json.Marshal(ss)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeStrings reads a JSON string list column. A corrupt value yields an
// empty list, never a partial one, so one bad row cannot fail a page.
func decodeStrings(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
