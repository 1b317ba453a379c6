package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/derekjytan/xai/internal/domain/post"
)

// record is one post in an import file. Field names match the POST /posts body.
type record struct {
	PostID            string     `json:"post_id"`
	AuthorUsername    string     `json:"author_username"`
	AuthorDisplayName string     `json:"author_display_name"`
	Content           string     `json:"content"`
	Likes             int64      `json:"likes"`
	Retweets          int64      `json:"retweets"`
	Replies           int64      `json:"replies"`
	Views             int64      `json:"views"`
	PostedAt          *time.Time `json:"posted_at"`
	MediaURLs         []string   `json:"media_urls"`
}

// readRecords decodes a JSON array of posts.
func readRecords(r io.Reader) ([]post.Post, error) {
	var recs []record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]post.Post, len(recs))
	for i, rec := range recs {
		posts[i] = post.Post{
			PostID:            rec.PostID,
			AuthorUsername:    rec.AuthorUsername,
			AuthorDisplayName: rec.AuthorDisplayName,
			Content:           rec.Content,
			Likes:             rec.Likes,
			Reshares:          rec.Retweets,
			Replies:           rec.Replies,
			Views:             rec.Views,
			PostedAt:          rec.PostedAt,
			HasMedia:          len(rec.MediaURLs) > 0,
			MediaURLs:         rec.MediaURLs,
		}
	}
	return posts, nil
}
