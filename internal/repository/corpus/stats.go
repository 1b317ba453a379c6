package corpus

import (
	"context"
	"database/sql"

	"github.com/derekjytan/xai/internal/db"
)

// unknownSentiment labels posts that never received a sentiment.
const unknownSentiment = "unknown"

// AuthorCount is one author's post tally.
type AuthorCount struct {
	Username  string
	PostCount int
}

// CountPosts returns the number of stored posts.
func (r *Repo) CountPosts(ctx context.Context) (int, error) {
	return r.count(ctx, db.Select("p.id").From("posts p").BuildCount())
}

// CountAuthors returns the number of distinct authors.
func (r *Repo) CountAuthors(ctx context.Context) (int, error) {
	return r.count(ctx, db.Statement{SQL: `SELECT COUNT(DISTINCT author_username) FROM posts`})
}

// SentimentDistribution counts posts per sentiment label.
func (r *Repo) SentimentDistribution(ctx context.Context) (map[string]int, error) {
	st := db.Select("p.ai_sentiment", "COUNT(*)").From("posts p").GroupBy("p.ai_sentiment").Build()
	rows, err := r.store.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	dist := map[string]int{}
	for rows.Next() {
		var label sql.NullString
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		key := unknownSentiment
		if label.Valid && label.String != "" {
			key = label.String
		}
		dist[key] += n
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return dist, nil
}

// TopAuthors returns the most prolific authors, ties broken by name.
func (r *Repo) TopAuthors(ctx context.Context, limit int) ([]AuthorCount, error) {
	st := db.Select("p.author_username", "COUNT(*) AS n").
		From("posts p").
		GroupBy("p.author_username").
		OrderBy("n", db.Desc).
		OrderBy("p.author_username", db.Asc).
		Page(limit, 0).
		Build()
	rows, err := r.store.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := []AuthorCount{}
	for rows.Next() {
		var a AuthorCount
		if err := rows.Scan(&a.Username, &a.PostCount); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}
