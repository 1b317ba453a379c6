// Package searchlog persists completed searches and serves query suggestions
// from them.
package searchlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/derekjytan/xai/internal/db"
	"github.com/derekjytan/xai/internal/domain/searchlog"
)

// store is the consumer interface for the SQL handle (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repo implements the search log on SQLite.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a search log repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// Append records one search. CreatedAt defaults to now.
func (r *Repo) Append(ctx context.Context, e searchlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	_, err := r.store.ExecContext(ctx,
		`INSERT INTO search_queries (original_query, enhanced_query, intent, result_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.OriginalQuery, e.ExecutedQuery, e.Intent, e.ResultCount, e.CreatedAt.UnixMilli())
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	return nil
}

// Suggestions returns distinct past queries containing partial
// (case-insensitive) that found results, most recently used first.
func (r *Repo) Suggestions(ctx context.Context, partial string, limit int) ([]string, error) {
	st := db.Select("original_query").
		From("search_queries").
		WhereContainsAny(partial, "original_query").
		Where("result_count > 0").
		GroupBy("original_query").
		OrderBy("MAX(created_at)", db.Desc).
		OrderBy("MAX(id)", db.Desc).
		Page(limit, 0).
		Build()

	rows, err := r.store.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}

// Count returns the number of logged searches.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	st := db.Select("id").From("search_queries").BuildCount()
	if err := r.store.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Recent returns the latest entries, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]searchlog.Entry, error) {
	st := db.Select("id", "original_query", "enhanced_query", "intent", "result_count", "created_at").
		From("search_queries").
		OrderBy("created_at", db.Desc).
		OrderBy("id", db.Desc).
		Page(limit, 0).
		Build()

	rows, err := r.store.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := []searchlog.Entry{}
	for rows.Next() {
		var e searchlog.Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.OriginalQuery, &e.ExecutedQuery, &e.Intent, &e.ResultCount, &created); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}
