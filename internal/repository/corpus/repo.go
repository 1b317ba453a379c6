// Package corpus stores posts in SQLite and answers the token, substring and
// embedding queries retrieval needs.
package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/derekjytan/xai/internal/db"
	"github.com/derekjytan/xai/internal/db/sqlite"
	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/domain/search/filter"
	"github.com/derekjytan/xai/internal/domain/search/ordering"
	"github.com/derekjytan/xai/internal/domain/search/result"
)

// store is the consumer interface for the SQL handle (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// substringColumns are matched by the LIKE fallback.
var substringColumns = []string{"p.content", "p.ai_description", "p.author_username"}

// Repo implements the post corpus on SQLite.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a corpus repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// FindByTokens runs an FTS5 MATCH expression. Any engine error is wrapped in
// domain.ErrRetrievalEngine so callers can fall back.
func (r *Repo) FindByTokens(
	ctx context.Context, expression string, f filter.Filter, s ordering.Sort, limit, offset int,
) (result.Page, error) {
	b := db.Select(append(postColumns, "bm25(posts_fts)")...).
		From("posts p").
		Join("JOIN posts_fts ON posts_fts.rowid = p.id").
		Where("posts_fts MATCH ?", expression)
	applyFilter(b, f)

	switch s.Field {
	case ordering.Relevance:
		// bm25 is negative and more negative is better.
		b.OrderBy("bm25(posts_fts)", db.Asc)
	default:
		b.OrderBy(sortColumn(s.Field), direction(s.Direction))
	}
	b.OrderBy("p.id", db.Asc).Page(limit, offset)

	total, err := r.count(ctx, b.BuildCount())
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrRetrievalEngine, err)
	}

	items, err := r.query(ctx, b.Build(), true)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrRetrievalEngine, err)
	}
	return result.Page{Items: items, Total: total}, nil
}

// FindBySubstring matches text case-insensitively anywhere in content,
// description or author. Relevance ordering maps to likes.
func (r *Repo) FindBySubstring(
	ctx context.Context, text string, f filter.Filter, s ordering.Sort, limit, offset int,
) (result.Page, error) {
	b := db.Select(postColumns...).
		From("posts p").
		WhereContainsAny(text, substringColumns...)
	applyFilter(b, f)

	field := s.Field
	if field == ordering.Relevance {
		field = ordering.Likes
	}
	b.OrderBy(sortColumn(field), direction(s.Direction)).
		OrderBy("p.id", db.Asc).
		Page(limit, offset)

	total, err := r.count(ctx, b.BuildCount())
	if err != nil {
		return result.Page{}, err
	}
	items, err := r.query(ctx, b.Build(), false)
	if err != nil {
		return result.Page{}, err
	}
	return result.Page{Items: items, Total: total}, nil
}

// FindWithEmbeddings returns every post with a stored embedding that matches
// the author and sentiment parts of f, ordered by id.
func (r *Repo) FindWithEmbeddings(ctx context.Context, f filter.Filter) ([]post.Post, error) {
	b := db.Select(postColumns...).
		From("posts p").
		Where("p.embedding IS NOT NULL")
	applyFilter(b, f.WithoutDates())
	b.OrderBy("p.id", db.Asc)

	st := b.Build()
	rows, err := r.store.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	var posts []post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return posts, nil
}

// List pages through posts newest first, optionally for one author.
func (r *Repo) List(ctx context.Context, author string, limit, offset int) ([]post.Post, int, error) {
	b := db.Select(postColumns...).From("posts p")
	if author != "" {
		b.WhereEq("p.author_username", author)
	}
	b.OrderBy("p.posted_at", db.Desc).OrderBy("p.id", db.Desc).Page(limit, offset)

	total, err := r.count(ctx, b.BuildCount())
	if err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, b.Build(), false)
	if err != nil {
		return nil, 0, err
	}
	return result.Posts(items), total, nil
}

// Get returns a post by its external id.
func (r *Repo) Get(ctx context.Context, postID string) (post.Post, error) {
	st := db.Select(postColumns...).From("posts p").WhereEq("p.post_id", postID).Build()
	p, err := scanPost(r.store.QueryRowContext(ctx, st.SQL, st.Args...))
	if err != nil {
		if sqlite.IsNoRows(err) {
			return post.Post{}, fmt.Errorf("post %q: %w", postID, domain.ErrNotFound)
		}
		return post.Post{}, &db.Error{Op: db.OpSelect, Err: err}
	}
	return p, nil
}

// Insert stores a new post and sets its internal id. A duplicate post id
// returns domain.ErrAlreadyExists.
func (r *Repo) Insert(ctx context.Context, p *post.Post) error {
	if p.IngestedAt.IsZero() {
		p.IngestedAt = r.now().UTC()
	}
	res, err := r.store.ExecContext(ctx, insertSQL, insertArgs(p)...)
	if err != nil {
		if sqlite.IsConstraint(err) {
			return fmt.Errorf("post %q: %w", p.PostID, domain.ErrAlreadyExists)
		}
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	p.ID = id
	return nil
}

// SetEmbedding replaces the stored vector of a post.
func (r *Repo) SetEmbedding(ctx context.Context, postID string, vec []float32) error {
	res, err := r.store.ExecContext(ctx,
		`UPDATE posts SET embedding = ? WHERE post_id = ?`, db.EncodeVector(vec), postID)
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("post %q: %w", postID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) query(ctx context.Context, st db.Statement, withScore bool) ([]result.Result, error) {
	rows, err := r.store.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	items := []result.Result{}
	for rows.Next() {
		var score float64
		var extra []any
		if withScore {
			extra = append(extra, &score)
		}
		p, err := scanPost(rows, extra...)
		if err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		res := result.New(p)
		if withScore {
			res = res.WithRelevance(score)
		}
		items = append(items, res)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return items, nil
}

func (r *Repo) count(ctx context.Context, st db.Statement) (int, error) {
	var n int
	if err := r.store.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

func applyFilter(b *db.SelectBuilder, f filter.Filter) {
	if a := f.Author(); a != "" {
		b.WhereEq("p.author_username", a)
	}
	if s := f.Sentiment(); s != "" {
		b.WhereEq("p.ai_sentiment", string(s))
	}
	if from := f.From(); from != nil {
		b.WhereGTE("p.posted_at", toMillis(*from))
	}
	if to := f.To(); to != nil {
		b.WhereLTE("p.posted_at", toMillis(*to))
	}
}

func sortColumn(f ordering.Field) string {
	switch f {
	case ordering.Date:
		return "p.posted_at"
	case ordering.Reshares:
		return "p.reshares"
	case ordering.Views:
		return "p.views"
	default:
		return "p.likes"
	}
}

func direction(d ordering.Direction) db.Direction {
	if d == ordering.Asc {
		return db.Asc
	}
	return db.Desc
}
