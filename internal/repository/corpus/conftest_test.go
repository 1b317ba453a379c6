package corpus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/derekjytan/xai/internal/db/sqlite"
	"github.com/derekjytan/xai/internal/domain/post"
)

func newTestRepo(t *testing.T) (*Repo, *sqlite.Store) {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s.DB()), s
}

func at(day int) *time.Time {
	t := time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func mustInsert(t *testing.T, r *Repo, p post.Post) post.Post {
	t.Helper()
	require.NoError(t, r.Insert(context.Background(), &p))
	return p
}

func samplePost(id, author, content string) post.Post {
	return post.Post{
		PostID:         id,
		AuthorUsername: author,
		Content:        content,
		PostedAt:       at(1),
	}
}
