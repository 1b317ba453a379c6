package searchlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekjytan/xai/internal/db/sqlite"
	"github.com/derekjytan/xai/internal/domain/searchlog"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s.DB())
}

func seed(t *testing.T, r *Repo, query string, results int, minute int) {
	t.Helper()
	require.NoError(t, r.Append(context.Background(), searchlog.Entry{
		OriginalQuery: query,
		ExecutedQuery: query,
		ResultCount:   results,
		CreatedAt:     time.Date(2024, 5, 1, 10, minute, 0, 0, time.UTC),
	}))
}

func TestSuggestions_DistinctRecentWithResults(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r, "AI safety", 5, 1)
	seed(t, r, "ai models", 3, 2)
	seed(t, r, "ai nothing", 0, 3)
	seed(t, r, "AI safety", 4, 4)
	seed(t, r, "crypto", 9, 5)

	got, err := r.Suggestions(context.Background(), "ai", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"AI safety", "ai models"}, got)
}

func TestSuggestions_Limit(t *testing.T) {
	r := newTestRepo(t)
	for i, q := range []string{"go one", "go two", "go three"} {
		seed(t, r, q, 1, i)
	}

	got, err := r.Suggestions(context.Background(), "go", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"go three", "go two"}, got)
}

func TestSuggestions_EscapesWildcards(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r, "50% off", 1, 1)
	seed(t, r, "50 cents", 1, 2)

	got, err := r.Suggestions(context.Background(), "50%", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"50% off"}, got)
}

func TestSuggestions_NoMatch(t *testing.T) {
	r := newTestRepo(t)

	got, err := r.Suggestions(context.Background(), "zzz", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountAndRecent(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r, "first", 1, 1)
	seed(t, r, "second", 0, 2)

	n, err := r.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recent, err := r.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].OriginalQuery)
	assert.Equal(t, 0, recent[0].ResultCount)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 2, 0, 0, time.UTC), recent[0].CreatedAt)
}

func TestAppend_DefaultsCreatedAt(t *testing.T) {
	r := newTestRepo(t)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	require.NoError(t, r.Append(context.Background(), searchlog.Entry{OriginalQuery: "q"}))

	recent, err := r.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fixed, recent[0].CreatedAt)
}
