package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekjytan/xai/internal/domain/search/result"
)

func combined(t *testing.T, r result.Result) float64 {
	t.Helper()
	s, ok := r.Combined()
	require.True(t, ok, "combined score missing for %s", r.ID())
	return s
}

func TestFuse_SharedRecordAveragesScores(t *testing.T) {
	page := Fuse(hits("a"), []result.Result{similar("a", 0.6)}, 10, 0)

	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Total)
	assert.InDelta(t, 0.8, combined(t, page.Items[0]), 1e-9)

	sim, ok := page.Items[0].Similarity()
	assert.True(t, ok)
	assert.InDelta(t, 0.6, sim, 1e-9)
	rank, ok := page.Items[0].FTSRank()
	assert.True(t, ok)
	assert.Equal(t, 0, rank)
	vrank, ok := page.Items[0].VectorRank()
	assert.True(t, ok)
	assert.Equal(t, 0, vrank)
}

func TestFuse_DisjointInputs(t *testing.T) {
	fts := hits("a", "b", "c")
	vec := []result.Result{similar("x", 0.9), similar("y", 0.5)}

	page := Fuse(fts, vec, 10, 0)

	assert.Equal(t, len(fts)+len(vec), page.Total)
	for _, r := range page.Items {
		if r.ID() == "x" || r.ID() == "y" {
			s, _ := r.Similarity()
			assert.InDelta(t, s*VectorOnlyDiscount, combined(t, r), 1e-9)
			_, inFTS := r.FTSRank()
			assert.False(t, inFTS)
		}
	}
	// a=1, b=0.5, c=0.333, x=0.72, y=0.4
	assert.Equal(t, []string{"a", "x", "b", "y", "c"}, resultIDs(page.Items))
}

func TestFuse_FullTextRankReciprocal(t *testing.T) {
	page := Fuse(hits("a", "b", "c", "d"), nil, 10, 0)

	require.Len(t, page.Items, 4)
	for i, r := range page.Items {
		assert.InDelta(t, 1.0/float64(i+1), combined(t, r), 1e-9)
		_, hasSim := r.Similarity()
		assert.False(t, hasSim)
	}
}

func TestFuse_VectorOnlyBelowConfirmedAtEqualRawScore(t *testing.T) {
	// "b" is at full-text rank 0 with similarity 0.7: (1+0.7)/2 = 0.85.
	// "v" is vector-only at similarity 1.0: 0.8.
	fts := hits("b")
	vec := []result.Result{similar("v", 1.0), similar("b", 0.7)}

	page := Fuse(fts, vec, 10, 0)

	assert.Equal(t, []string{"b", "v"}, resultIDs(page.Items))
}

func TestFuse_StableOnTies(t *testing.T) {
	fts := hits("a")
	vec := []result.Result{similar("v1", 0.5), similar("v2", 0.5), similar("v3", 0.5)}

	page := Fuse(fts, vec, 10, 0)

	assert.Equal(t, []string{"a", "v1", "v2", "v3"}, resultIDs(page.Items))
}

func TestFuse_Pagination(t *testing.T) {
	fts := hits("a", "b", "c", "d", "e")
	vec := []result.Result{similar("x", 0.95), similar("c", 0.9), similar("y", 0.3), similar("z", 0.1)}

	full := Fuse(fts, vec, 100, 0)
	n := full.Total
	require.Equal(t, 8, n)

	for _, limit := range []int{1, 3, 5, 8, 20} {
		var got []string
		for offset := 0; offset < n; offset += limit {
			page := Fuse(fts, vec, limit, offset)
			want := limit
			if rest := n - offset; rest < want {
				want = rest
			}
			assert.Len(t, page.Items, want, "limit=%d offset=%d", limit, offset)
			assert.Equal(t, n, page.Total)
			got = append(got, resultIDs(page.Items)...)
		}
		assert.Equal(t, resultIDs(full.Items), got, "limit=%d", limit)
	}
}

func TestFuse_OffsetPastEnd(t *testing.T) {
	page := Fuse(hits("a"), []result.Result{similar("b", 0.5)}, 10, 5)

	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 2, page.Total)
}

func TestFuse_Empty(t *testing.T) {
	page := Fuse(nil, nil, 10, 0)

	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
}
