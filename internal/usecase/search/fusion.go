package search

import (
	"sort"

	"github.com/derekjytan/xai/internal/domain/search/result"
)

// VectorOnlyDiscount scales the similarity of posts found only by vector
// search, so they rank below posts both retrievers agree on.
const VectorOnlyDiscount = 0.8

// Fuse merges a full-text list and a vector list, both already ranked, and
// returns the requested window of the merged ranking.
//
// A full-text hit at position i scores 1/(i+1). A vector hit with similarity s
// that full-text also found scores the mean of its reciprocal rank and s; a
// vector-only hit scores s*VectorOnlyDiscount. Equal scores keep full-text
// order first, then vector order.
func Fuse(fts, vec []result.Result, limit, offset int) result.Page {
	merged := make([]result.Result, 0, len(fts)+len(vec))
	index := make(map[string]int, len(fts)+len(vec))

	for i, r := range fts {
		if _, dup := index[r.ID()]; dup {
			continue
		}
		index[r.ID()] = len(merged)
		merged = append(merged, r.WithFTSRank(i).WithCombined(reciprocalRank(i)))
	}

	for j, r := range vec {
		s, _ := r.Similarity()
		if k, ok := index[r.ID()]; ok {
			existing := merged[k]
			if _, already := existing.VectorRank(); already {
				continue
			}
			rank, _ := existing.FTSRank()
			merged[k] = existing.
				WithSimilarity(s).
				WithVectorRank(j).
				WithCombined((reciprocalRank(rank) + s) / 2)
			continue
		}
		index[r.ID()] = len(merged)
		merged = append(merged, r.WithVectorRank(j).WithCombined(s*VectorOnlyDiscount))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, _ := merged[i].Combined()
		b, _ := merged[j].Combined()
		return a > b
	})

	return result.Page{Items: window(merged, limit, offset), Total: len(merged)}
}

func reciprocalRank(rank int) float64 {
	return 1.0 / float64(rank+1)
}
