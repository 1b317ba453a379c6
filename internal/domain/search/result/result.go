package result

import "github.com/derekjytan/xai/internal/domain/post"

// Result is a single search hit: a post plus whatever scores retrieval and
// fusion attached to it.
type Result struct {
	post       post.Post
	relevance  *float64
	similarity *float64
	combined   *float64
	ftsRank    int
	vectorRank int
}

// New wraps a post with no scores.
func New(p post.Post) Result {
	return Result{post: p, ftsRank: -1, vectorRank: -1}
}

// WithRelevance attaches the full-text engine's native score.
func (r Result) WithRelevance(score float64) Result {
	r.relevance = &score
	return r
}

// WithSimilarity attaches the cosine similarity to the query vector.
func (r Result) WithSimilarity(score float64) Result {
	r.similarity = &score
	return r
}

// WithCombined attaches the fusion score.
func (r Result) WithCombined(score float64) Result {
	r.combined = &score
	return r
}

// WithFTSRank records the 0-based position in the full-text list.
func (r Result) WithFTSRank(rank int) Result {
	r.ftsRank = rank
	return r
}

// WithVectorRank records the 0-based position in the vector list.
func (r Result) WithVectorRank(rank int) Result {
	r.vectorRank = rank
	return r
}

// ID returns the external post id.
func (r Result) ID() string { return r.post.PostID }

// Post returns the underlying post.
func (r Result) Post() post.Post { return r.post }

// Relevance returns the full-text score, if any.
func (r Result) Relevance() (float64, bool) { return deref(r.relevance) }

// Similarity returns the vector similarity, if any.
func (r Result) Similarity() (float64, bool) { return deref(r.similarity) }

// Combined returns the fusion score, if any.
func (r Result) Combined() (float64, bool) { return deref(r.combined) }

// FTSRank returns the full-text position, if any.
func (r Result) FTSRank() (int, bool) { return r.ftsRank, r.ftsRank >= 0 }

// VectorRank returns the vector position, if any.
func (r Result) VectorRank() (int, bool) { return r.vectorRank, r.vectorRank >= 0 }

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Posts extracts the posts of a result list, preserving order.
func Posts(results []Result) []post.Post {
	out := make([]post.Post, len(results))
	for i, r := range results {
		out[i] = r.post
	}
	return out
}

// Page is one window of a ranked result list plus the size of the whole list.
type Page struct {
	Items []Result
	Total int
}

// EmptyPage is a page with no hits.
func EmptyPage() Page {
	return Page{Items: []Result{}}
}
