package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/search/filter"
	"github.com/derekjytan/xai/internal/domain/search/result"
	"github.com/derekjytan/xai/internal/metrics"
)

// VectorSearcher ranks every embedded post by cosine similarity to the query.
type VectorSearcher struct {
	corpus Corpus
	embed  Embedder
	logger *zap.Logger
}

// NewVectorSearcher creates a vector searcher.
func NewVectorSearcher(corpus Corpus, embed Embedder, logger *zap.Logger) *VectorSearcher {
	return &VectorSearcher{corpus: corpus, embed: embed, logger: logger}
}

// Search embeds query and scans the corpus. Date bounds in f are ignored.
// An embedding failure yields an empty page, not an error.
func (s *VectorSearcher) Search(
	ctx context.Context, query string, f filter.Filter, limit, offset int,
) (result.Page, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return result.Page{}, ctx.Err()
		}
		metrics.CollaboratorFailuresTotal.WithLabelValues("embedding").Inc()
		s.logger.Warn("query embedding failed, skipping vector search", zap.Error(err))
		return result.EmptyPage(), nil
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
	if len(emb.Embedding) == 0 {
		return result.EmptyPage(), nil
	}

	posts, err := s.corpus.FindWithEmbeddings(ctx, f)
	if err != nil {
		return result.Page{}, fmt.Errorf("load embeddings: %w", err)
	}

	scored := make([]result.Result, 0, len(posts))
	for _, p := range posts {
		if len(p.Embedding) == 0 || len(p.Embedding) != len(emb.Embedding) {
			metrics.MalformedEmbeddingsTotal.Inc()
			s.logger.Debug("skipping malformed embedding",
				zap.String("post_id", p.PostID),
				zap.Int("dims", len(p.Embedding)),
				zap.Int("want", len(emb.Embedding)),
			)
			continue
		}
		sim := CosineSimilarity(emb.Embedding, p.Embedding)
		if math.IsNaN(sim) || math.IsInf(sim, 0) {
			metrics.MalformedEmbeddingsTotal.Inc()
			s.logger.Debug("skipping non-finite embedding", zap.String("post_id", p.PostID))
			continue
		}
		scored = append(scored, result.New(p).WithSimilarity(sim))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, _ := scored[i].Similarity()
		b, _ := scored[j].Similarity()
		return a > b
	})

	return result.Page{Items: window(scored, limit, offset), Total: len(scored)}, nil
}

// CosineSimilarity is the dot product of a and b over the product of their
// norms. It is 0 when either vector is all zeros or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// window returns items[offset:offset+limit], clamped.
func window(items []result.Result, limit, offset int) []result.Result {
	if offset >= len(items) {
		return []result.Result{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
