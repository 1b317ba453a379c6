package embedding

import (
	"context"
	"crypto/md5" //nolint:gosec // feature hashing, not security
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/derekjytan/xai/internal/domain"
)

// DefaultHashDimensions is the width of hash embeddings.
const DefaultHashDimensions = 128

const (
	ngramSize   = 3
	ngramWeight = 0.5
)

// HashEmbedder derives deterministic vectors from word and character trigram
// hashes. It needs no provider and consumes no tokens.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash embedder of the given width.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Dimensions returns the vector width.
func (h *HashEmbedder) Dimensions() int { return h.dims }

// Embed returns the L2-normalized hash vector of text. Blank text yields a
// zero vector.
func (h *HashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: h.vector(text)}, nil
}

// BatchEmbed embeds each text independently.
func (h *HashEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	vec := make([]float32, h.dims)
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return vec
	}

	words := strings.Fields(text)
	grams := ngrams(text, ngramSize)
	denom := float64(len(words)) + float64(len(grams))*ngramWeight + 1

	values := make([]float64, h.dims)
	var norm float64
	for i := range values {
		suffix := "_" + strconv.Itoa(i)
		var wordVal, gramVal float64
		for _, w := range words {
			wordVal += hashCombo(w + suffix)
		}
		for _, g := range grams {
			gramVal += hashCombo(g + suffix)
		}
		values[i] = (wordVal + gramVal*ngramWeight) / denom
		norm += values[i] * values[i]
	}

	norm = math.Sqrt(norm)
	for i, v := range values {
		if norm > 0 {
			v /= norm
		}
		vec[i] = float32(v)
	}
	return vec
}

// hashCombo maps s to [-0.5, 0.5) from the first 32 bits of its MD5 digest.
func hashCombo(s string) float64 {
	sum := md5.Sum([]byte(s)) //nolint:gosec // feature hashing
	return float64(binary.BigEndian.Uint32(sum[:4]))/(1<<32) - 0.5
}

func ngrams(text string, n int) []string {
	r := []rune(text)
	if len(r) < n {
		return nil
	}
	out := make([]string, 0, len(r)-n+1)
	for i := 0; i+n <= len(r); i++ {
		out = append(out, string(r[i:i+n]))
	}
	return out
}
