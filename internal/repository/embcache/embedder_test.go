package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/db"
	"github.com/derekjytan/xai/internal/domain"
)

// newMemoryCached wires the decorator to a real LRU and a private counter.
func newMemoryCached(inner domain.Embedder) (*CachedEmbedder, *MemoryStore, *prometheus.CounterVec) {
	mem := NewMemoryStore(16)
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	return New(inner, mem, "grok-embedding", time.Hour, counter, zap.NewNop()), mem, counter
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, mem, counter := newMemoryCached(inner)
	ctx := context.Background()

	first, err := ce.Embed(ctx, "rust release notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 10 {
		t.Errorf("miss should report provider tokens, got %d", first.TotalTokens)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", mem.Len())
	}

	second, err := ce.Embed(ctx, "rust release notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit should report zero tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 || second.Embedding[2] != 0.3 {
		t.Errorf("unexpected cached vector: %v", second.Embedding)
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit count = %v, want 1", got)
	}
}

func TestEmbed_InnerErrorIsNotCached(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, mem, _ := newMemoryCached(inner)

	if _, err := ce.Embed(context.Background(), "q"); err == nil {
		t.Fatal("expected error from inner embedder")
	}
	if mem.Len() != 0 {
		t.Errorf("failed embeds must not be cached, got %d entries", mem.Len())
	}
}

func TestBatchEmbed_MixedHitsAndMisses(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.5},
		PromptTokens: 3,
		TotalTokens:  3,
	}}
	ce, mem, _ := newMemoryCached(inner)
	ctx := context.Background()

	if err := mem.SetWithTTL(ctx, ce.cacheKey("cached"), []byte{0, 0, 0x80, 0x3f}, 0); err != nil {
		t.Fatal(err)
	}

	res, err := ce.BatchEmbed(ctx, []string{"first", "cached", "last"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	if res.Embeddings[1][0] != 1 {
		t.Errorf("expected cached vector at index 1, got %v", res.Embeddings[1])
	}
	if res.Embeddings[0][0] != 0.5 || res.Embeddings[2][0] != 0.5 {
		t.Errorf("expected provider vectors for misses, got %v, %v", res.Embeddings[0], res.Embeddings[2])
	}
	if res.TotalTokens != 6 {
		t.Errorf("only misses consume tokens: got %d, want 6", res.TotalTokens)
	}
	if inner.batchCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", inner.batchCalls)
	}
	if mem.Len() != 3 {
		t.Errorf("expected 3 cached entries, got %d", mem.Len())
	}
}

func TestBatchEmbed_AllHitsSkipProvider(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.2}}}
	ce, _, _ := newMemoryCached(inner)
	ctx := context.Background()

	if _, err := ce.BatchEmbed(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := ce.BatchEmbed(ctx, []string{"b", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 1 {
		t.Errorf("second batch should be served from cache, got %d calls", inner.batchCalls)
	}
	if len(res.Embeddings) != 2 || res.TotalTokens != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{
		result:   domain.EmbeddingResult{Embedding: []float32{0.1}},
		batchErr: errors.New("api down"),
	}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	_, err := ce.BatchEmbed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error from inner batch embedder")
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	ce, _ := newTestCachedEmbedder(t, inner)

	res, err := ce.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil for empty input")
	}
}

func TestEmbed_PassesTTL(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	var gotTTL time.Duration
	ms.setFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != time.Hour {
		t.Errorf("expected ttl=1h, got %v", gotTTL)
	}
}

func TestEmbed_SkipsCachingEmptyVector(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Fatal("empty vector must not be cached")
		return nil
	}

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmbed_StoreErrorFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}, TotalTokens: 2}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("redis down")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("redis down")
	}

	res, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("cache errors must not fail the embed: %v", err)
	}
	if res.TotalTokens != 2 || inner.calls != 1 {
		t.Errorf("expected inner result, got %+v after %d calls", res, inner.calls)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.3}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}

	res, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || res.Embedding[0] != 0.3 {
		t.Errorf("expected fresh embedding, got %v", res.Embedding)
	}
}

func TestCacheKey_NamespaceSeparatesModels(t *testing.T) {
	a := New(&mockEmbedder{}, &mockKVStore{}, "model-a", 0, nil, zap.NewNop())
	b := New(&mockEmbedder{}, &mockKVStore{}, "model-b", 0, nil, zap.NewNop())

	if a.cacheKey("same text") == b.cacheKey("same text") {
		t.Error("different namespaces must produce different keys")
	}
	if a.cacheKey("x") != a.cacheKey("x") {
		t.Error("keys must be deterministic")
	}
}

func TestBatchEmbed_SendsOnlyMisses(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}}}
	mem := NewMemoryStore(10)
	ce := New(inner, mem, "m", 0, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := ce.Embed(ctx, "warm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ce.BatchEmbed(ctx, []string{"cold", "warm"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.lastBatch) != 1 || inner.lastBatch[0] != "cold" {
		t.Errorf("expected only the miss to be sent, got %v", inner.lastBatch)
	}
	if mem.Len() != 2 {
		t.Errorf("expected 2 cached entries, got %d", mem.Len())
	}
}

func TestBatchEmbed_ShortProviderReply(t *testing.T) {
	inner := &mockEmbedder{batchResult: domain.BatchEmbeddingResult{Embeddings: [][]float32{{1}}}}
	ce, _ := newTestCachedEmbedder(t, inner)

	_, err := ce.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

type healthyEmbedder struct {
	mockEmbedder
	err error
}

func (h *healthyEmbedder) HealthCheck(context.Context) error { return h.err }

func TestHealthCheck_ForwardsToInner(t *testing.T) {
	down := errors.New("provider down")
	ce, _ := newTestCachedEmbedder(t, &healthyEmbedder{err: down})
	if err := ce.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected inner error, got %v", err)
	}

	plain, _ := newTestCachedEmbedder(t, &mockEmbedder{})
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected nil for embedder without health check, got %v", err)
	}
}
