package embcache

import (
	"context"
	"errors"
	"testing"

	"github.com/derekjytan/xai/internal/db"
)

func TestMemoryStore_GetSet(t *testing.T) {
	m := NewMemoryStore(2)
	ctx := context.Background()

	if _, err := m.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := m.SetWithTTL(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected v, got %q (%v)", got, err)
	}
}

func TestMemoryStore_EvictsLeastRecent(t *testing.T) {
	m := NewMemoryStore(2)
	ctx := context.Background()

	_ = m.SetWithTTL(ctx, "a", []byte("1"), 0)
	_ = m.SetWithTTL(ctx, "b", []byte("2"), 0)
	_, _ = m.Get(ctx, "a")
	_ = m.SetWithTTL(ctx, "c", []byte("3"), 0)

	if _, err := m.Get(ctx, "b"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Error("expected b to be evicted")
	}
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Error("expected a to survive")
	}
}

func TestNewMemoryStore_DefaultSize(t *testing.T) {
	m := NewMemoryStore(0)
	if m.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}
