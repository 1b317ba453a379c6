package embcache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/derekjytan/xai/internal/db"
)

// DefaultMemorySize is the in-process cache capacity when none is configured.
const DefaultMemorySize = 1000

// MemoryStore is an in-process LRU implementing the cache store. Entries are
// evicted by size; TTLs are ignored.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

// NewMemoryStore creates an LRU store holding up to size entries.
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	cache, _ := lru.New[string, []byte](size)
	return &MemoryStore{cache: cache}
}

// Get returns the value or db.ErrKeyNotFound.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

// SetWithTTL stores the value.
func (m *MemoryStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.cache.Add(key, value)
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
