package cache

import (
	"context"
	"sync"
	"time"
)

// memoryEntry pairs a value with its absolute expiry deadline. A zero
// deadline means the entry never expires.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is the in-process fallback Store. Unlike the original
// single-map fallback it enforces TTLs, so behavior matches the Redis
// backend apart from persistence scope.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is stubbed in tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Store. Expired entries are treated as misses and removed.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := s.entries[key]; ok && !cur.expiresAt.IsZero() && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var deadline time.Time
	if ttl > 0 {
		deadline = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, expiresAt: deadline}
	s.mu.Unlock()
	return nil
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return "memory" }

// Len reports the number of stored entries, counting expired ones that have
// not been read yet.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
