// internal/generation/cache/memory.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Store is the persistence behind the result cache. Get reports found=false
// for unknown fingerprints; Put may apply the TTL natively (Redis) or leave
// expiry to the read path (memory).
type Store interface {
	Get(ctx context.Context, fingerprint string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, fingerprint string) error
}

// MemoryStore is a bounded in-process store with LRU eviction. It is the
// default backend for single-instance deployments; Redis takes over when the
// cache must survive restarts or be shared.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front = most recently used
	entries    map[string]*list.Element
}

type memoryItem struct {
	fingerprint string
	entry       Entry
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (s *MemoryStore) Get(ctx context.Context, fingerprint string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[fingerprint]
	if !ok {
		return Entry{}, false, nil
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*memoryItem).entry, true, nil
}

func (s *MemoryStore) Put(ctx context.Context, entry Entry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[entry.Fingerprint]; ok {
		elem.Value.(*memoryItem).entry = entry
		s.order.MoveToFront(elem)
		return nil
	}

	elem := s.order.PushFront(&memoryItem{fingerprint: entry.Fingerprint, entry: entry})
	s.entries[entry.Fingerprint] = elem

	for s.order.Len() > s.maxEntries {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*memoryItem).fingerprint)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[fingerprint]; ok {
		s.order.Remove(elem)
		delete(s.entries, fingerprint)
	}
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
