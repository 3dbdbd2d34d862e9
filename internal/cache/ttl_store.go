package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"
)

// ttlEntry holds one cached value with its expiry deadline. Data is snappy
// compressed; entries are fully replaced on Set, never patched in place.
type ttlEntry struct {
	data      []byte
	expiresAt time.Time
}

// TTLStore is an in-process Store with per-key TTL expiry. Expired entries
// are dropped lazily on Get and swept periodically by a janitor goroutine.
type TTLStore struct {
	mu      sync.RWMutex
	entries map[string]ttlEntry

	// Statistics
	hits     int64
	misses   int64
	expiries int64

	done chan struct{}
	once sync.Once
}

// NewTTLStore creates a TTL store and starts its sweep janitor.
func NewTTLStore(sweepInterval time.Duration) *TTLStore {
	s := &TTLStore{
		entries: make(map[string]ttlEntry),
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.janitor(sweepInterval)
	}
	return s
}

// Get returns the value under key, or a miss if absent or expired.
func (s *TTLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		s.mu.Lock()
		s.misses++
		s.mu.Unlock()
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have renewed it.
		if current, ok := s.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(s.entries, key)
			s.expiries++
		}
		s.misses++
		s.mu.Unlock()
		return nil, false, nil
	}

	data, err := snappy.Decode(nil, entry.data)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: decompress: %w", key, err)
	}

	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
	return data, true, nil
}

// Set stores value under key for the given TTL, replacing any prior entry.
// A non-positive TTL makes the entry immediately unreachable.
func (s *TTLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	compressed := snappy.Encode(nil, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = ttlEntry{
		data:      compressed,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Stats returns hit, miss and expiry counters.
func (s *TTLStore) Stats() (hits, misses, expiries int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses, s.expiries
}

// Len returns the number of live (unswept) entries.
func (s *TTLStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the janitor.
func (s *TTLStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *TTLStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *TTLStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			s.expiries++
		}
	}
}
