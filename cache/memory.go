package cache

import (
	"context"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
)

type memoryEntry struct {
	value    string
	absolute time.Time
	sliding  time.Duration
	expires  time.Time // zero when the entry never expires
}

// MemoryStore keeps entries in process. It is used when no Redis server is
// configured. Expired entries are dropped the next time they are read.
type MemoryStore struct {
	clock   clock.Clock
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryStore(clock clock.Clock) *MemoryStore {
	return &MemoryStore{
		clock:   clock,
		entries: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if !found {
		return "", ErrNotFound
	}

	now := s.clock.Now()
	if !e.expires.IsZero() && !now.Before(e.expires) {
		delete(s.entries, key)
		return "", ErrNotFound
	}

	// Restart the sliding window
	if d, ok := ttl(now, e.absolute, e.sliding); ok {
		e.expires = now.Add(d)
	}
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, opts EntryOptions) error {
	now := s.clock.Now()
	e := &memoryEntry{
		value:    value,
		absolute: absoluteDeadline(now, opts),
		sliding:  opts.SlidingExpiration,
	}
	if d, ok := ttl(now, e.absolute, e.sliding); ok {
		e.expires = now.Add(d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len is the number of entries held, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
