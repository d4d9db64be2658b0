// Package cache holds query results fetched through the client and the
// coordinator that marks them stale when the node pushes domain events. A
// stale entry stays readable; the next consumer read re-executes the call
// and overwrites it.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Entry is one cached query result.
type Entry struct {
	Value    any
	StoredAt time.Time
	Stale    bool
}

// Store is a mutex-protected key/value cache. Keys are slash-separated
// paths, e.g. "channels/evm:11155111", so whole families can be invalidated
// by prefix.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Value: value, StoredAt: s.now()}
}

func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// MarkStalePrefix marks every entry under prefix stale and reports how many
// were touched. Marking an absent key is a no-op, not an error.
func (s *Store) MarkStalePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) && !e.Stale {
			e.Stale = true
			s.entries[key] = e
			n++
		}
	}
	return n
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Keys returns a snapshot of all cached keys.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}
