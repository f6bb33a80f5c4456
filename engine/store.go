package engine

import (
	"sync"
	"time"
)

// Store is the single source of truth: topic name -> latest record.
// The ingest side is the only writer, the differ the only reader that
// matters; both go through Upsert/Snapshot and nobody outside this type
// ever takes the lock.
type Store struct {
	l sync.RWMutex

	// ttl > 0 enables eviction of topics that stopped publishing.
	// Zero keeps every topic forever, which is the default behaviour.
	ttl time.Duration

	topics map[string]Record
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:    ttl,
		topics: make(map[string]Record),
	}
}

// Upsert inserts or replaces the record for r.Name. No history is kept.
func (s *Store) Upsert(r Record) {
	s.l.Lock()
	s.topics[r.Name] = r
	s.l.Unlock()
}

// Snapshot returns an independent copy of the current state. Concurrent
// upserts during the copy are either in or out, never partial.
func (s *Store) Snapshot() map[string]Record {
	s.l.RLock()
	defer s.l.RUnlock()

	out := make(map[string]Record, len(s.topics))
	for k, v := range s.topics {
		out[k] = v
	}
	return out
}

func (s *Store) Get(name string) (Record, bool) {
	s.l.RLock()
	defer s.l.RUnlock()
	r, ok := s.topics[name]
	return r, ok
}

func (s *Store) Count() int {
	s.l.RLock()
	defer s.l.RUnlock()
	return len(s.topics)
}
