package engine

import (
	"context"
	"log/slog"
	"time"
)

// evict drops every topic whose last update is older than the store's ttl.
// Removal is not broadcast anywhere: the differ discovers it by absence
// between two snapshots, which is the only way `removed` is ever populated.
func (s *Store) evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	deadline := now.Add(-s.ttl)

	s.l.Lock()
	defer s.l.Unlock()

	n := 0
	for k, v := range s.topics {
		if v.ReceivedAt.Before(deadline) {
			delete(s.topics, k)
			n++
		}
	}
	return n
}

// StartEviction runs the ttl sweep once a second until ctx is cancelled.
// No-op when ttl is disabled.
func (s *Store) StartEviction(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.evict(time.Now()); n > 0 {
					slog.Debug("evicted stale topics", "count", n)
				}
			}
		}
	}()
}
