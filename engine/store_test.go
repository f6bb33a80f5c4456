package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNewStore(t *testing.T) {
	s := NewStore(0)
	if s == nil {
		t.Fatal("NewStore returned nil")
	}
	if s.Count() != 0 {
		t.Errorf("new store should be empty, got %d", s.Count())
	}
}

func TestUpsert_Replaces(t *testing.T) {
	s := NewStore(0)
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	s.Upsert(Record{Name: "/robot/pose", SizeBytes: 48, ReceivedAt: t1})
	s.Upsert(Record{Name: "/robot/pose", SizeBytes: 52, ReceivedAt: t2})

	if s.Count() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Count())
	}

	r, ok := s.Get("/robot/pose")
	if !ok {
		t.Fatal("record should exist")
	}
	if r.SizeBytes != 52 || !r.ReceivedAt.Equal(t2) {
		t.Errorf("record should hold the latest state, got %+v", r)
	}
}

func TestSnapshot_Independent(t *testing.T) {
	s := NewStore(0)
	s.Upsert(Record{Name: "a", SizeBytes: 1})

	snap := s.Snapshot()

	s.Upsert(Record{Name: "a", SizeBytes: 2})
	s.Upsert(Record{Name: "b", SizeBytes: 3})

	if len(snap) != 1 {
		t.Fatalf("snapshot should not grow, got %d entries", len(snap))
	}
	if snap["a"].SizeBytes != 1 {
		t.Error("snapshot should not see later upserts")
	}

	// mutating the snapshot must not leak back into the store
	snap["c"] = Record{Name: "c"}
	if _, ok := s.Get("c"); ok {
		t.Error("store should not see snapshot mutations")
	}
}

func TestStore_ConcurrentUpsertSnapshot(t *testing.T) {
	s := NewStore(0)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			name := fmt.Sprintf("topic/%d", i%32)
			s.Upsert(Record{Name: name, SizeBytes: uint64(i), ReceivedAt: time.Now()})
		}
	}()

	for i := 0; i < 100; i++ {
		snap := s.Snapshot()
		for name, rec := range snap {
			if rec.Name != name {
				t.Fatalf("torn record in snapshot: key %q holds %q", name, rec.Name)
			}
		}
	}

	close(stop)
	wg.Wait()
}

func TestEvict_RemovesStale(t *testing.T) {
	s := NewStore(time.Minute)
	now := time.Now()

	s.Upsert(Record{Name: "stale", ReceivedAt: now.Add(-2 * time.Minute)})
	s.Upsert(Record{Name: "fresh", ReceivedAt: now})

	n := s.evict(now)
	if n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if _, ok := s.Get("stale"); ok {
		t.Error("stale topic should be evicted")
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("fresh topic should remain")
	}
}

func TestEvict_Disabled(t *testing.T) {
	s := NewStore(0)
	s.Upsert(Record{Name: "old", ReceivedAt: time.Now().Add(-24 * time.Hour)})

	if n := s.evict(time.Now()); n != 0 {
		t.Errorf("ttl disabled, expected 0 evictions, got %d", n)
	}
	if s.Count() != 1 {
		t.Error("nothing should be evicted with ttl disabled")
	}
}
