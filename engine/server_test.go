package engine

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func testServer(records ...Record) *Server {
	store := NewStore(0)
	for _, r := range records {
		store.Upsert(r)
	}
	return &Server{
		store:        store,
		hub:          NewHub(),
		ingest:       NewIngest(store, nil),
		reloadPeriod: time.Second,
	}
}

func TestHandleTopics(t *testing.T) {
	s := testServer(
		Record{Name: "b", SizeBytes: 2, ReceivedAt: time.Now()},
		Record{Name: "a", SizeBytes: 1, ReceivedAt: time.Now()},
	)

	rr := httptest.NewRecorder()
	s.handleTopics(rr, httptest.NewRequest("GET", "/api/topics", nil))

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var records []Record
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Name != "a" || records[1].Name != "b" {
		t.Errorf("expected [a b] sorted, got %+v", records)
	}
}

func TestHandleTopics_Empty(t *testing.T) {
	s := testServer()

	rr := httptest.NewRecorder()
	s.handleTopics(rr, httptest.NewRequest("GET", "/api/topics", nil))

	// an empty cache is an empty array, not null
	if got := rr.Body.String(); got != "[]\n" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestHandleConfig(t *testing.T) {
	s := testServer()
	s.reloadPeriod = 250 * time.Millisecond

	rr := httptest.NewRecorder()
	s.handleConfig(rr, httptest.NewRequest("GET", "/api/config", nil))

	var cfg configResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.HasDecoder {
		t.Error("no decoder configured, has_decoder should be false")
	}
	if cfg.ReloadPeriodMS != 250 {
		t.Errorf("expected 250ms, got %d", cfg.ReloadPeriodMS)
	}
}

func TestInitialDelta(t *testing.T) {
	s := testServer(
		Record{Name: "z"},
		Record{Name: "a"},
		Record{Name: "m"},
	)

	delta := s.initialDelta()
	if len(delta.Updated) != 3 {
		t.Fatalf("expected all records, got %d", len(delta.Updated))
	}
	if delta.Updated[0].Name != "a" || delta.Updated[2].Name != "z" {
		t.Errorf("expected alphabetical order, got %+v", delta.Updated)
	}
	if len(delta.Removed) != 0 {
		t.Errorf("initial delta must have no removals, got %v", delta.Removed)
	}
}
