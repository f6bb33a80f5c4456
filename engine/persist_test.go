package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFlushAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")

	src := testServer(
		Record{Name: "demo/a", SizeBytes: 12, ReceivedAt: time.Now().Truncate(time.Second), DecodedText: "temp: 21.5"},
		Record{Name: "demo/b", SizeBytes: 34, ReceivedAt: time.Now().Truncate(time.Second)},
	)
	src.cacheFile = path

	if err := src.FlushToFile(); err != nil {
		t.Fatal(err)
	}

	dst := testServer()
	if err := dst.LoadFromFile(path); err != nil {
		t.Fatal(err)
	}

	if dst.store.Count() != 2 {
		t.Fatalf("expected 2 restored topics, got %d", dst.store.Count())
	}
	got, ok := dst.store.Get("demo/a")
	if !ok {
		t.Fatal("demo/a not restored")
	}
	want, _ := src.store.Get("demo/a")
	if got.SizeBytes != want.SizeBytes || got.DecodedText != want.DecodedText {
		t.Errorf("restored record differs:\n got %+v\nwant %+v", got, want)
	}
	if !got.ReceivedAt.Equal(want.ReceivedAt) {
		t.Errorf("restored timestamp differs: got %v want %v", got.ReceivedAt, want.ReceivedAt)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	s := testServer()
	if err := s.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing cache file should not be an error, got %v", err)
	}
	if s.store.Count() != 0 {
		t.Errorf("expected empty store, got %d", s.store.Count())
	}
}

func TestLoadFromFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	if err := os.WriteFile(path, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := testServer()
	if err := s.LoadFromFile(path); err != nil {
		t.Errorf("empty cache file should not be an error, got %v", err)
	}
}

func TestLoadFromFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	s := testServer()
	if err := s.LoadFromFile(path); err == nil {
		t.Error("expected parse error for corrupt cache file")
	}
}

func TestFlushToFile_NoPathConfigured(t *testing.T) {
	s := testServer(Record{Name: "demo/a"})
	if err := s.FlushToFile(); err != nil {
		t.Errorf("flush without a cache file should be a no-op, got %v", err)
	}
}

func TestFlushToFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")

	s := testServer(Record{Name: "demo/a", SizeBytes: 1, ReceivedAt: time.Now()})
	s.cacheFile = path
	if err := s.FlushToFile(); err != nil {
		t.Fatal(err)
	}

	s.store.Upsert(Record{Name: "demo/b", SizeBytes: 2, ReceivedAt: time.Now()})
	if err := s.FlushToFile(); err != nil {
		t.Fatal(err)
	}

	fresh := testServer()
	if err := fresh.LoadFromFile(path); err != nil {
		t.Fatal(err)
	}
	if fresh.store.Count() != 2 {
		t.Errorf("expected rewritten cache with 2 topics, got %d", fresh.store.Count())
	}

	// no stray temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the cache file in dir, got %d entries", len(entries))
	}
}
