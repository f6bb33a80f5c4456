package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile restores a previously flushed topic snapshot. A missing file
// is not an error; a half-written one is.
func (s *Server) LoadFromFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var records []Record
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}

	for _, r := range records {
		if r.Name == "" {
			continue
		}
		s.store.Upsert(r)
	}

	slog.Info("restored topics from cache file", "count", len(records), "path", path)
	return nil
}

// FlushToFile writes the current state to the cache file atomically:
// temp file in the same directory, then rename.
func (s *Server) FlushToFile() error {
	if s.cacheFile == "" {
		return nil
	}

	records := s.initialDelta().Updated

	raw, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	dir := filepath.Dir(s.cacheFile)
	tmpFile, err := os.CreateTemp(dir, ".zenwatch-cache-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(raw); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.cacheFile); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", s.cacheFile, err)
	}

	return nil
}

// StartPeriodicFlush writes the cache file at the given interval until ctx
// is cancelled. A failed flush keeps the previous file intact.
func (s *Server) StartPeriodicFlush(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.FlushToFile(); err != nil {
					slog.Warn("cache flush failed", "error", err)
				}
			}
		}
	}()
}
