package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/zenwatch/zenwatch/metrics"
)

// Differ periodically snapshots the store, diffs against its previous view
// and publishes the resulting delta to the hub. It is the only consumer of
// Store.Snapshot and owns the previous snapshot exclusively.
type Differ struct {
	store *Store
	hub   *Hub

	prev map[string]Record
}

func NewDiffer(store *Store, hub *Hub) *Differ {
	return &Differ{
		store: store,
		hub:   hub,
		prev:  make(map[string]Record),
	}
}

// Step computes the delta between the current store state and the previous
// snapshot, then advances the previous snapshot. Updated entries are sorted
// alphabetically by name so initial populations are deterministic.
func (d *Differ) Step() Delta {
	current := d.store.Snapshot()

	var delta Delta
	for name, rec := range current {
		if old, ok := d.prev[name]; !ok || old != rec {
			delta.Updated = append(delta.Updated, rec)
		}
	}
	for name := range d.prev {
		if _, ok := current[name]; !ok {
			delta.Removed = append(delta.Removed, name)
		}
	}

	slices.SortFunc(delta.Updated, func(a, b Record) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.Sort(delta.Removed)

	d.prev = current
	return delta
}

// step is Step with panic containment: a failed cycle leaves the previous
// snapshot untouched and the next tick retries.
func (d *Differ) step() (delta Delta, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("diff cycle panicked: %v", r)
		}
	}()
	return d.Step(), nil
}

// Run ticks at the given period until ctx is cancelled. Every tick publishes
// its delta, empty ones included, so connected viewers see a steady cadence.
func (d *Differ) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			delta, err := d.step()
			if err != nil {
				slog.Warn("diff failed, retrying next tick", "error", err)
				continue
			}
			if !delta.Empty() {
				slog.Debug("publishing delta", "updated", len(delta.Updated), "removed", len(delta.Removed))
			}
			d.hub.Publish(delta)
			metrics.IncDeltasPublished()
		}
	}
}
