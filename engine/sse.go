package engine

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// initialDelta treats the viewer's previous snapshot as empty: every current
// record goes into updated, alphabetically, and removed stays empty.
func (s *Server) initialDelta() Delta {
	snapshot := s.store.Snapshot()

	var delta Delta
	for _, rec := range snapshot {
		delta.Updated = append(delta.Updated, rec)
	}
	slices.SortFunc(delta.Updated, func(a, b Record) int {
		return strings.Compare(a.Name, b.Name)
	})
	return delta
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Subscribe before snapshotting so no delta between the two is missed;
	// a duplicate update in the first delta is a harmless re-upsert
	// client-side.
	session := s.hub.Subscribe()
	defer s.hub.Unsubscribe(session)

	slog.Debug("viewer connected", "session", session.ID(), "remote", r.RemoteAddr)

	if err := writeEvent(w, flusher, s.initialDelta()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case delta, ok := <-session.C:
			if !ok {
				// dropped by the hub for falling behind
				return
			}
			if err := writeEvent(w, flusher, delta); err != nil {
				slog.Debug("viewer disconnected", "session", session.ID())
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, delta Delta) error {
	data, err := json.Marshal(delta)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: message\ndata: " + string(data) + "\n\n")); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
