package engine

import (
	"encoding/json"
	"net/http"
)

// handleTopics returns the full current state as a JSON array, sorted by
// name. Backs the `zenwatch ls` client.
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	delta := s.initialDelta()
	records := delta.Updated
	if records == nil {
		records = []Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

type configResponse struct {
	HasDecoder     bool  `json:"has_decoder"`
	ReloadPeriodMS int64 `json:"reload_period_ms"`
}

// handleConfig tells the frontend whether a decoded-content column exists
// and how often the server diffs.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(configResponse{
		HasDecoder:     s.ingest.HasDecoder(),
		ReloadPeriodMS: s.reloadPeriod.Milliseconds(),
	})
}
