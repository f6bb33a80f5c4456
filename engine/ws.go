package engine

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS serves the same one-way delta stream as /sse over a WebSocket,
// for viewers behind proxies that buffer event streams.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	session := s.hub.Subscribe()
	defer s.hub.Unsubscribe(session)

	// The stream is one-way; reads only serve to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(s.initialDelta()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case delta, ok := <-session.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(delta); err != nil {
				slog.Debug("viewer disconnected", "session", session.ID())
				return
			}
		}
	}
}
