package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// sessionBuffer is how many deltas a viewer may fall behind before it is
// disconnected. Dropping individual deltas would silently desynchronize the
// viewer's table; disconnecting forces a reconnect and a fresh snapshot.
const sessionBuffer = 16

type Session struct {
	id string

	// C is closed by the hub when the session is dropped.
	C chan Delta
}

func (s *Session) ID() string { return s.id }

// Hub fans each delta out to all connected viewer sessions. Publishing never
// blocks: a session whose buffer is full is dropped on the spot.
type Hub struct {
	l        sync.Mutex
	sessions map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[*Session]struct{}),
	}
}

func (h *Hub) Subscribe() *Session {
	s := &Session{
		id: uuid.NewString(),
		C:  make(chan Delta, sessionBuffer),
	}

	h.l.Lock()
	h.sessions[s] = struct{}{}
	h.l.Unlock()

	return s
}

// Unsubscribe is idempotent: a session already dropped by Publish is ignored.
func (h *Hub) Unsubscribe(s *Session) {
	h.l.Lock()
	defer h.l.Unlock()

	if _, ok := h.sessions[s]; !ok {
		return
	}
	close(s.C)
	delete(h.sessions, s)
}

func (h *Hub) Publish(d Delta) {
	h.l.Lock()
	defer h.l.Unlock()

	for s := range h.sessions {
		select {
		case s.C <- d:
		default:
			slog.Warn("viewer too slow, dropping session", "session", s.id)
			close(s.C)
			delete(h.sessions, s)
		}
	}
}

func (h *Hub) SessionCount() int {
	h.l.Lock()
	defer h.l.Unlock()
	return len(h.sessions)
}
