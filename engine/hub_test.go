package engine

import (
	"testing"
)

func TestHub_FanOut(t *testing.T) {
	h := NewHub()

	s1 := h.Subscribe()
	s2 := h.Subscribe()
	defer h.Unsubscribe(s1)
	defer h.Unsubscribe(s2)

	h.Publish(Delta{Updated: []Record{{Name: "a"}}})

	for _, s := range []*Session{s1, s2} {
		select {
		case delta := <-s.C:
			if len(delta.Updated) != 1 || delta.Updated[0].Name != "a" {
				t.Errorf("unexpected delta: %+v", delta)
			}
		default:
			t.Error("session should have received the delta")
		}
	}
}

func TestHub_DisconnectOnOverflow(t *testing.T) {
	h := NewHub()

	s := h.Subscribe()

	// one more than the buffer: the last publish drops the session
	for i := 0; i <= sessionBuffer; i++ {
		h.Publish(Delta{})
	}

	if h.SessionCount() != 0 {
		t.Fatalf("slow session should be dropped, still %d registered", h.SessionCount())
	}

	// channel must be closed so the handler loop terminates
	for i := 0; i < sessionBuffer; i++ {
		<-s.C
	}
	if _, ok := <-s.C; ok {
		t.Error("dropped session channel should be closed")
	}
}

func TestHub_OverflowDoesNotAffectOthers(t *testing.T) {
	h := NewHub()

	slow := h.Subscribe()
	fast := h.Subscribe()
	defer h.Unsubscribe(fast)

	for i := 0; i <= sessionBuffer; i++ {
		h.Publish(Delta{})
		// keep the fast one draining
		select {
		case <-fast.C:
		default:
		}
	}

	if h.SessionCount() != 1 {
		t.Errorf("only the slow session should be dropped, got %d remaining", h.SessionCount())
	}
	if _, ok := <-slow.C; ok {
		// drain until closed
		for range slow.C {
		}
	}
}

func TestHub_UnsubscribeIdempotent(t *testing.T) {
	h := NewHub()

	s := h.Subscribe()
	h.Unsubscribe(s)
	h.Unsubscribe(s) // second call must not panic on the closed channel

	if h.SessionCount() != 0 {
		t.Errorf("expected 0 sessions, got %d", h.SessionCount())
	}
}

func TestHub_UnsubscribeAfterOverflowDrop(t *testing.T) {
	h := NewHub()

	s := h.Subscribe()
	for i := 0; i <= sessionBuffer; i++ {
		h.Publish(Delta{})
	}

	// the hub already dropped the session; the handler's deferred
	// unsubscribe must be a no-op
	h.Unsubscribe(s)
}
