package game

import "testing"

var testField = Field{Width: 120, Height: 80} // Arena center (60, 40), radius 32

func newTestSession(t *testing.T, mutate func(*Config)) *Session {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(cfg, testField, WithSeed(1))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func startSession(t *testing.T, s *Session) {
	t.Helper()
	events := s.Start()
	if len(events) != 1 || events[0].Type != EventStarted {
		t.Fatalf("Start() = %v, want one started event", events)
	}
}

// forceBreach drags hazard id past the boundary, releases it and runs a frame.
func forceBreach(t *testing.T, s *Session, id int) []Event {
	t.Helper()
	a := s.Arena()
	if !s.DragStart(id) {
		t.Fatalf("DragStart(%d) rejected", id)
	}
	if !s.DragMove(id, a.CenterX+a.Radius*1.2, a.CenterY) {
		t.Fatalf("DragMove(%d) rejected", id)
	}
	if !s.DragEnd(id) {
		t.Fatalf("DragEnd(%d) rejected", id)
	}
	return s.FrameTick(0.001)
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
