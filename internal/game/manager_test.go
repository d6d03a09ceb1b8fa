package game

import (
	"testing"
)

func TestNewManager(t *testing.T) {
	m := NewManager()
	if m.sessions == nil {
		t.Fatal("sessions map should be initialized")
	}
	if m.active != "" {
		t.Fatal("active session should be empty initially")
	}
}

func TestCreateSession(t *testing.T) {
	m := NewManager()
	p := &stubProvider{questions: makeQuestions(5)}

	code, ctrl := m.CreateSession(p, Options{})
	if len(code) != 5 {
		t.Fatalf("expected 5-char session code, got %q", code)
	}
	if ctrl == nil {
		t.Fatal("controller should not be nil")
	}

	got, err := m.Get(code)
	if err != nil {
		t.Fatalf("should be able to retrieve created session: %v", err)
	}
	if got != ctrl {
		t.Fatal("Get should return the created controller")
	}
	if got.Snapshot().State != StateLobby {
		t.Fatalf("expected new session in %s, got %s", StateLobby, got.Snapshot().State)
	}
}

func TestActiveSession(t *testing.T) {
	m := NewManager()
	p := &stubProvider{}

	if code, ctrl := m.Active(); code != "" || ctrl != nil {
		t.Fatal("no session should be active initially")
	}

	first, _ := m.CreateSession(p, Options{})
	second, ctrl2 := m.CreateSession(p, Options{})
	if first == second {
		t.Fatal("session codes should be unique")
	}

	code, ctrl := m.Active()
	if code != second || ctrl != ctrl2 {
		t.Fatal("most recent session should be active")
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := NewManager()
	if _, err := m.Get("NOPE1"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRemoveSession(t *testing.T) {
	m := NewManager()
	p := &stubProvider{}

	code, _ := m.CreateSession(p, Options{})
	m.Remove(code)

	if _, err := m.Get(code); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after remove, got %v", err)
	}
	if active, _ := m.Active(); active != "" {
		t.Fatal("removed session should no longer be active")
	}
}
