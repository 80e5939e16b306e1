package events

import "testing"

func TestSessionAuthLifecycle(t *testing.T) {
	s := &Session{ID: "s1"}

	if s.Authenticated() {
		t.Error("new session should not be authenticated")
	}

	s.SetAuthenticated(42, "alice")
	if !s.Authenticated() {
		t.Error("session should be authenticated after SetAuthenticated")
	}
	if s.UserID() != 42 {
		t.Errorf("UserID() = %d, want 42", s.UserID())
	}

	s.ClearAuth()
	if s.Authenticated() {
		t.Error("session should not be authenticated after ClearAuth")
	}
	if s.UserID() != 0 {
		t.Errorf("UserID() after ClearAuth = %d, want 0", s.UserID())
	}
}
