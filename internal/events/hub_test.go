package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// serverSessionPair upgrades one incoming connection into a *Session
// and hands back a client-side *websocket.Conn wired to it, so
// Session/Hub behavior can be exercised over a real connection instead
// of a nil one.
func serverSessionPair(t *testing.T, id string) (*Session, *websocket.Conn) {
	t.Helper()
	sessionCh := make(chan *Session, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		sessionCh <- newSession(id, "localhost", r.RemoteAddr, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case s := <-sessionCh:
		return s, client
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side session")
		return nil, nil
	}
}

func TestSessionEmit(t *testing.T) {
	s, client := serverSessionPair(t, "s-emit")

	if err := s.Emit("stackList", map[string]any{"a": 1}); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame []json.RawMessage
	if err := client.ReadJSON(&frame); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	var event string
	json.Unmarshal(frame[0], &event)
	if event != "stackList" {
		t.Errorf("event = %q, want stackList", event)
	}
}

func TestHubAddRemoveBroadcast(t *testing.T) {
	h := NewHub()
	s, client := serverSessionPair(t, "s-broadcast")
	h.Add(s)

	h.Broadcast("settingsUpdated")

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame []json.RawMessage
	if err := client.ReadJSON(&frame); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	var event string
	json.Unmarshal(frame[0], &event)
	if event != "settingsUpdated" {
		t.Errorf("event = %q, want settingsUpdated", event)
	}

	h.Remove(s.ID)
	h.mu.RLock()
	_, stillThere := h.sessions[s.ID]
	h.mu.RUnlock()
	if stillThere {
		t.Error("session should be gone from the hub after Remove")
	}
}

func TestHubDisconnectOthers(t *testing.T) {
	h := NewHub()

	keep, keepClient := serverSessionPair(t, "s-keep")
	keep.SetAuthenticated(1, "alice")
	h.Add(keep)

	other, otherClient := serverSessionPair(t, "s-other")
	other.SetAuthenticated(1, "alice")
	h.Add(other)

	diffUser, diffClient := serverSessionPair(t, "s-diff")
	diffUser.SetAuthenticated(2, "bob")
	h.Add(diffUser)

	h.DisconnectOthers(1, keep.ID)

	otherClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := otherClient.ReadMessage(); err == nil {
		t.Error("other session's connection should have been closed")
	}

	if err := keep.Emit("info", map[string]any{}); err != nil {
		t.Errorf("kept session's connection should still be usable: %v", err)
	}
	keepClient.Close()

	if err := diffUser.Emit("info", map[string]any{}); err != nil {
		t.Errorf("a different user's session should not be disconnected: %v", err)
	}
	diffClient.Close()
}
