// Package events implements the bidirectional named-event channel
// client and server talk over (spec.md §4.4), using gorilla/websocket
// as the transport since no repo in the example pack implements a
// Socket.IO-equivalent library (see SPEC_FULL.md §B).
package events

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Session is one connected client: a websocket connection, the
// endpoint header it connected with, and its authentication state.
// Sessions are created per connection; the engines they call into
// (Engine, Manager, Checker) are process-wide singletons shared across
// every Session, never recreated per connection, per spec.md §9.
type Session struct {
	ID       string
	Endpoint string
	RemoteIP string

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu            sync.RWMutex
	authenticated bool
	userID        int64
	username      string
}

func newSession(id, endpoint, remoteIP string, conn *websocket.Conn) *Session {
	return &Session{ID: id, Endpoint: endpoint, RemoteIP: remoteIP, conn: conn}
}

func (s *Session) SetAuthenticated(userID int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.userID = userID
	s.username = username
}

func (s *Session) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.userID = 0
	s.username = ""
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Emit sends a named event frame to this session's client,
// serializing concurrent writers since gorilla/websocket connections
// are not safe for concurrent writes.
func (s *Session) Emit(event string, args ...any) error {
	frame := append([]any{event}, args...)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(frame)
}
