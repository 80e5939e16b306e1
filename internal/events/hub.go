// Hub tracks every connected session for cross-session notifications:
// the stack-list refresh broadcast, disconnectOtherSocketClients, the
// refresh event forced on peer sessions after a user mutation
// (password change, agent add/remove/rename), and settings changes
// that must reach every open tab.
package events

import "sync"

type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Broadcast emits event to every connected session, best-effort: a
// slow or broken client is logged and skipped rather than blocking
// the rest, matching the backpressure-free fan-out design in
// spec.md §9.
func (h *Hub) Broadcast(event string, args ...any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		go func(s *Session) {
			if err := s.Emit(event, args...); err != nil {
				log.Debug("broadcast emit failed", "session", s.ID, "event", event, "error", err)
			}
		}(s)
	}
}

// DisconnectOthers closes every session belonging to userID except
// keepID, backing the disconnectOtherSocketClients event.
func (h *Hub) DisconnectOthers(userID int64, keepID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.sessions {
		if id == keepID {
			continue
		}
		if s.Authenticated() && s.UserID() == userID {
			s.conn.Close()
		}
	}
}
