// Router is the WebSocket HTTP upgrade handler and per-connection read
// loop, grounded on terminal.rs's connection lifecycle (handshake,
// auth gating, disconnect cleanup) but adapted from Socket.IO-style
// transport to gorilla/websocket, since no example repo vendors a
// Socket.IO server (see SPEC_FULL.md §B).
//
// Wire format: a client request frame is a JSON array
// [callID, event, arg1, ..., argN]. callID is an opaque string echoed
// back in the ack frame ["ack", callID, payload] so the client can
// correlate responses; callID may be empty for fire-and-forget
// requests, in which case no ack is sent. A server-initiated push
// (stackList, terminalWrite, info, ...) is a bare [event, arg1, ...]
// frame with no callID, distinguished from client frames by direction
// rather than shape, since client and server never write on one
// another's read path.
package events

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/telemetry"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const stackListRefreshInterval = 10 * time.Second

// ServeWS upgrades an HTTP request to a WebSocket connection and runs
// its session loop until the connection closes.
func ServeWS(w http.ResponseWriter, r *http.Request, d *Deps) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		endpoint = "localhost"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := newSession(uuid.NewString(), endpoint, r.RemoteAddr, conn)
	d.Hub.Add(s)
	defer d.Hub.Remove(s.ID)

	log.Info("session connected", "session", s.ID, "endpoint", endpoint, "remote", r.RemoteAddr)
	onConnect(d, s)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		handleFrame(d, s, raw)
	}

	log.Info("session disconnected", "session", s.ID)
}

// onConnect mirrors the reference's on-connect sequence: push info,
// prompt first-run setup, or auto-login when disableAuth is set.
func onConnect(d *Deps, s *Session) {
	_ = s.Emit("info", buildInfo(d, false))

	needsSetup, err := d.Auth.NeedsSetup()
	if err == nil && needsSetup {
		_ = s.Emit("setup")
		return
	}

	if d.Settings.GetBool("disableAuth", false) {
		user, err := d.Users.FindFirst()
		if err == nil {
			s.SetAuthenticated(user.ID, user.Username)
			afterLogin(d, s)
		}
	}
}

func handleFrame(d *Deps, s *Session, raw []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil || len(frame) < 1 {
		log.Debug("malformed frame", "session", s.ID, "error", err)
		return
	}

	var callID string
	_ = json.Unmarshal(frame[0], &callID)
	var event string
	if len(frame) < 2 || json.Unmarshal(frame[1], &event) != nil {
		return
	}
	args := frame[2:]

	handler, ok := handlers[event]
	if !ok {
		if callID != "" {
			_ = s.Emit("ack", callID, apperr.ToAck(apperr.NotFoundf("unknown event %q", event)))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ctx, span := telemetry.Tracer().Start(ctx, "event."+event, attribute.String("session.id", s.ID))
	defer span.End()

	result, err := handler(ctx, d, s, args)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	if callID == "" {
		if err != nil {
			log.Warn("handler error", "event", event, "session", s.ID, "error", err)
		}
		return
	}
	if err != nil {
		_ = s.Emit("ack", callID, apperr.ToAck(err))
		return
	}
	_ = s.Emit("ack", callID, map[string]any{"status": "ok", "data": result})
}

// StartStackListRefresh runs the background tick that pushes a fresh
// stack list to every connected session every ten seconds, per
// spec.md §2's periodic-refresh loop (the other being the image-update
// checker's own interval in internal/imagecheck).
func StartStackListRefresh(ctx context.Context, d *Deps) {
	ticker := time.NewTicker(stackListRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			list, err := d.Stacks.RequestStackList(ctx)
			if err != nil {
				log.Warn("stack list refresh failed", "error", err)
				continue
			}
			d.Hub.Broadcast("stackList", list)
		}
	}
}
