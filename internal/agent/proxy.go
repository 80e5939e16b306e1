// RemoteClient dials a registered agent's own event endpoint and
// forwards a single named event/ack round trip, used when the agent
// proxy dispatch table (internal/events) resolves an endpoint ID to a
// remote agent rather than the local instance.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/gorilla/websocket"
)

type RemoteClient struct {
	agent *Agent
}

func NewRemoteClient(a *Agent) *RemoteClient {
	return &RemoteClient{agent: a}
}

// Call connects to the remote agent, authenticates, sends one named
// event, and returns its ack payload. Connections are not pooled:
// agent-proxied calls are infrequent relative to local dispatch, so a
// fresh dial per call keeps this path simple and avoids holding
// long-lived state for endpoints that may be unreachable.
func (c *RemoteClient) Call(ctx context.Context, event string, args ...json.RawMessage) (json.RawMessage, error) {
	url := fmt.Sprintf("wss://%s/socket?endpoint=%s", c.agent.Endpoint(), c.agent.Endpoint())

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, apperr.Wrapf(apperr.Internal, err, "dial agent %s", c.agent.Endpoint())
	}
	defer conn.Close()

	frame := append([]json.RawMessage{mustMarshal(event)}, args...)
	if err := conn.WriteJSON(frame); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err)
	}

	var reply json.RawMessage
	if err := conn.ReadJSON(&reply); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err)
	}
	return reply, nil
}

func mustMarshal(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
