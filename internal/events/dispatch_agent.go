// Agent events: addAgent, removeAgent, updateAgent, and the `agent`
// proxy-wrapper event itself, grounded on handlers/agent.rs. The
// reference's route_agent_event tries to re-emit an event on its own
// socket to re-enter its own handler table, which its own comments
// admit does not work; here the proxy event unwraps straight into the
// SAME handlers map used for direct events (see Deps.handlers in
// deps.go and router.go's route()), which is the actual fix
// (SPEC_FULL.md §C.1).
package events

import (
	"context"
	"encoding/json"

	"github.com/cfilipov/dockge/internal/agent"
	"github.com/cfilipov/dockge/internal/apperr"
)

func init() {
	register("addAgent", handleAddAgent)
	register("removeAgent", handleRemoveAgent)
	register("updateAgent", handleUpdateAgent)
	register("agent", handleAgentProxy)
}

type addAgentPayload struct {
	URL      string `json:"url"`
	Alias    string `json:"alias"` // SSH config host alias, alternative to URL
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func handleAddAgent(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p addAgentPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid addAgent payload")
	}

	url := p.URL
	if url == "" && p.Alias != "" {
		resolved, err := agent.ResolveHostAlias(p.Alias)
		if err != nil {
			return nil, err
		}
		url = resolved
	}
	if url == "" {
		return nil, apperr.Validationf("url or alias is required")
	}

	a, err := d.Agents.Create(&agent.Agent{URL: url, Username: p.Username, Password: p.Password, Name: p.Name})
	if err != nil {
		return nil, err
	}
	d.Hub.Broadcast("agentList", mustAgentList(d))
	d.Hub.Broadcast("refresh")
	d.Hub.DisconnectOthers(s.UserID(), s.ID)
	return a, nil
}

func handleRemoveAgent(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	url := stringArg(args, 0)
	if err := d.Agents.Delete(url); err != nil {
		return nil, err
	}
	d.Hub.Broadcast("agentList", mustAgentList(d))
	d.Hub.Broadcast("refresh")
	d.Hub.DisconnectOthers(s.UserID(), s.ID)
	return map[string]any{"ok": true}, nil
}

type updateAgentPayload struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

func handleUpdateAgent(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p updateAgentPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid updateAgent payload")
	}
	if err := d.Agents.UpdateName(p.URL, p.Name); err != nil {
		return nil, err
	}
	d.Hub.Broadcast("agentList", mustAgentList(d))
	d.Hub.Broadcast("refresh")
	d.Hub.DisconnectOthers(s.UserID(), s.ID)
	return map[string]any{"ok": true}, nil
}

func mustAgentList(d *Deps) []*agent.Agent {
	list, err := d.Agents.FindAll()
	if err != nil {
		return nil
	}
	return list
}

// handleAgentProxy unwraps an [endpointId, innerEvent, ...innerArgs]
// frame. When endpointId names the local server it dispatches straight
// into the shared handlers map; otherwise it forwards the inner event
// to the registered remote agent over its own event channel.
func handleAgentProxy(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, apperr.Validationf("agent event requires an endpoint id and an inner event name")
	}
	endpointID := stringArg(args, 0)
	innerEvent := stringArg(args, 1)
	innerArgs := args[2:]

	if endpointID == "" || endpointID == "localhost" {
		handler, ok := handlers[innerEvent]
		if !ok {
			return nil, apperr.NotFoundf("unknown event %q", innerEvent)
		}
		return handler(ctx, d, s, innerArgs)
	}

	agents, err := d.Agents.FindAll()
	if err != nil {
		return nil, err
	}
	var target *agent.Agent
	for _, a := range agents {
		if a.Endpoint() == endpointID {
			target = a
			break
		}
	}
	if target == nil {
		return nil, apperr.NotFoundf("unknown agent endpoint %q", endpointID)
	}

	client := agent.NewRemoteClient(target)
	return client.Call(ctx, innerEvent, innerArgs...)
}
