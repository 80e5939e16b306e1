package events

import (
	"context"
	"encoding/json"

	"github.com/cfilipov/dockge/internal/agent"
	"github.com/cfilipov/dockge/internal/auth"
	"github.com/cfilipov/dockge/internal/config"
	"github.com/cfilipov/dockge/internal/imagecheck"
	"github.com/cfilipov/dockge/internal/logging"
	"github.com/cfilipov/dockge/internal/settings"
	"github.com/cfilipov/dockge/internal/stacks"
	"github.com/cfilipov/dockge/internal/terminal"
	"github.com/cfilipov/dockge/internal/version"
)

var log = logging.Component("events")

// Deps bundles every process-wide singleton a handler may need. One
// Deps value is constructed at server startup and shared by every
// Session.
type Deps struct {
	Cfg       *config.Config
	Auth      *auth.Service
	Users     *auth.Store
	Settings  *settings.Store
	Stacks    *stacks.Engine
	Terminals *terminal.Manager
	Agents    *agent.Store
	Checker   *imagecheck.Checker
	Hub       *Hub
	Version   version.Info
}

// HandlerFunc implements one named event. Its return value is
// marshaled into the ack payload; a non-nil error is converted via
// apperr.ToAck. HandlerFunc is the SINGLE dispatch point reached by
// both a direct client event and an agent-proxy-unwrapped event, per
// spec.md §4.4 — see route() in router.go.
type HandlerFunc func(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error)

var handlers = map[string]HandlerFunc{}

func register(name string, fn HandlerFunc) {
	handlers[name] = fn
}
