// Misc events: getInfo, getDockerNetworkList, dockerStats,
// containerInspect, getAgentList, grounded on handlers/settings.rs and
// handlers/agent.rs's smaller query handlers.
package events

import (
	"context"
	"encoding/json"

	"github.com/cfilipov/dockge/internal/compose"
)

func init() {
	register("getInfo", handleGetInfo)
	register("getDockerNetworkList", handleGetDockerNetworkList)
	register("dockerStats", handleDockerStats)
	register("containerInspect", handleContainerInspect)
	register("getAgentList", handleGetAgentList)
}

// buildInfo assembles the info payload sent on connect and after
// login. hideVersion is honored so a server behind a reverse proxy can
// avoid advertising its exact build to unauthenticated clients.
func buildInfo(d *Deps, authenticated bool) map[string]any {
	hideVersion := d.Settings.GetBool("hideVersion", false)
	info := map[string]any{
		"isSetup": true,
	}
	if !hideVersion || authenticated {
		info["version"] = d.Version.GitCommit
		info["gitRepo"] = d.Version.GitRepo
		info["gitBranch"] = d.Version.GitBranch
		info["buildTime"] = d.Version.BuildTime
	}
	return info
}

func primaryHostname(d *Deps, s *Session) string {
	if d.Cfg.Hostname != "" {
		return d.Cfg.Hostname
	}
	return "localhost"
}

func handleGetInfo(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	return buildInfo(d, s.Authenticated()), nil
}

func handleGetDockerNetworkList(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	return compose.GetNetworkList(ctx)
}

func handleDockerStats(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	return compose.GetDockerStats(ctx)
}

func handleContainerInspect(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	raw, err := compose.ContainerInspect(ctx, stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func handleGetAgentList(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	return d.Agents.FindAll()
}
