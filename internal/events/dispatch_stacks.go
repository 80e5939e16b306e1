// Stack events: requestStackList, getStack, deployStack, saveStack,
// start/stop/restart/downStack, updateStack, delete/forceDeleteStack,
// serviceStatusList, start/stop/restartService, updateService,
// checkImageUpdates, grounded on handlers/stack.rs.
package events

import (
	"context"
	"encoding/json"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/terminal"
)

func init() {
	register("requestStackList", handleRequestStackList)
	register("getStack", handleGetStack)
	register("deployStack", handleDeployStack)
	register("saveStack", handleSaveStack)
	register("startStack", handleStartStack)
	register("stopStack", handleStopStack)
	register("restartStack", handleRestartStack)
	register("downStack", handleDownStack)
	register("updateStack", handleUpdateStack)
	register("deleteStack", handleDeleteStack)
	register("forceDeleteStack", handleForceDeleteStack)
	register("serviceStatusList", handleServiceStatusList)
	register("startService", handleStartService)
	register("stopService", handleStopService)
	register("restartService", handleRestartService)
	register("updateService", handleUpdateService)
	register("checkImageUpdates", handleCheckImageUpdates)
}

func requireAuth(s *Session) error {
	if !s.Authenticated() {
		return apperr.Authf("not logged in")
	}
	return nil
}

func handleRequestStackList(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	return d.Stacks.RequestStackList(ctx)
}

// handleGetStack returns the full stack payload and, for managed
// stacks, auto-joins the combined `compose logs -f` terminal so the
// client starts receiving its output without a separate round trip.
func handleGetStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	name := stringArg(args, 0)
	full, err := d.Stacks.GetStack(ctx, name, primaryHostname(d, s))
	if err != nil {
		return nil, err
	}

	result, err := toMap(full)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err)
	}

	inst, joinErr := d.Stacks.JoinCombinedTerminal(ctx, s.Endpoint, name)
	if joinErr != nil {
		log.Debug("auto-join combined terminal skipped", "stack", name, "error", joinErr)
		return result, nil
	}
	termName := terminal.CombinedTerminalName(s.Endpoint, name)
	result["combinedTerminalName"] = termName
	result["combinedTerminalBuffer"] = inst.GetBuffer()
	streamToSession(s, termName, inst)

	return result, nil
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

type stackPayload struct {
	Name         string `json:"name"`
	ComposeYAML  string `json:"composeYAML"`
	OverrideYAML string `json:"composeOverrideYAML"`
	Env          string `json:"composeENV"`
}

func handleDeployStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p stackPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid deployStack payload")
	}
	term, err := d.Stacks.DeployStack(ctx, s.Endpoint, p.Name, p.ComposeYAML, p.OverrideYAML, p.Env)
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleSaveStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p stackPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid saveStack payload")
	}
	if err := d.Stacks.SaveStack(ctx, p.Name, p.ComposeYAML, p.OverrideYAML, p.Env); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func handleStartStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	term, err := d.Stacks.StartStack(ctx, s.Endpoint, stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleStopStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	term, err := d.Stacks.StopStack(ctx, s.Endpoint, stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleRestartStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	term, err := d.Stacks.RestartStack(ctx, s.Endpoint, stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleDownStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	term, err := d.Stacks.DownStack(ctx, s.Endpoint, stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleUpdateStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	term, err := d.Stacks.UpdateStack(ctx, s.Endpoint, stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleDeleteStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	if err := d.Stacks.DeleteStack(ctx, s.Endpoint, stringArg(args, 0)); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func handleForceDeleteStack(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	if err := d.Stacks.ForceDeleteStack(ctx, s.Endpoint, stringArg(args, 0)); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func handleServiceStatusList(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	statuses, recreate, err := d.Stacks.ServiceStatusList(ctx, stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return map[string]any{"services": statuses, "recreateNecessary": recreate}, nil
}

type servicePayload struct {
	StackName string `json:"stackName"`
	Service   string `json:"service"`
}

func handleStartService(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p servicePayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid startService payload")
	}
	term, err := d.Stacks.StartService(ctx, s.Endpoint, p.StackName, p.Service)
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleStopService(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p servicePayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid stopService payload")
	}
	term, err := d.Stacks.StopService(ctx, s.Endpoint, p.StackName, p.Service)
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleRestartService(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p servicePayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid restartService payload")
	}
	term, err := d.Stacks.RestartService(ctx, s.Endpoint, p.StackName, p.Service)
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleUpdateService(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p servicePayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid updateService payload")
	}
	term, err := d.Stacks.UpdateService(ctx, s.Endpoint, p.StackName, p.Service)
	if err != nil {
		return nil, err
	}
	return map[string]any{"terminalName": term}, nil
}

func handleCheckImageUpdates(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	d.Stacks.CheckImageUpdates(ctx, stringArg(args, 0))
	return map[string]any{"ok": true}, nil
}
