// Terminal events: terminalJoin, terminalInput, terminalResize,
// leaveCombinedTerminal, interactiveTerminal, joinContainerLog,
// mainTerminal, checkMainTerminal. All route through the single
// terminal.Manager singleton, per SPEC_FULL.md §C.2 — there is no
// per-event-kind terminal bookkeeping the way handlers/terminal.rs
// splits across its own maps and TerminalManager inconsistently.
package events

import (
	"context"
	"encoding/json"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/terminal"
)

func init() {
	register("terminalJoin", handleTerminalJoin)
	register("terminalInput", handleTerminalInput)
	register("terminalResize", handleTerminalResize)
	register("leaveCombinedTerminal", handleLeaveCombinedTerminal)
	register("interactiveTerminal", handleInteractiveTerminal)
	register("joinContainerLog", handleJoinContainerLog)
	register("mainTerminal", handleMainTerminal)
	register("checkMainTerminal", handleCheckMainTerminal)
}

// streamToSession subscribes the session to an instance's live output
// and relays every chunk as a terminalWrite event until the client
// disconnects or the instance's replay buffer is dropped; it does not
// block the handler that calls it.
func streamToSession(s *Session, name string, inst *terminal.Instance) {
	ch, unsubscribe := inst.Subscribe()
	go func() {
		defer unsubscribe()
		for chunk := range ch {
			if err := s.Emit("terminalWrite", name, chunk); err != nil {
				return
			}
		}
	}()
}

func handleTerminalJoin(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	name := stringArg(args, 0)
	inst, ok := d.Terminals.Get(name)
	if !ok {
		return nil, apperr.NotFoundf("terminal %q not found", name)
	}
	buffer := inst.GetBuffer()
	streamToSession(s, name, inst)
	return map[string]any{"buffer": buffer, "running": !inst.Done()}, nil
}

type terminalInputPayload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

func handleTerminalInput(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p terminalInputPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid terminalInput payload")
	}
	if err := d.Terminals.WriteInput(p.Name, p.Data); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

type terminalResizePayload struct {
	Name string `json:"name"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

func handleTerminalResize(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p terminalResizePayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid terminalResize payload")
	}
	if err := d.Terminals.Resize(p.Name, p.Cols, p.Rows); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func handleLeaveCombinedTerminal(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	d.Stacks.LeaveCombinedTerminal(s.Endpoint, stringArg(args, 0))
	return map[string]any{"ok": true}, nil
}

// handleInteractiveTerminal spawns (or joins) a named shell inside a
// running container, e.g. `docker exec -it <container> sh`, addressed
// by terminal.ContainerExecTerminalName.
type interactiveTerminalPayload struct {
	StackName string `json:"stackName"`
	Service   string `json:"service"`
	Shell     string `json:"shell"`
	Index     int    `json:"index"`
}

func handleInteractiveTerminal(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p interactiveTerminalPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid interactiveTerminal payload")
	}
	shell := p.Shell
	if shell == "" {
		shell = "sh"
	}
	name := terminal.ContainerExecTerminalName(s.Endpoint, p.StackName, p.Service, p.Index)
	inst, err := d.Terminals.SpawnPersistent(ctx, name, "docker", []string{"exec", "-it", p.Service, shell}, "", true)
	if err != nil {
		return nil, err
	}
	buffer := inst.GetBuffer()
	streamToSession(s, name, inst)
	return map[string]any{"terminalName": name, "buffer": buffer}, nil
}

type joinContainerLogPayload struct {
	Container string `json:"container"`
}

func handleJoinContainerLog(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	var p joinContainerLogPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid joinContainerLog payload")
	}
	name := terminal.ContainerLogName(s.Endpoint, p.Container)
	inst, err := d.Terminals.SpawnPersistent(ctx, name, "docker", []string{"logs", "-f", "--tail", "100", p.Container}, "", false)
	if err != nil {
		return nil, err
	}
	buffer := inst.GetBuffer()
	streamToSession(s, name, inst)
	return map[string]any{"terminalName": name, "buffer": buffer}, nil
}

const mainTerminalShell = "/bin/sh"

func mainTerminalName(endpoint string) string {
	return "main-" + endpoint
}

// handleMainTerminal opens the host console shell, gated by
// Cfg.EnableConsole since it grants full shell access to the host
// running the server.
func handleMainTerminal(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	if !d.Cfg.EnableConsole {
		return nil, apperr.Authf("the main terminal is disabled on this server")
	}
	name := mainTerminalName(s.Endpoint)
	inst, err := d.Terminals.SpawnPersistent(ctx, name, mainTerminalShell, nil, "", true)
	if err != nil {
		return nil, err
	}
	buffer := inst.GetBuffer()
	streamToSession(s, name, inst)
	return map[string]any{"terminalName": name, "buffer": buffer}, nil
}

func handleCheckMainTerminal(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if err := requireAuth(s); err != nil {
		return nil, err
	}
	return map[string]any{"enabled": d.Cfg.EnableConsole}, nil
}
