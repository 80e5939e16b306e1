// Package stacks ties the compose model, the terminal manager, and
// the image-update checker together into the operations spec.md §4.2
// names: deploy/save/start/stop/restart/down/update/delete a stack,
// per-service actions, and status/recreate-detection, grounded on
// handlers/stack.rs.
package stacks

import (
	"context"
	"fmt"

	"github.com/cfilipov/dockge/internal/compose"
	"github.com/cfilipov/dockge/internal/imagecheck"
	"github.com/cfilipov/dockge/internal/logging"
	"github.com/cfilipov/dockge/internal/terminal"
	"gopkg.in/yaml.v3"
)

var log = logging.Component("stacks")

// Engine is a process-wide singleton (per spec.md §9), constructed
// once at server startup and shared by every session.
type Engine struct {
	StacksDir string
	Terminals *terminal.Manager
	Checker   *imagecheck.Checker

	// Broadcast is invoked after any operation that changes a stack's
	// status, so every connected session receives the refreshed list.
	Broadcast func()
}

func New(stacksDir string, terminals *terminal.Manager, checker *imagecheck.Checker) *Engine {
	return &Engine{StacksDir: stacksDir, Terminals: terminals, Checker: checker}
}

func (e *Engine) notify() {
	if e.Broadcast != nil {
		e.Broadcast()
	}
}

// RequestStackList returns the simplified projection of every stack,
// merged with cached image-update state.
func (e *Engine) RequestStackList(ctx context.Context) (map[string]compose.SimpleInfo, error) {
	stacks, err := compose.GetStackList(ctx, e.StacksDir)
	if err != nil {
		return nil, err
	}
	out := map[string]compose.SimpleInfo{}
	for name, s := range stacks {
		if info, ok := e.Checker.Get(name); ok {
			s.ImageUpdatesAvailable = info.HasUpdates
		}
		out[name] = s.ToSimpleInfo()
	}
	return out, nil
}

func (e *Engine) GetStack(ctx context.Context, name, primaryHostname string) (compose.FullJSON, error) {
	s, err := compose.GetStack(ctx, e.StacksDir, name)
	if err != nil {
		return compose.FullJSON{}, err
	}
	if info, ok := e.Checker.Get(name); ok {
		s.ImageUpdatesAvailable = info.HasUpdates
	}
	return s.ToFullJSON(primaryHostname), nil
}

// DeployStack validates and saves a brand-new stack, then runs
// `compose up -d` against it, returning the terminal name the client
// should join to watch progress.
func (e *Engine) DeployStack(ctx context.Context, endpoint, name, composeYAML, overrideYAML, env string) (string, error) {
	s := compose.New(e.StacksDir, name)
	s.ComposeYAML = composeYAML
	s.ComposeOverrideYAML = overrideYAML
	s.ComposeENV = env

	if err := compose.ValidateWithDocker(ctx, s); err != nil {
		return "", err
	}
	if err := s.Save(true); err != nil {
		return "", err
	}

	return e.runComposeAction(ctx, endpoint, s, "up", "-d")
}

// SaveStack updates an existing stack's compose text on disk without
// restarting it.
func (e *Engine) SaveStack(ctx context.Context, name, composeYAML, overrideYAML, env string) error {
	s, err := compose.GetStack(ctx, e.StacksDir, name)
	if err != nil {
		return err
	}
	s.ComposeYAML = composeYAML
	s.ComposeOverrideYAML = overrideYAML
	s.ComposeENV = env

	if err := compose.ValidateWithDocker(ctx, s); err != nil {
		return err
	}
	if err := s.Save(false); err != nil {
		return err
	}
	e.notify()
	return nil
}

func (e *Engine) loadManaged(ctx context.Context, name string) (*compose.Stack, error) {
	s, err := compose.LoadFromDisk(e.StacksDir, name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (e *Engine) runComposeAction(ctx context.Context, endpoint string, s *compose.Stack, composeArgs ...string) (string, error) {
	termName := terminal.ComposeTerminalName(endpoint, s.Name)
	args := append([]string{}, s.GetComposeOptions(composeArgs...)...)

	inst, err := e.Terminals.Exec(ctx, termName, "docker", append([]string{"compose"}, args...), s.Path())
	if err != nil {
		return "", err
	}
	go func() {
		<-inst.Wait()
		e.notify()
	}()
	return termName, nil
}

func (e *Engine) StartStack(ctx context.Context, endpoint, name string) (string, error) {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return "", err
	}
	return e.runComposeAction(ctx, endpoint, s, "up", "-d")
}

func (e *Engine) StopStack(ctx context.Context, endpoint, name string) (string, error) {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return "", err
	}
	return e.runComposeAction(ctx, endpoint, s, "stop")
}

func (e *Engine) RestartStack(ctx context.Context, endpoint, name string) (string, error) {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return "", err
	}
	return e.runComposeAction(ctx, endpoint, s, "restart")
}

func (e *Engine) DownStack(ctx context.Context, endpoint, name string) (string, error) {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return "", err
	}
	return e.runComposeAction(ctx, endpoint, s, "down")
}

// UpdateStack runs the pull/up/prune sequence as one terminal session,
// with a dimmed banner marking each phase, matching the reference's
// three-phase update flow.
func (e *Engine) UpdateStack(ctx context.Context, endpoint, name string) (string, error) {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return "", err
	}

	termName := terminal.ComposeTerminalName(endpoint, s.Name)
	inst, err := e.Terminals.Exec(ctx, termName, "sh", []string{"-c", buildUpdateScript(s)}, s.Path())
	if err != nil {
		return "", err
	}
	terminal.PushBanner(inst, "Pulling images...")

	go func() {
		<-inst.Wait()
		e.notify()
	}()
	return termName, nil
}

func buildUpdateScript(s *compose.Stack) string {
	opts := joinShellArgs(s.GetComposeOptions())
	return fmt.Sprintf(
		"docker compose %s pull && docker compose %s up -d && docker image prune -f",
		opts, opts,
	)
}

func joinShellArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

func (e *Engine) DeleteStack(ctx context.Context, endpoint, name string) error {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return err
	}
	if _, err := e.runComposeAction(ctx, endpoint, s, "down"); err != nil {
		return err
	}
	if err := s.Delete(); err != nil {
		return err
	}
	e.notify()
	return nil
}

// ForceDeleteStack removes the stack directory even if `compose down`
// fails (e.g. the project was never started).
func (e *Engine) ForceDeleteStack(ctx context.Context, endpoint, name string) error {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return err
	}
	_, _ = e.runComposeAction(ctx, endpoint, s, "down")
	if err := s.Delete(); err != nil {
		return err
	}
	e.notify()
	return nil
}

// ServiceStatusList returns per-service status plus a recreate-needed
// flag derived by comparing the compose-declared image against the
// running container's reported image.
func (e *Engine) ServiceStatusList(ctx context.Context, name string) (map[string]compose.ServiceStatus, bool, error) {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return nil, false, err
	}
	statuses, err := compose.GetServiceStatusList(ctx, s)
	if err != nil {
		return nil, false, err
	}

	recreate := false
	declared := declaredImages(s.ComposeYAML)
	for svc, want := range declared {
		if got, ok := statuses[svc]; ok && got.Image != "" && got.Image != want {
			recreate = true
			break
		}
	}
	return statuses, recreate, nil
}

func declaredImages(composeYAML string) map[string]string {
	var doc struct {
		Services map[string]struct {
			Image string `yaml:"image"`
		} `yaml:"services"`
	}
	if err := yaml.Unmarshal([]byte(composeYAML), &doc); err != nil {
		return nil
	}
	out := map[string]string{}
	for name, svc := range doc.Services {
		if svc.Image != "" {
			out[name] = svc.Image
		}
	}
	return out
}

func (e *Engine) StartService(ctx context.Context, endpoint, stackName, service string) (string, error) {
	s, err := e.loadManaged(ctx, stackName)
	if err != nil {
		return "", err
	}
	return e.runComposeAction(ctx, endpoint, s, "up", "-d", service)
}

func (e *Engine) StopService(ctx context.Context, endpoint, stackName, service string) (string, error) {
	s, err := e.loadManaged(ctx, stackName)
	if err != nil {
		return "", err
	}
	return e.runComposeAction(ctx, endpoint, s, "stop", service)
}

func (e *Engine) RestartService(ctx context.Context, endpoint, stackName, service string) (string, error) {
	s, err := e.loadManaged(ctx, stackName)
	if err != nil {
		return "", err
	}
	return e.runComposeAction(ctx, endpoint, s, "restart", service)
}

func (e *Engine) UpdateService(ctx context.Context, endpoint, stackName, service string) (string, error) {
	s, err := e.loadManaged(ctx, stackName)
	if err != nil {
		return "", err
	}
	opts := joinShellArgs(s.GetComposeOptions())
	termName := terminal.ComposeTerminalName(endpoint, stackName)
	script := fmt.Sprintf("docker compose %s pull %s && docker compose %s up -d %s", opts, service, opts, service)
	inst, err := e.Terminals.Exec(ctx, termName, "sh", []string{"-c", script}, s.Path())
	if err != nil {
		return "", err
	}
	go func() {
		<-inst.Wait()
		e.notify()
	}()
	return termName, nil
}

func (e *Engine) CheckImageUpdates(ctx context.Context, stackName string) {
	e.Checker.CheckStack(ctx, stackName)
}

// JoinCombinedTerminal joins or spawns the combined `compose logs -f`
// terminal for a stack, per SPEC_FULL.md §C.5.
func (e *Engine) JoinCombinedTerminal(ctx context.Context, endpoint, name string) (*terminal.Instance, error) {
	s, err := e.loadManaged(ctx, name)
	if err != nil {
		return nil, err
	}
	termName := terminal.CombinedTerminalName(endpoint, name)
	args := append([]string{}, s.GetComposeOptions("logs", "-f", "--tail", "100")...)
	return e.Terminals.SpawnPersistent(ctx, termName, "docker", append([]string{"compose"}, args...), s.Path(), false)
}

func (e *Engine) LeaveCombinedTerminal(endpoint, name string) {
	e.Terminals.Remove(terminal.CombinedTerminalName(endpoint, name))
}
