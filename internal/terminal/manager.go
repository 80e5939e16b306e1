// Manager is the single shared registry for every terminal a session
// can join — compose actions, combined stack logs, container exec,
// container log tail, and the optional host console. Grounded on
// terminal.rs's TerminalManager, but kept as ONE registry rather than
// the reference's split between TerminalManager and the ad hoc
// state.terminals map used by handlers/terminal.rs (see SPEC_FULL.md
// §C.2 — that split is a defect, not a pattern to reproduce).
package terminal

import (
	"context"
	"sync"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/logging"
)

var log = logging.Component("terminal")

// Manager is a process-wide singleton, created once at server
// startup, never per connection, per spec.md §9's global-singleton
// requirement.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*Instance
}

func NewManager() *Manager {
	return &Manager{instances: make(map[string]*Instance)}
}

func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.instances[name]
	return ok
}

func (m *Manager) Get(name string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[name]
	return inst, ok
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

// Remove terminates the named instance's process, if still running,
// awaits the reap, and deregisters it.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	inst, ok := m.instances[name]
	delete(m.instances, name)
	m.mu.Unlock()

	if ok {
		inst.Kill()
	}
}

func (m *Manager) register(inst *Instance) {
	m.mu.Lock()
	m.instances[inst.Name] = inst
	m.mu.Unlock()
}

// Exec runs a one-shot, non-PTY command under name and blocks until it
// finishes, removing the instance from the registry afterward. If a
// terminal with this name is already running, it rejects with an
// "already running" error rather than handing back someone else's
// in-flight instance, matching the "at most one live process per
// name" concurrency rule.
func (m *Manager) Exec(ctx context.Context, name, file string, args []string, cwd string) (*Instance, error) {
	if m.Has(name) {
		return nil, apperr.Validationf("terminal %q is already running", name)
	}

	inst := NewInstance(name, file, args, cwd, false, false)
	m.register(inst)

	go func() {
		log.Info("terminal exec started", "name", name, "file", file)
		code, err := inst.Run(ctx)
		if err != nil {
			log.Warn("terminal exec failed", "name", name, "error", err)
		} else {
			log.Info("terminal exec finished", "name", name, "exitCode", code)
		}
		m.Remove(name)
	}()

	return inst, nil
}

// SpawnPersistent starts a PTY-backed or keep-alive process under
// name and registers it without waiting for completion — used for
// interactive shells, container exec sessions, and the combined
// `compose logs -f` terminal.
func (m *Manager) SpawnPersistent(ctx context.Context, name, file string, args []string, cwd string, usePTY bool) (*Instance, error) {
	if inst, ok := m.Get(name); ok {
		return inst, nil
	}

	inst := NewInstance(name, file, args, cwd, usePTY, true)
	m.register(inst)

	go func() {
		log.Info("persistent terminal started", "name", name, "file", file)
		code, err := inst.Run(ctx)
		if err != nil {
			log.Warn("persistent terminal failed", "name", name, "error", err)
		} else {
			log.Info("persistent terminal finished", "name", name, "exitCode", code)
		}
		m.Remove(name)
	}()

	return inst, nil
}

func (m *Manager) GetBuffer(name string) (string, error) {
	inst, ok := m.Get(name)
	if !ok {
		return "", apperr.NotFoundf("terminal %q not found", name)
	}
	return inst.GetBuffer(), nil
}

func (m *Manager) WriteInput(name, data string) error {
	inst, ok := m.Get(name)
	if !ok {
		return apperr.NotFoundf("terminal %q not found", name)
	}
	inst.WriteInput(data)
	return nil
}

func (m *Manager) Resize(name string, cols, rows int) error {
	inst, ok := m.Get(name)
	if !ok {
		return apperr.NotFoundf("terminal %q not found", name)
	}
	return inst.Resize(cols, rows)
}
