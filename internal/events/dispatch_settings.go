// Settings events: getSettings, setSettings, disconnectOtherSocketClients,
// composerize, and the global.env read/write, grounded on
// handlers/settings.rs.
package events

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cfilipov/dockge/internal/apperr"
)

func init() {
	register("getSettings", handleGetSettings)
	register("setSettings", handleSetSettings)
	register("disconnectOtherSocketClients", handleDisconnectOtherSocketClients)
	register("composerize", handleComposerize)
	register("getGlobalENV", handleGetGlobalENV)
	register("saveGlobalENV", handleSaveGlobalENV)
}

func handleGetSettings(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if !s.Authenticated() {
		return nil, apperr.Authf("not logged in")
	}
	all, err := d.Settings.All()
	if err != nil {
		return nil, err
	}
	return all, nil
}

type setSettingsPayload struct {
	CurrentPassword string            `json:"currentPassword"`
	Settings        map[string]any    `json:"settings"`
	Types           map[string]string `json:"types"`
}

// handleSetSettings mirrors handle_set_settings: toggling disableAuth
// off requires re-proving the current password, since it's the one
// setting change that widens unauthenticated access.
func handleSetSettings(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if !s.Authenticated() {
		return nil, apperr.Authf("not logged in")
	}
	var p setSettingsPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid setSettings payload")
	}

	if disableAuth, ok := p.Settings["disableAuth"]; ok {
		if b, _ := disableAuth.(bool); b {
			user, err := d.Users.FindByID(s.UserID())
			if err != nil {
				return nil, err
			}
			if !user.VerifyPassword(p.CurrentPassword) {
				return nil, apperr.Authf("incorrect current password")
			}
		}
	}

	for key, value := range p.Settings {
		sqlType := p.Types[key]
		if sqlType == "" {
			sqlType = "string"
		}
		if err := d.Settings.Set(key, value, sqlType); err != nil {
			return nil, err
		}
	}

	d.Hub.Broadcast("settingsUpdated")
	return map[string]any{"ok": true}, nil
}

func handleDisconnectOtherSocketClients(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if !s.Authenticated() {
		return nil, apperr.Authf("not logged in")
	}
	d.Hub.DisconnectOthers(s.UserID(), s.ID)
	return map[string]any{"ok": true}, nil
}

// handleComposerize shells out to an external composerize binary on
// PATH, converting a docker run command into compose YAML. Dockge's
// reference bundles composerize as a JS library; no Go port exists in
// the example pack, so this is deliberately a shell-out to the real
// npm CLI rather than a hand-rolled reimplementation (SPEC_FULL.md §C.7).
func handleComposerize(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if !s.Authenticated() {
		return nil, apperr.Authf("not logged in")
	}
	dockerRunCommand := stringArg(args, 0)
	if dockerRunCommand == "" {
		return nil, apperr.Validationf("empty docker run command")
	}

	path, err := exec.LookPath("composerize")
	if err != nil {
		return nil, apperr.NotFoundf("composerize is not installed on this server")
	}

	cmd := exec.CommandContext(ctx, path, dockerRunCommand)
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.Wrapf(apperr.Internal, err, "composerize failed")
	}
	return map[string]any{"composeYAML": string(out)}, nil
}

func handleGetGlobalENV(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if !s.Authenticated() {
		return nil, apperr.Authf("not logged in")
	}
	data, err := os.ReadFile(filepath.Join(d.Cfg.StacksDir, "global.env"))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{"env": ""}, nil
		}
		return nil, apperr.Wrap(apperr.Internal, err)
	}
	return map[string]any{"env": string(data)}, nil
}

func handleSaveGlobalENV(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if !s.Authenticated() {
		return nil, apperr.Authf("not logged in")
	}
	env := stringArg(args, 0)
	if err := os.WriteFile(filepath.Join(d.Cfg.StacksDir, "global.env"), []byte(env), 0o600); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err)
	}
	return map[string]any{"ok": true}, nil
}
