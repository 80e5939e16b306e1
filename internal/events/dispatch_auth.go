// Auth events: setup, login, loginByToken, changePassword,
// getTurnstileSiteKey, grounded on handlers/auth.rs's register().
package events

import (
	"context"
	"encoding/json"
	"net"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/auth"
)

func init() {
	register("setup", handleSetup)
	register("login", handleLogin)
	register("loginByToken", handleLoginByToken)
	register("changePassword", handleChangePassword)
	register("getTurnstileSiteKey", handleGetTurnstileSiteKey)
}

type setupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleSetup(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	var req setupRequest
	if !decodeArg(args, 0, &req) {
		return nil, apperr.Validationf("invalid setup payload")
	}
	if _, err := d.Auth.Setup(req.Username, req.Password); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

type loginPayload struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Token          string `json:"token"`
	TurnstileToken string `json:"turnstileToken"`
}

func handleLogin(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	var p loginPayload
	if !decodeArg(args, 0, &p) {
		return nil, apperr.Validationf("invalid login payload")
	}

	req := auth.LoginRequest{
		Username:       p.Username,
		Password:       p.Password,
		Token:          p.Token,
		TurnstileToken: p.TurnstileToken,
		RemoteIP:       remoteHost(s.RemoteIP),
	}
	token, user, err := d.Auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	s.SetAuthenticated(user.ID, user.Username)
	afterLogin(d, s)
	return map[string]any{"token": token}, nil
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func handleLoginByToken(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	token := stringArg(args, 0)
	user, err := d.Auth.LoginByToken(token)
	if err != nil {
		return nil, err
	}
	s.SetAuthenticated(user.ID, user.Username)
	afterLogin(d, s)
	return map[string]any{"ok": true}, nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func handleChangePassword(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	if !s.Authenticated() {
		return nil, apperr.Authf("not logged in")
	}
	var req changePasswordRequest
	if !decodeArg(args, 0, &req) {
		return nil, apperr.Validationf("invalid changePassword payload")
	}
	if err := d.Auth.ChangePassword(s.UserID(), req.CurrentPassword, req.NewPassword); err != nil {
		return nil, err
	}
	d.Hub.Broadcast("refresh")
	d.Hub.DisconnectOthers(s.UserID(), s.ID)
	return map[string]any{"ok": true}, nil
}

func handleGetTurnstileSiteKey(ctx context.Context, d *Deps, s *Session, args []json.RawMessage) (any, error) {
	return map[string]any{"siteKey": d.Cfg.TurnstileSiteKey}, nil
}

// afterLogin mirrors handlers/auth.rs's after_login: push the
// hide-version info payload, the current stack list, and the agent
// list to the newly authenticated session.
func afterLogin(d *Deps, s *Session) {
	list, err := d.Stacks.RequestStackList(context.Background())
	if err == nil {
		_ = s.Emit("stackList", list)
	}
	agents, err := d.Agents.FindAll()
	if err == nil {
		_ = s.Emit("agentList", agents)
	}
	_ = s.Emit("info", buildInfo(d, true))
}
