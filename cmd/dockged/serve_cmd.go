package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cfilipov/dockge/internal/agent"
	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/auth"
	"github.com/cfilipov/dockge/internal/dbx"
	"github.com/cfilipov/dockge/internal/events"
	"github.com/cfilipov/dockge/internal/imagecheck"
	"github.com/cfilipov/dockge/internal/settings"
	"github.com/cfilipov/dockge/internal/stacks"
	"github.com/cfilipov/dockge/internal/telemetry"
	"github.com/cfilipov/dockge/internal/terminal"
	"github.com/cfilipov/dockge/internal/version"
)

// ServeCmd is the daemon's main run loop: it replaces cmd/sand's
// unix-socket mux-server-backed daemon (start/stop/restart/status
// against a control-plane process) because this server listens on a
// real TCP/TLS port for its own clients rather than fronting another
// CLI, per spec.md §6. A single flock-guarded lock file still prevents
// two instances from sharing one sqlite database, the same invariant
// mux_server.go's socket enforced.
const shutdownGrace = 10 * time.Second

type ServeCmd struct{}

func (c *ServeCmd) Run(cctx *Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := verifyPrerequisites(ctx); err != nil {
		return fmt.Errorf("prerequisites check failed: %w", err)
	}

	shutdownTracing, err := telemetry.Init(ctx, version.Get().GitCommit)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	unlock, err := acquireLock(cctx.Cfg.LockFilePath())
	if err != nil {
		return fmt.Errorf("another dockged instance is already running: %w", err)
	}
	defer unlock()

	db, err := dbx.Open(cctx.Cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	settingsStore := settings.New(db)
	userStore := auth.NewStore(db)
	agentStore := agent.NewStore(db)

	var turnstileFn func(context.Context, string, string) error
	if cctx.Cfg.TurnstileEnabled() {
		secretKey := cctx.Cfg.TurnstileSecretKey
		turnstileFn = func(ctx context.Context, token, remoteIP string) error {
			return auth.VerifyTurnstile(ctx, secretKey, token, remoteIP)
		}
	}
	jwtSecret, err := loadOrCreateJWTSecret(settingsStore)
	if err != nil {
		return fmt.Errorf("load jwt secret: %w", err)
	}
	authService := auth.NewService(userStore, jwtSecret, turnstileFn)

	terminals := terminal.NewManager()
	checker := imagecheck.New(db, settingsStore, cctx.Cfg.StacksDir)
	engine := stacks.New(cctx.Cfg.StacksDir, terminals, checker)

	hub := events.NewHub()
	engine.Broadcast = func() {
		list, err := engine.RequestStackList(ctx)
		if err == nil {
			hub.Broadcast("stackList", list)
		}
	}
	checker.OnCycleDone = engine.Broadcast

	deps := &events.Deps{
		Cfg:       cctx.Cfg,
		Auth:      authService,
		Users:     userStore,
		Settings:  settingsStore,
		Stacks:    engine,
		Terminals: terminals,
		Agents:    agentStore,
		Checker:   checker,
		Hub:       hub,
		Version:   version.Get(),
	}

	go checker.StartBackgroundChecker(ctx)
	go events.StartStackListRefresh(ctx, deps)

	mux := http.NewServeMux()
	mux.HandleFunc("/socket", func(w http.ResponseWriter, r *http.Request) {
		events.ServeWS(w, r, deps)
	})

	addr := fmt.Sprintf("%s:%d", cctx.Cfg.Hostname, cctx.Cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if cctx.Cfg.SSLCert != "" && cctx.Cfg.SSLKey != "" {
			errCh <- server.ListenAndServeTLS(cctx.Cfg.SSLCert, cctx.Cfg.SSLKey)
		} else {
			errCh <- server.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return apperr.Wrap(apperr.Internal, err)
		}
		return nil
	}
}
