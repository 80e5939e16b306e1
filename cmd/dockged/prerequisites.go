package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// diagnosticCheck is the same shape cmd/sand used for its macOS/
// container-runtime checks, retargeted at docker and docker compose
// availability.
type diagnosticCheck struct {
	ID          string
	Description string
	Run         func(context.Context) error
}

var diagnosticChecks = []diagnosticCheck{
	{
		ID:          "docker-cli",
		Description: "docker CLI is installed and reachable",
		Run: func(ctx context.Context) error {
			cmd := exec.CommandContext(ctx, "docker", "version", "--format", "{{.Server.Version}}")
			out, err := cmd.Output()
			if err != nil {
				return fmt.Errorf("could not reach the docker daemon: %w", err)
			}
			slog.InfoContext(ctx, "verifyPrerequisites", "dockerServerVersion", strings.TrimSpace(string(out)))
			return nil
		},
	},
	{
		ID:          "compose-plugin",
		Description: "docker compose plugin is installed",
		Run: func(ctx context.Context) error {
			cmd := exec.CommandContext(ctx, "docker", "compose", "version")
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("docker compose plugin not found: %w", err)
			}
			return nil
		},
	},
}

// verifyPrerequisites runs every check, joining all failures into a
// single error rather than stopping at the first one, so an operator
// sees the full picture in one run.
func verifyPrerequisites(ctx context.Context) error {
	var errs []error
	for _, check := range diagnosticChecks {
		if err := check.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "diagnosticCheck failed", "name", check.Description, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", check.Description, err))
			continue
		}
		slog.InfoContext(ctx, "diagnosticCheck passed", "name", check.Description)
	}
	return errors.Join(errs...)
}
