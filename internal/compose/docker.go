// The compose/docker CLI adapter: every container operation is
// delegated to the docker binary, grounded on docker.rs's
// compose_exec/compose_exec_capture split between streamed and
// captured output.
package compose

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// LineFunc receives one line of combined stdout/stderr output, with a
// trailing \r\n already appended, matching the teacher/reference's
// terminal-friendly line framing.
type LineFunc func(line string)

// ComposeExec runs `docker compose <args...>` in dir, streaming output
// line by line to onLine, and returns the process's exit code.
func ComposeExec(ctx context.Context, dir string, args []string, onLine LineFunc) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "compose.exec",
		attribute.String("compose.dir", dir), attribute.StringSlice("compose.args", args))
	defer span.End()

	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = dir
	code, err := runStreamed(cmd, onLine)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return code, err
}

// ComposeExecCapture runs `docker compose <args...>` in dir and
// returns the full combined output, without streaming.
func ComposeExecCapture(ctx context.Context, dir string, args []string) (string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "compose.exec_capture",
		attribute.String("compose.dir", dir), attribute.StringSlice("compose.args", args))
	defer span.End()

	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			span.SetStatus(codes.Error, err.Error())
			return string(out), apperr.Wrapf(apperr.Internal, err, "exec docker compose")
		}
	}
	return string(out), nil
}

func runStreamed(cmd *exec.Cmd, onLine LineFunc) (int, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, apperr.Wrap(apperr.Internal, err)
	}
	cmd.Stderr = cmd.Stdout // combine stderr into the same stream, like the reference

	if err := cmd.Start(); err != nil {
		return -1, apperr.Wrap(apperr.Internal, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text() + "\r\n")
		}
	}

	err = cmd.Wait()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return -1, apperr.Wrap(apperr.Internal, err)
		}
	}
	return exitCode, nil
}

// GetNetworkList returns `docker network ls` names, sorted.
func GetNetworkList(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "compose.network_list")
	defer span.End()

	cmd := exec.CommandContext(ctx, "docker", "network", "ls", "--format", "{{.Name}}")
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.Wrapf(apperr.Internal, err, "docker network ls")
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	sort.Strings(names)
	return names, nil
}

// GetDockerStats returns `docker stats --format json --no-stream`
// keyed by container name.
func GetDockerStats(ctx context.Context) (map[string]string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "compose.stats")
	defer span.End()

	cmd := exec.CommandContext(ctx, "docker", "stats", "--format", "json", "--no-stream")
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.Wrapf(apperr.Internal, err, "docker stats")
	}
	stats := map[string]string{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, ok := extractJSONStringField(line, "Name")
		if ok {
			stats[name] = line
		}
	}
	return stats, nil
}

// ContainerInspect runs `docker inspect <name>` and returns the raw
// JSON, erroring on a non-zero exit.
func ContainerInspect(ctx context.Context, name string) (string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "compose.inspect", attribute.String("container.name", name))
	defer span.End()

	cmd := exec.CommandContext(ctx, "docker", "inspect", name)
	out, err := cmd.Output()
	if err != nil {
		return "", apperr.Wrapf(apperr.NotFound, err, "docker inspect %s", name)
	}
	return string(out), nil
}

// exec_CombinedJSON runs a command and returns its stdout, for
// commands whose output is parsed as JSON rather than streamed.
func exec_CombinedJSON(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.Wrapf(apperr.Internal, err, "exec %s %s", name, strings.Join(args, " "))
	}
	return out, nil
}

// exec_CombinedJSONDir is exec_CombinedJSON with an explicit working
// directory, used for `compose ps` which must run inside the stack's
// project directory.
func exec_CombinedJSONDir(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.Wrapf(apperr.Internal, err, "exec %s %s", name, strings.Join(args, " "))
	}
	return out, nil
}

// extractJSONStringField does a minimal best-effort scan for a
// top-level string field without a full JSON unmarshal, matching the
// reference's approach of keying stats output by container Name
// without modeling the entire stats schema.
func extractJSONStringField(jsonLine, field string) (string, bool) {
	key := fmt.Sprintf(`"%s":"`, field)
	idx := strings.Index(jsonLine, key)
	if idx < 0 {
		return "", false
	}
	start := idx + len(key)
	end := strings.Index(jsonLine[start:], `"`)
	if end < 0 {
		return "", false
	}
	return jsonLine[start : start+end], true
}
