// Stack enumeration: merges the on-disk directory scan with
// `docker compose ls --all --format json` status, and
// `docker compose ps --format json` per-service status, grounded on
// models/stack.rs's get_stack_list/get_service_status_list.
package compose

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/cfilipov/dockge/internal/apperr"
)

// composeLsEntry mirrors `docker compose ls`'s JSON object shape.
type composeLsEntry struct {
	Name        string `json:"Name"`
	Status      string `json:"Status"`
	ConfigFiles string `json:"ConfigFiles"`
}

// composePsEntry mirrors `docker compose ps`'s JSON object shape.
type composePsEntry struct {
	Service string `json:"Service"`
	State   string `json:"State"`
	Health  string `json:"Health"`
	Image   string `json:"Image"`
}

// GetComposeLsStatus runs `docker compose ls --all --format json` and
// returns a map of project name to its raw status string. docker
// compose prints either a single JSON object per line or one JSON
// array, depending on version, so both shapes are accepted.
func GetComposeLsStatus(ctx context.Context) (map[string]string, error) {
	out, err := exec_CombinedJSON(ctx, "docker", "compose", "ls", "--all", "--format", "json")
	if err != nil {
		return nil, err
	}
	entries, err := parseLsEntries(out)
	if err != nil {
		return nil, err
	}
	statuses := map[string]string{}
	for _, e := range entries {
		statuses[e.Name] = e.Status
	}
	return statuses, nil
}

func parseLsEntries(out []byte) ([]composeLsEntry, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var entries []composeLsEntry
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err)
		}
		return entries, nil
	}
	var entries []composeLsEntry
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e composeLsEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetStackList scans stacksDir for managed stacks and merges in
// `compose ls` status for both managed and foreign (non-dockge)
// projects. The "dockge" project itself is dropped from the result
// unless it also has a matching on-disk stack directory.
func GetStackList(ctx context.Context, stacksDir string) (map[string]*Stack, error) {
	result := map[string]*Stack{}

	entries, err := os.ReadDir(stacksDir)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		stack, err := LoadFromDisk(stacksDir, entry.Name())
		if err != nil || !stack.IsManagedByDockge() {
			continue
		}
		// Absence from `compose ls` below means the stack was never
		// brought up; the loop over statuses overwrites this for any
		// stack compose still knows about.
		stack.Status = StatusCreatedFile
		result[entry.Name()] = stack
	}

	statuses, err := GetComposeLsStatus(ctx)
	if err != nil {
		// docker may be unreachable; still return the on-disk scan.
		return result, nil
	}

	for name, rawStatus := range statuses {
		if name == "dockge" {
			if _, managed := result[name]; !managed {
				continue
			}
		}
		if stack, ok := result[name]; ok {
			stack.Status = StatusConvert(rawStatus)
			continue
		}
		foreign := New(stacksDir, name)
		foreign.Status = StatusConvert(rawStatus)
		result[name] = foreign
	}

	return result, nil
}

// GetStack loads a single stack, falling back to the merged stack list
// for projects unmanaged by dockge (no on-disk compose file, known
// only via `compose ls`).
func GetStack(ctx context.Context, stacksDir, name string) (*Stack, error) {
	stack, err := LoadFromDisk(stacksDir, name)
	if err == nil {
		stack.Status = StatusCreatedFile
		statuses, lsErr := GetComposeLsStatus(ctx)
		if lsErr == nil {
			if raw, ok := statuses[name]; ok {
				stack.Status = StatusConvert(raw)
			}
		}
		return stack, nil
	}

	list, lerr := GetStackList(ctx, stacksDir)
	if lerr != nil {
		return nil, err
	}
	if s, ok := list[name]; ok {
		return s, nil
	}
	return nil, apperr.NotFoundf("stack %q not found", name)
}

// ServiceStatus is one row of the per-service status list, keyed on
// service name by the caller.
type ServiceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Image  string `json:"image"`
}

// GetServiceStatusList runs `docker compose ps --format json` inside
// the stack's directory and returns a status per service.
func GetServiceStatusList(ctx context.Context, s *Stack) (map[string]ServiceStatus, error) {
	out, err := exec_CombinedJSONDir(ctx, s.Path(), "docker", append([]string{"compose"}, s.GetComposeOptions("ps", "--format", "json")...)...)
	if err != nil {
		return nil, err
	}

	entries, err := parsePsEntries(out)
	if err != nil {
		return nil, err
	}

	result := map[string]ServiceStatus{}
	for _, e := range entries {
		status := e.State
		if e.Health != "" {
			status = e.Health
		}
		result[e.Service] = ServiceStatus{Name: e.Service, Status: status, Image: e.Image}
	}
	return result, nil
}

func parsePsEntries(out []byte) ([]composePsEntry, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var entries []composePsEntry
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err)
		}
		return entries, nil
	}
	var entries []composePsEntry
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e composePsEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
