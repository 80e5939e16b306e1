// Package compose implements the stack lifecycle engine's on-disk
// model: loading, saving, validating, and deriving status for a
// compose project directory, grounded on models/stack.rs.
package compose

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cfilipov/dockge/internal/apperr"
	"gopkg.in/yaml.v3"
)

// AcceptedComposeFileNames lists the filenames tried, in order, when
// loading a stack's compose file from disk.
var AcceptedComposeFileNames = []string{"compose.yaml", "compose.yml", "docker-compose.yaml", "docker-compose.yml"}

// AcceptedComposeOverrideFileNames lists the filenames tried, in
// order, for an optional override file.
var AcceptedComposeOverrideFileNames = []string{"compose.override.yaml", "compose.override.yml", "docker-compose.override.yaml", "docker-compose.override.yml"}

var stackNameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

type Stack struct {
	Name                string
	Endpoint            string
	StacksDir           string
	ComposeFile         string // resolved filename, e.g. "compose.yaml"
	OverrideFile        string // resolved filename, empty if absent
	ComposeYAML         string
	ComposeOverrideYAML string
	ComposeENV          string

	// Fields populated from `docker compose ls`/`compose ps`, not from disk.
	Status                Status
	Started               bool
	RecreateNecessary     bool
	ImageUpdatesAvailable bool
	Tags                  []string
}

func New(stacksDir, name string) *Stack {
	return &Stack{Name: name, StacksDir: stacksDir}
}

// Path returns the stack's directory on disk.
func (s *Stack) Path() string {
	return filepath.Join(s.StacksDir, s.Name)
}

// FullPath returns the resolved compose file's absolute path.
func (s *Stack) FullPath() string {
	return filepath.Join(s.Path(), s.ComposeFile)
}

// IsManagedByDockge reports whether this stack has a compose file on
// disk under stacksDir, as opposed to a project known only to
// `docker compose ls` (e.g. started elsewhere with a foreign project
// directory).
func (s *Stack) IsManagedByDockge() bool {
	return s.ComposeFile != ""
}

func (s *Stack) IsStarted() bool {
	return s.Status == StatusRunning || s.Status == StatusRunningAndExited || s.Status == StatusUnhealthy
}

// LoadFromDisk tries each accepted compose filename in order, then an
// optional override file and .env, populating the Stack in place.
func LoadFromDisk(stacksDir, name string) (*Stack, error) {
	s := New(stacksDir, name)
	dir := s.Path()

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, apperr.NotFoundf("stack %q not found", name)
	}

	for _, fname := range AcceptedComposeFileNames {
		p := filepath.Join(dir, fname)
		if data, err := os.ReadFile(p); err == nil {
			s.ComposeFile = fname
			s.ComposeYAML = string(data)
			break
		}
	}

	for _, fname := range AcceptedComposeOverrideFileNames {
		p := filepath.Join(dir, fname)
		if data, err := os.ReadFile(p); err == nil {
			s.OverrideFile = fname
			s.ComposeOverrideYAML = string(data)
			break
		}
	}

	if data, err := os.ReadFile(filepath.Join(dir, ".env")); err == nil {
		s.ComposeENV = string(data)
	}

	return s, nil
}

// Validate checks the stack name, parses the compose/override YAML,
// and rejects malformed .env content, mirroring models/stack.rs's
// validate.
func (s *Stack) Validate() error {
	if !stackNameRe.MatchString(s.Name) {
		return apperr.Validationf("stack name %q must match ^[a-z0-9_-]+$", s.Name)
	}
	if strings.TrimSpace(s.ComposeYAML) == "" {
		return apperr.Validationf("compose file is empty")
	}
	var doc any
	if err := yaml.Unmarshal([]byte(s.ComposeYAML), &doc); err != nil {
		return apperr.Wrapf(apperr.Validation, err, "invalid compose YAML")
	}
	if s.ComposeOverrideYAML != "" {
		if err := yaml.Unmarshal([]byte(s.ComposeOverrideYAML), &doc); err != nil {
			return apperr.Wrapf(apperr.Validation, err, "invalid compose override YAML")
		}
	}
	for i, line := range strings.Split(s.ComposeENV, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "=") {
			return apperr.Validationf(".env line %d is missing '=': %q", i+1, line)
		}
	}
	return nil
}

// Save persists the compose file, and conditionally the override file
// and .env (only written when non-empty or already present on disk),
// after validating. isAdd governs the existence check: creating a
// stack that already exists, or saving one that doesn't, are both
// rejected.
func (s *Stack) Save(isAdd bool) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dir := s.Path()
	_, statErr := os.Stat(dir)
	exists := statErr == nil
	if isAdd && exists {
		return apperr.Validationf("stack %q already exists", s.Name)
	}
	if !isAdd && !exists {
		return apperr.NotFoundf("stack %q not found", s.Name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.Internal, err)
	}

	if s.ComposeFile == "" {
		s.ComposeFile = AcceptedComposeFileNames[0]
	}
	if err := os.WriteFile(filepath.Join(dir, s.ComposeFile), []byte(s.ComposeYAML), 0o644); err != nil {
		return apperr.Wrap(apperr.Internal, err)
	}

	if err := writeConditional(dir, s.OverrideFile, AcceptedComposeOverrideFileNames[0], s.ComposeOverrideYAML); err != nil {
		return err
	}
	if err := writeConditional(dir, ".env", ".env", s.ComposeENV); err != nil {
		return err
	}

	return nil
}

func writeConditional(dir, existingName, defaultName, content string) error {
	name := existingName
	if name == "" {
		name = defaultName
	}
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	alreadyExists := err == nil

	if content == "" && !alreadyExists {
		return nil
	}
	if content == "" && alreadyExists {
		return nil
	}
	if werr := os.WriteFile(path, []byte(content), 0o644); werr != nil {
		return apperr.Wrap(apperr.Internal, werr)
	}
	return nil
}

// Delete removes the stack's directory from disk.
func (s *Stack) Delete() error {
	if err := os.RemoveAll(s.Path()); err != nil {
		return apperr.Wrap(apperr.Internal, err)
	}
	return nil
}

// HasGlobalEnv reports whether a global.env file exists alongside
// StacksDir, the sibling file referenced from GetComposeOptions.
func HasGlobalEnv(stacksDir string) bool {
	_, err := os.Stat(filepath.Join(stacksDir, "global.env"))
	return err == nil
}

// GetComposeOptions builds the `docker compose` argument prefix:
// --env-file ../global.env (if present) + --env-file ./.env (if
// present) + -f <file> [-f <override>], followed by the caller's
// subcommand and arguments.
func (s *Stack) GetComposeOptions(extraArgs ...string) []string {
	args := []string{}
	if HasGlobalEnv(s.StacksDir) {
		if _, err := os.Stat(filepath.Join(s.Path(), ".env")); err == nil {
			args = append(args, "--env-file", "../global.env")
		}
	}
	if _, err := os.Stat(filepath.Join(s.Path(), ".env")); err == nil {
		args = append(args, "--env-file", "./.env")
	}
	args = append(args, "-f", s.ComposeFile)
	if s.OverrideFile != "" {
		args = append(args, "-f", s.OverrideFile)
	}
	args = append(args, extraArgs...)
	return args
}

// SimpleInfo is the lightweight per-stack projection sent in stack
// list broadcasts, grounded on state.rs's SimpleStackInfo.
type SimpleInfo struct {
	Name                    string   `json:"name"`
	Status                  Status   `json:"status"`
	Started                 bool     `json:"started"`
	RecreateNecessary       bool     `json:"recreateNecessary"`
	ImageUpdatesAvailable   bool     `json:"imageUpdatesAvailable"`
	Tags                    []string `json:"tags"`
	IsManagedByDockge       bool     `json:"isManagedByDockge"`
	ComposeFileName         string   `json:"composeFileName,omitempty"`
	ComposeOverrideFileName string   `json:"composeOverrideFileName,omitempty"`
	Endpoint                string   `json:"endpoint,omitempty"`
}

func (s *Stack) ToSimpleInfo() SimpleInfo {
	return SimpleInfo{
		Name:                    s.Name,
		Status:                  s.Status,
		Started:                 s.IsStarted(),
		RecreateNecessary:       s.RecreateNecessary,
		ImageUpdatesAvailable:   s.ImageUpdatesAvailable,
		Tags:                    s.Tags,
		IsManagedByDockge:       s.IsManagedByDockge(),
		ComposeFileName:         s.ComposeFile,
		ComposeOverrideFileName: s.OverrideFile,
		Endpoint:                s.Endpoint,
	}
}

// FullJSON is the detailed per-stack payload for getStack, including
// the raw compose text the editor operates on.
type FullJSON struct {
	SimpleInfo
	ComposeYAML         string `json:"composeYAML"`
	ComposeENV          string `json:"composeENV"`
	ComposeOverrideYAML string `json:"composeOverrideYAML"`
	PrimaryHostname     string `json:"primaryHostname,omitempty"`
}

func (s *Stack) ToFullJSON(primaryHostname string) FullJSON {
	return FullJSON{
		SimpleInfo:          s.ToSimpleInfo(),
		ComposeYAML:         s.ComposeYAML,
		ComposeENV:          s.ComposeENV,
		ComposeOverrideYAML: s.ComposeOverrideYAML,
		PrimaryHostname:     primaryHostname,
	}
}
