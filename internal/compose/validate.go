// Docker-side validation via a temp-directory dry run, grounded on
// models/stack.rs's validate_with_docker (see SPEC_FULL.md §C.6).
package compose

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cfilipov/dockge/internal/apperr"
)

// ValidateWithDocker writes the stack's compose file (and .env, if
// non-empty) to a temporary directory and runs
// `docker compose -f <file> [--env-file .env] config --dry-run`,
// surfacing any CLI-side validation error stripped of its
// "validating ...: " prefix.
func ValidateWithDocker(ctx context.Context, s *Stack) error {
	tmp, err := os.MkdirTemp("", "dockge-validate-*")
	if err != nil {
		return apperr.Wrap(apperr.Internal, err)
	}
	defer os.RemoveAll(tmp)

	composeFile := s.ComposeFile
	if composeFile == "" {
		composeFile = AcceptedComposeFileNames[0]
	}
	if err := os.WriteFile(filepath.Join(tmp, composeFile), []byte(s.ComposeYAML), 0o644); err != nil {
		return apperr.Wrap(apperr.Internal, err)
	}

	args := []string{"-f", composeFile}
	if s.ComposeENV != "" {
		if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte(s.ComposeENV), 0o644); err != nil {
			return apperr.Wrap(apperr.Internal, err)
		}
		args = append(args, "--env-file", ".env")
	}
	args = append(args, "config", "--dry-run")

	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = tmp
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := stripValidatingPrefix(string(out))
		return apperr.Validationf("%s", msg)
	}
	return nil
}

func stripValidatingPrefix(msg string) string {
	msg = strings.TrimSpace(msg)
	if idx := strings.Index(msg, "validating "); idx == 0 {
		if colon := strings.Index(msg, ": "); colon > 0 {
			return msg[colon+2:]
		}
	}
	return msg
}
