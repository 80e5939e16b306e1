package stacks

import (
	"strings"
	"testing"

	"github.com/cfilipov/dockge/internal/compose"
)

func TestDeclaredImages(t *testing.T) {
	yamlDoc := `
services:
  web:
    image: nginx:1.27
  worker:
    build: .
`
	got := declaredImages(yamlDoc)
	if got["web"] != "nginx:1.27" {
		t.Errorf("web image = %q, want nginx:1.27", got["web"])
	}
	if _, ok := got["worker"]; ok {
		t.Error("a service with no image field should not appear")
	}
}

func TestDeclaredImagesInvalidYAML(t *testing.T) {
	if got := declaredImages("not: [valid"); got != nil {
		t.Errorf("declaredImages on invalid YAML = %+v, want nil", got)
	}
}

func TestJoinShellArgs(t *testing.T) {
	if got := joinShellArgs([]string{"-f", "compose.yaml", "up", "-d"}); got != "-f compose.yaml up -d" {
		t.Errorf("joinShellArgs = %q", got)
	}
	if got := joinShellArgs(nil); got != "" {
		t.Errorf("joinShellArgs(nil) = %q, want empty", got)
	}
}

func TestBuildUpdateScript(t *testing.T) {
	s := &compose.Stack{StacksDir: t.TempDir(), Name: "my-app", ComposeFile: "compose.yaml"}
	script := buildUpdateScript(s)
	if !strings.Contains(script, "docker compose -f compose.yaml pull") {
		t.Errorf("script missing pull phase: %q", script)
	}
	if !strings.Contains(script, "up -d") {
		t.Errorf("script missing up phase: %q", script)
	}
	if !strings.Contains(script, "docker image prune -f") {
		t.Errorf("script missing prune phase: %q", script)
	}
}
