package compose

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStackValidate(t *testing.T) {
	tests := map[string]struct {
		stack   *Stack
		wantErr bool
	}{
		"valid": {
			stack:   &Stack{Name: "my-app", ComposeYAML: "services:\n  web:\n    image: nginx\n"},
			wantErr: false,
		},
		"bad name": {
			stack:   &Stack{Name: "My App", ComposeYAML: "services: {}"},
			wantErr: true,
		},
		"empty compose": {
			stack:   &Stack{Name: "my-app", ComposeYAML: "  \n"},
			wantErr: true,
		},
		"invalid yaml": {
			stack:   &Stack{Name: "my-app", ComposeYAML: "services: [this is not valid: yaml"},
			wantErr: true,
		},
		"bad env line": {
			stack: &Stack{
				Name:        "my-app",
				ComposeYAML: "services: {}",
				ComposeENV:  "FOO=bar\nNOVALUE\n",
			},
			wantErr: true,
		},
		"env with comment and blank line ok": {
			stack: &Stack{
				Name:        "my-app",
				ComposeYAML: "services: {}",
				ComposeENV:  "# a comment\n\nFOO=bar\n",
			},
			wantErr: false,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.stack.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestStackSaveAndLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "my-app")
	s.ComposeYAML = "services:\n  web:\n    image: nginx\n"
	s.ComposeENV = "FOO=bar\n"

	if err := s.Save(true); err != nil {
		t.Fatalf("Save(isAdd=true) failed: %v", err)
	}
	if err := s.Save(true); err == nil {
		t.Error("Save(isAdd=true) on an existing stack should fail")
	}

	loaded, err := LoadFromDisk(dir, "my-app")
	if err != nil {
		t.Fatalf("LoadFromDisk failed: %v", err)
	}
	if loaded.ComposeFile != "compose.yaml" {
		t.Errorf("ComposeFile = %q, want compose.yaml", loaded.ComposeFile)
	}
	if loaded.ComposeYAML != s.ComposeYAML {
		t.Errorf("ComposeYAML mismatch")
	}
	if loaded.ComposeENV != s.ComposeENV {
		t.Errorf("ComposeENV mismatch")
	}
	if !loaded.IsManagedByDockge() {
		t.Error("loaded stack should be managed by dockge")
	}

	if _, err := LoadFromDisk(dir, "missing"); err == nil {
		t.Error("LoadFromDisk of a nonexistent stack should fail")
	}
}

func TestStackSaveRejectsUpdateOfMissing(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "ghost")
	s.ComposeYAML = "services: {}"
	if err := s.Save(false); err == nil {
		t.Error("Save(isAdd=false) on a nonexistent stack should fail")
	}
}

func TestGetComposeOptions(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "my-app")
	s.ComposeFile = "compose.yaml"
	if err := os.MkdirAll(s.Path(), 0o755); err != nil {
		t.Fatal(err)
	}

	args := s.GetComposeOptions("up", "-d")
	if got, want := args, []string{"-f", "compose.yaml", "up", "-d"}; !stringSlicesEqual(got, want) {
		t.Errorf("GetComposeOptions() = %v, want %v", got, want)
	}

	if err := os.WriteFile(filepath.Join(s.Path(), ".env"), []byte("FOO=bar\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	args = s.GetComposeOptions("up", "-d")
	if got, want := args, []string{"--env-file", "./.env", "-f", "compose.yaml", "up", "-d"}; !stringSlicesEqual(got, want) {
		t.Errorf("GetComposeOptions() with .env = %v, want %v", got, want)
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
