package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathHelpers(t *testing.T) {
	c := &Config{DataDir: "/var/lib/dockge"}

	if got := c.DBPath(); got != filepath.Join("/var/lib/dockge", "dockge.db") {
		t.Errorf("DBPath() = %q", got)
	}
	if got := c.LockFilePath(); got != filepath.Join("/var/lib/dockge", "dockged.lock") {
		t.Errorf("LockFilePath() = %q", got)
	}
	if got := c.LogFilePath(); got != filepath.Join("/var/lib/dockge", "dockged.log") {
		t.Errorf("LogFilePath() with no override = %q", got)
	}

	c.LogFile = "/custom/path.log"
	if got := c.LogFilePath(); got != "/custom/path.log" {
		t.Errorf("LogFilePath() with override = %q, want /custom/path.log", got)
	}
}

func TestTurnstileEnabled(t *testing.T) {
	c := &Config{}
	if c.TurnstileEnabled() {
		t.Error("TurnstileEnabled() with no keys should be false")
	}
	c.TurnstileSiteKey = "site"
	if c.TurnstileEnabled() {
		t.Error("TurnstileEnabled() with only a site key should be false")
	}
	c.TurnstileSecretKey = "secret"
	if !c.TurnstileEnabled() {
		t.Error("TurnstileEnabled() with both keys should be true")
	}
}

func TestIsDev(t *testing.T) {
	t.Setenv("NODE_ENV", "")
	c := &Config{}
	if c.IsDev() {
		t.Error("IsDev() should be false by default")
	}
	t.Setenv("NODE_ENV", "development")
	if !c.IsDev() {
		t.Error("IsDev() should be true when NODE_ENV=development")
	}
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	c := &Config{
		DataDir:   filepath.Join(dir, "data"),
		StacksDir: filepath.Join(dir, "stacks"),
	}
	if err := c.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	for _, p := range []string{c.DataDir, c.StacksDir} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
		if !info.IsDir() {
			t.Errorf("%s should be a directory", p)
		}
	}
}
