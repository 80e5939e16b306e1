package logging

import (
	"path/filepath"
	"testing"
)

func TestInitToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "dockged.log")
	rotator, err := Init(logFile, "debug")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if rotator == nil {
		t.Fatal("Init with a log file should return a non-nil rotator")
	}
	defer rotator.Close()

	if rotator.Filename != logFile {
		t.Errorf("rotator.Filename = %q, want %q", rotator.Filename, logFile)
	}
}

func TestInitToStderr(t *testing.T) {
	rotator, err := Init("", "info")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if rotator != nil {
		t.Error("Init with no log file should return a nil rotator")
	}
}

func TestComponent(t *testing.T) {
	log := Component("imagecheck")
	if log == nil {
		t.Fatal("Component should never return nil")
	}
}
