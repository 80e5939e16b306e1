package terminal

import (
	"context"
	"testing"
	"time"
)

func TestManagerExecRunsAndCleansUp(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inst, err := m.Exec(ctx, "job-1", "echo", []string{"hi"}, "")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	select {
	case <-inst.Wait():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exec to finish")
	}

	if m.Has("job-1") {
		t.Error("Manager should remove the instance once Exec finishes")
	}
}

func TestManagerExecRejectsAlreadyRunning(t *testing.T) {
	m := NewManager()
	inst := NewInstance("job-2", "sleep", []string{"5"}, "", false, true)
	m.register(inst)

	_, err := m.Exec(context.Background(), "job-2", "echo", []string{"ignored"}, "")
	if err == nil {
		t.Fatal("Exec on an already-registered name should fail")
	}
}

func TestManagerWriteInputAndResizeUnknownTerminal(t *testing.T) {
	m := NewManager()
	if err := m.WriteInput("missing", "data"); err == nil {
		t.Error("WriteInput on an unknown terminal should fail")
	}
	if err := m.Resize("missing", 80, 24); err == nil {
		t.Error("Resize on an unknown terminal should fail")
	}
	if _, err := m.GetBuffer("missing"); err == nil {
		t.Error("GetBuffer on an unknown terminal should fail")
	}
}

func TestManagerCount(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := m.SpawnPersistent(ctx, "a", "sleep", []string{"10"}, "", false); err != nil {
		t.Fatalf("SpawnPersistent failed: %v", err)
	}
	if _, err := m.SpawnPersistent(ctx, "b", "sleep", []string{"10"}, "", false); err != nil {
		t.Fatalf("SpawnPersistent failed: %v", err)
	}
	if got := m.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	m.Remove("a")
	if got := m.Count(); got != 1 {
		t.Errorf("Count() after Remove = %d, want 1", got)
	}
}
