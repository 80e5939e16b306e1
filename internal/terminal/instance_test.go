package terminal

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestInstancePushAndGetBuffer(t *testing.T) {
	inst := NewInstance("test", "echo", nil, "", false, false)
	inst.PushBuffer("hello\r\n")
	inst.PushBuffer("world\r\n")

	if got, want := inst.GetBuffer(), "hello\r\nworld\r\n"; got != want {
		t.Errorf("GetBuffer() = %q, want %q", got, want)
	}
}

func TestInstancePushBufferEvicts(t *testing.T) {
	inst := NewInstance("test", "echo", nil, "", false, false)
	for i := 0; i < BufferLimit+10; i++ {
		inst.PushBuffer("x")
	}
	if got := strings.Count(inst.GetBuffer(), "x"); got != BufferLimit {
		t.Errorf("buffer length after eviction = %d, want %d", got, BufferLimit)
	}
}

func TestInstanceSubscribeReceivesAndUnsubscribe(t *testing.T) {
	inst := NewInstance("test", "echo", nil, "", false, false)
	ch, unsubscribe := inst.Subscribe()

	inst.PushBuffer("chunk1")
	select {
	case got := <-ch:
		if got != "chunk1" {
			t.Errorf("got %q, want chunk1", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscribed chunk")
	}

	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestInstanceRunNonPTY(t *testing.T) {
	inst := NewInstance("test", "echo", []string{"hi"}, "", false, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := inst.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !inst.Done() {
		t.Error("instance should report Done() after Run returns")
	}
	if !strings.Contains(inst.GetBuffer(), "hi") {
		t.Errorf("buffer %q should contain command output", inst.GetBuffer())
	}
}

func TestInstanceKillTerminatesRunningProcess(t *testing.T) {
	inst := NewInstance("test", "sleep", []string{"30"}, "", false, true)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		inst.Run(ctx)
		close(done)
	}()

	inst.Kill()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Kill should cause Run to return promptly")
	}
	if !inst.Done() {
		t.Error("instance should report Done() after Kill")
	}
}

func TestInstanceKillOnFinishedProcessIsNoop(t *testing.T) {
	inst := NewInstance("test", "echo", []string{"hi"}, "", false, false)
	if _, err := inst.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	inst.Kill()
}

func TestJoinArgs(t *testing.T) {
	if got := joinArgs(nil); got != "" {
		t.Errorf("joinArgs(nil) = %q, want empty", got)
	}
	if got := joinArgs([]string{"a", "b", "c"}); got != "a b c" {
		t.Errorf("joinArgs = %q, want %q", got, "a b c")
	}
}
