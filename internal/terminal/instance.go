// TerminalInstance is a single named process and its replay buffer,
// grounded on terminal.rs's TerminalInstance (buffer, input channel,
// run loop) with usermsg.go's ANSI-dimmed banner idiom adapted in
// for the initial command-echo line.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

const broadcastBufferSize = 256

// Instance is one running or completed terminal process.
type Instance struct {
	Name      string
	File      string
	Args      []string
	Cwd       string
	UsePTY    bool // true for persistent/interactive terminals, false for batch exec
	KeepAlive bool // true for persistent terminals that survive after their command line finishes

	mu        sync.RWMutex
	buffer    []string
	started   bool
	done      bool
	exitErr   error
	doneCh    chan struct{}
	runningCh chan struct{}

	inputMu sync.Mutex
	input   chan string

	subMu       sync.Mutex
	subscribers map[int]chan string
	nextSubID   int

	ptyFile *os.File
	cmd     *exec.Cmd
}

func NewInstance(name, file string, args []string, cwd string, usePTY, keepAlive bool) *Instance {
	return &Instance{
		Name:        name,
		File:        file,
		Args:        args,
		Cwd:         cwd,
		UsePTY:      usePTY,
		KeepAlive:   keepAlive,
		subscribers: make(map[int]chan string),
		doneCh:      make(chan struct{}),
		runningCh:   make(chan struct{}),
	}
}

// PushBuffer appends a chunk to the replay buffer, evicting the
// oldest entry once BufferLimit is exceeded, and fans it out to every
// live subscriber on a best-effort, non-blocking basis.
func (t *Instance) PushBuffer(chunk string) {
	t.mu.Lock()
	t.buffer = append(t.buffer, chunk)
	if len(t.buffer) > BufferLimit {
		t.buffer = t.buffer[len(t.buffer)-BufferLimit:]
	}
	t.mu.Unlock()

	t.subMu.Lock()
	for _, ch := range t.subscribers {
		select {
		case ch <- chunk:
		default:
			// Slow subscriber; drop rather than block the writer, per
			// the backpressure-free fan-out design.
		}
	}
	t.subMu.Unlock()
}

// GetBuffer concatenates the replay buffer for a newly joining client.
func (t *Instance) GetBuffer() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := ""
	for _, c := range t.buffer {
		out += c
	}
	return out
}

// Subscribe registers a new output channel and returns it along with
// an unsubscribe function.
func (t *Instance) Subscribe() (<-chan string, func()) {
	t.subMu.Lock()
	id := t.nextSubID
	t.nextSubID++
	ch := make(chan string, broadcastBufferSize)
	t.subscribers[id] = ch
	t.subMu.Unlock()

	return ch, func() {
		t.subMu.Lock()
		delete(t.subscribers, id)
		close(ch)
		t.subMu.Unlock()
	}
}

func (t *Instance) Started() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.started
}

func (t *Instance) Done() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.done
}

// Wait returns a channel closed once the process has exited, so
// callers can block without polling.
func (t *Instance) Wait() <-chan struct{} {
	return t.doneCh
}

// WriteInput forwards keystrokes to the running process's stdin (or
// PTY master), a no-op if the process hasn't started an input
// listener yet.
func (t *Instance) WriteInput(data string) {
	t.inputMu.Lock()
	ch := t.input
	t.inputMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- data:
	default:
	}
}

// Kill terminates the child process (SIGKILL-equivalent) and blocks
// until Run has reaped it, for callers that need to end a persistent
// terminal before it would exit on its own. A no-op if the process
// already finished. Waits for Run to reach a running or exited state
// first, so a Kill issued the instant after Exec/SpawnPersistent
// returns can't race cmd.Process being set.
func (t *Instance) Kill() {
	select {
	case <-t.runningCh:
	case <-t.doneCh:
		return
	}

	t.mu.RLock()
	cmd := t.cmd
	done := t.done
	t.mu.RUnlock()

	if done {
		return
	}
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	<-t.doneCh
}

// Resize adjusts the PTY window size, a no-op for non-PTY instances.
func (t *Instance) Resize(cols, rows int) error {
	t.mu.RLock()
	f := t.ptyFile
	t.mu.RUnlock()
	if f == nil {
		return nil
	}
	return pty.Setsize(f, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// Run starts the child process, wires up stdout/stderr and stdin
// pumps, and blocks until the process exits or ctx is cancelled. It
// pushes an ANSI-dimmed command banner before the process starts,
// matching the "$ cmd args..." echo line.
func (t *Instance) Run(ctx context.Context) (exitCode int, err error) {
	banner := fmt.Sprintf("\x1b[90m$ %s %s\x1b[0m\r\n", t.File, joinArgs(t.Args))
	t.PushBuffer(banner)

	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	t.inputMu.Lock()
	t.input = make(chan string, 64)
	inputCh := t.input
	t.inputMu.Unlock()

	defer func() {
		t.mu.Lock()
		t.done = true
		t.exitErr = err
		t.mu.Unlock()
		close(t.doneCh)
	}()

	cmd := exec.CommandContext(ctx, t.File, t.Args...)
	cmd.Dir = t.Cwd
	t.cmd = cmd

	if t.UsePTY {
		f, perr := pty.Start(cmd)
		if perr != nil {
			close(t.runningCh)
			return -1, perr
		}
		t.mu.Lock()
		t.ptyFile = f
		t.mu.Unlock()
		close(t.runningCh)

		go pumpInput(inputCh, f)
		pumpOutput(f, t.PushBuffer)

		werr := cmd.Wait()
		return exitCodeOf(werr)
	}

	stdout, _ := cmd.StdoutPipe()
	stderr, _ := cmd.StderrPipe()
	stdin, _ := cmd.StdinPipe()

	if serr := cmd.Start(); serr != nil {
		close(t.runningCh)
		return -1, serr
	}
	close(t.runningCh)

	go pumpInput(inputCh, stdin)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); pumpLines(stdout, t.PushBuffer) }()
	go func() { defer wg.Done(); pumpLines(stderr, t.PushBuffer) }()
	wg.Wait()

	werr := cmd.Wait()
	return exitCodeOf(werr)
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

func pumpInput(input <-chan string, w io.Writer) {
	for data := range input {
		io.WriteString(w, data)
	}
}

func pumpOutput(r io.Reader, push func(string)) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			push(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

func pumpLines(r io.Reader, push func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		push(scanner.Text() + "\r\n")
	}
}

func exitCodeOf(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
