package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// stopGrace is how long Close waits for the subprocess to exit after
// its stdin is closed before killing it.
const stopGrace = 5 * time.Second

// StdioConfig describes how to launch one MCP server subprocess.
type StdioConfig struct {
	// Server is the configured server name, used in error reporting.
	Server string

	// Command is the executable to run. It must resolve on PATH.
	Command string

	// Args are command-line arguments passed to the executable.
	Args []string

	// Env are additional environment variables for the subprocess
	// ("KEY=VALUE"), appended to the current process environment.
	Env []string

	Logger *slog.Logger
}

// StdioTransport runs an MCP server as a child process and exchanges
// newline-delimited JSON-RPC over its stdin/stdout. The subprocess is
// launched on first use; launch failures come back as *ConnectionError
// naming the server. Once the subprocess dies or the pipes fail the
// transport is broken for good — a degraded server stays degraded, it
// is never silently relaunched mid-conversation.
type StdioTransport struct {
	cfg    StdioConfig
	logger *slog.Logger

	mu     sync.Mutex
	proc   *exec.Cmd
	in     io.WriteCloser
	out    *bufio.Reader
	broken bool
}

// NewStdioTransport creates a transport for the given config. No
// process is started yet.
func NewStdioTransport(cfg StdioConfig) *StdioTransport {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioTransport{
		cfg:    cfg,
		logger: logger.With("mcp_server", cfg.Server),
	}
}

// Call sends a request and waits for the response carrying the same
// id. Stray lines (server notifications, log noise on stdout) are
// skipped. The mutex serializes calls since the pipe pair is a single
// ordered channel.
func (t *StdioTransport) Call(ctx context.Context, req *Request) (*Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureStarted(); err != nil {
		return nil, err
	}
	if err := t.writeLocked(req); err != nil {
		return nil, err
	}
	return t.awaitLocked(ctx, req.ID)
}

// Post sends a notification. Nothing is read back.
func (t *StdioTransport) Post(_ context.Context, notif *Request) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureStarted(); err != nil {
		return err
	}
	return t.writeLocked(notif)
}

// Close shuts the subprocess down: stdin is closed to let it exit on
// its own, with a kill after stopGrace. Safe on a never-started or
// already-broken transport.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.proc == nil {
		t.broken = true
		return nil
	}

	t.logger.Info("stopping MCP subprocess", "pid", t.proc.Process.Pid)
	t.in.Close()

	done := make(chan error, 1)
	go func() { done <- t.proc.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(stopGrace):
		t.logger.Warn("MCP subprocess did not exit, killing", "pid", t.proc.Process.Pid)
		_ = t.proc.Process.Kill()
		<-done
	}

	t.proc = nil
	t.in = nil
	t.out = nil
	t.broken = true
	return err
}

// ensureStarted launches the subprocess on first use. Caller holds t.mu.
func (t *StdioTransport) ensureStarted() error {
	if t.broken {
		return &ConnectionError{Server: t.cfg.Server, Err: errors.New("subprocess terminated")}
	}
	if t.proc != nil {
		return nil
	}

	cmd := exec.Command(t.cfg.Command, t.cfg.Args...)
	cmd.Env = append(os.Environ(), t.cfg.Env...)

	in, err := cmd.StdinPipe()
	if err != nil {
		return t.launchFailed(fmt.Errorf("stdin pipe: %w", err))
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		in.Close()
		return t.launchFailed(fmt.Errorf("stdout pipe: %w", err))
	}
	// stderr is log noise, not protocol.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		in.Close()
		out.Close()
		return t.launchFailed(fmt.Errorf("stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		in.Close()
		out.Close()
		stderr.Close()
		return t.launchFailed(fmt.Errorf("start %s: %w", t.cfg.Command, err))
	}

	t.proc = cmd
	t.in = in
	t.out = bufio.NewReaderSize(out, 1<<20) // tool results can be large
	go t.drainStderr(stderr)

	t.logger.Info("MCP subprocess started",
		"command", t.cfg.Command,
		"pid", cmd.Process.Pid,
	)
	return nil
}

// launchFailed marks the transport broken and wraps the cause in the
// per-server connection error. Caller holds t.mu.
func (t *StdioTransport) launchFailed(err error) error {
	t.broken = true
	return &ConnectionError{Server: t.cfg.Server, Err: err}
}

// writeLocked marshals a message and writes it with the newline
// delimiter. A write failure breaks the transport. Caller holds t.mu.
func (t *StdioTransport) writeLocked(msg *Request) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if _, err := t.in.Write(append(data, '\n')); err != nil {
		t.breakLocked()
		return fmt.Errorf("write to subprocess: %w", err)
	}
	return nil
}

// lineRead is the outcome of one stdout line read.
type lineRead struct {
	data []byte
	err  error
}

// awaitLocked reads stdout lines until one parses as a response with
// the wanted id. Reads run in a goroutine so ctx can interrupt a
// blocked read; interruption breaks the transport since the stream
// position is then unknown. Caller holds t.mu.
func (t *StdioTransport) awaitLocked(ctx context.Context, id int64) (*Response, error) {
	for {
		ch := make(chan lineRead, 1)
		out := t.out
		go func() {
			data, err := out.ReadBytes('\n')
			ch <- lineRead{data: data, err: err}
		}()

		select {
		case <-ctx.Done():
			t.breakLocked()
			return nil, ctx.Err()
		case got := <-ch:
			if got.err != nil {
				t.breakLocked()
				return nil, fmt.Errorf("read from subprocess: %w", got.err)
			}

			var resp Response
			if err := json.Unmarshal(got.data, &resp); err != nil {
				t.logger.Debug("skipping non-JSON line from subprocess", "line", string(got.data))
				continue
			}
			if resp.ID != id {
				t.logger.Debug("skipping unmatched message", "id", resp.ID)
				continue
			}
			return &resp, nil
		}
	}
}

// breakLocked kills the subprocess and marks the transport broken.
// Caller holds t.mu.
func (t *StdioTransport) breakLocked() {
	if t.in != nil {
		t.in.Close()
	}
	if t.proc != nil && t.proc.Process != nil {
		_ = t.proc.Process.Kill()
		_ = t.proc.Wait()
	}
	t.proc = nil
	t.in = nil
	t.out = nil
	t.broken = true
}

// drainStderr logs subprocess stderr lines at debug level.
func (t *StdioTransport) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		t.logger.Debug("MCP subprocess stderr", "line", scanner.Text())
	}
}
