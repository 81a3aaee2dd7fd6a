package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	maxStderr = 2000            // Bytes of stderr kept in a failure message.
	waitDelay = 5 * time.Second // Grace period for pipes after a kill.
)

// Command describes one backend subprocess invocation.
type Command struct {
	Backend string        // Backend name used in errors and logs.
	Path    string        // Executable path or name resolved on PATH.
	Args    []string      // Arguments after the executable.
	Dir     string        // Working directory; empty means the current one.
	Env     []string      // Full environment; nil inherits the parent's.
	Timeout time.Duration // Bounds this subprocess; zero means no limit.
}

// Output is what a finished backend subprocess printed.
type Output struct {
	Stdout string
	Stderr string
}

// Text returns trimmed stdout, or trimmed stderr when stdout is empty.
func (o Output) Text() string {
	if s := strings.TrimSpace(o.Stdout); s != "" {
		return s
	}
	return strings.TrimSpace(o.Stderr)
}

// Run executes c and returns what it printed. The subprocess runs in its own
// session so it cannot read from the operator's terminal. Every failure is
// returned as a *BackendError; a context deadline is reported as a timeout.
func Run(ctx context.Context, logger *slog.Logger, c Command) (Output, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.SysProcAttr = sessionAttr()
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if logger != nil {
		logger.Debug("backend exec", "backend", c.Backend, "path", c.Path, "args", len(c.Args), "dir", c.Dir)
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return Output{}, &BackendError{Backend: c.Backend, Err: fmt.Errorf("timed out: %w", ctxErr)}
		}
		if msg := tail(stderr.String()); msg != "" {
			err = fmt.Errorf("%w\nstderr: %s", err, msg)
		}
		return Output{}, &BackendError{Backend: c.Backend, Err: err}
	}
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// Available reports whether path resolves to an executable.
func Available(path string) bool {
	if path == "" {
		return false
	}
	_, err := exec.LookPath(path)
	return err == nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
