// Package agent defines the vocabulary shared by review backends: backend
// names, host detection, review and revision requests, and the error a
// failed backend call is reported with.
package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/papapumpkin/debate/internal/artifact"
)

// Known backend names.
const (
	Claude = "claude"
	Codex  = "codex"
)

// HostBackend returns the backend hosting the current process, detected from
// the environment. lookup has the signature of os.LookupEnv.
func HostBackend(lookup func(string) (string, bool)) string {
	for _, key := range []string{"CODEX_THREAD_ID", "CODEX_SANDBOX_ID"} {
		if v, ok := lookup(key); ok && v != "" {
			return Codex
		}
	}
	return Claude
}

// Opposite returns the backend that is not name.
func Opposite(name string) string {
	if name == Codex {
		return Claude
	}
	return Codex
}

// ReviseMode selects which revision a backend is asked to produce.
type ReviseMode string

const (
	ReviseCompromise     ReviseMode = "compromise"      // Balance the critique against the original.
	ReviseAcceptOpposite ReviseMode = "accept_opposite" // Apply the critique outright.
)

// ReviewRequest asks a backend to critique an artifact written to disk.
type ReviewRequest struct {
	Target       artifact.Kind  // Effective review target; never KindMixed.
	ArtifactPath string         // File holding the text to review.
	Scope        artifact.Scope // Version-control scope for code reviews.
	WorkDir      string         // Directory to run in; the git root when InRepo.
	InRepo       bool           // WorkDir is a git working tree.
	Timeout      time.Duration  // Per subprocess; zero means no limit.
}

// ReviseRequest asks a backend to rewrite an artifact given a critique.
type ReviseRequest struct {
	Mode     ReviseMode
	Current  string // Artifact text before revision.
	Critique string // Raw critique text of the round.
	WorkDir  string
	InRepo   bool
	Timeout  time.Duration // Per subprocess; zero means no limit.
}

// BackendError reports that a backend call produced no usable text: a
// non-zero exit, a timeout, a transport failure, or an empty answer.
type BackendError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BackendError) Unwrap() error { return e.Err }

// ErrEmptyOutput is the cause recorded when a backend exits cleanly but
// prints nothing.
var ErrEmptyOutput = errors.New("empty output")

// Fail wraps err as a BackendError for the named backend. An error that is
// already a BackendError is returned unchanged.
func Fail(backend string, err error) error {
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Backend: backend, Err: err}
}
