// Package vcs collects review material from a git working tree.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/debate/internal/artifact"
)

// ErrNotRepo is returned when a directory is not inside a git working tree.
var ErrNotRepo = errors.New("not a git repository")

// Repo runs git commands against one working tree.
type Repo struct {
	Root string // Absolute top-level directory of the working tree.
}

// Open returns the repository containing dir, or ErrNotRepo when dir is not
// inside a working tree or git is not installed.
func Open(ctx context.Context, dir string) (*Repo, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("%w: git not found", ErrNotRepo)
	}
	out, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepo, err)
	}
	return &Repo{Root: strings.TrimSpace(out)}, nil
}

// Change is the material collected for one scope.
type Change struct {
	Diff    string // Patch text, or file contents when Snippet is set.
	Stat    string // Human-readable summary of the change.
	Snippet bool   // Diff holds plain file contents rather than a patch.
}

// WorkingDiff returns the unstaged working tree diff.
func (r *Repo) WorkingDiff(ctx context.Context) (string, error) {
	out, err := git(ctx, r.Root, "diff")
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}
	return out, nil
}

// Collect returns the diff and stat for scope. A file scope whose diff is
// empty falls back to the file contents as a snippet.
func (r *Repo) Collect(ctx context.Context, scope artifact.Scope) (Change, error) {
	if err := scope.Validate(); err != nil {
		return Change{}, err
	}

	var diffArgs, statArgs []string
	switch scope.Kind {
	case artifact.ScopeUncommitted:
		diffArgs = []string{"diff"}
		statArgs = []string{"diff", "--stat"}
	case artifact.ScopeCommit:
		diffArgs = []string{"show", "--patch", scope.Value}
		statArgs = []string{"show", "--stat", "--oneline", scope.Value}
	case artifact.ScopeBase:
		expr := scope.Value + "...HEAD"
		diffArgs = []string{"diff", expr}
		statArgs = []string{"diff", "--stat", expr}
	case artifact.ScopeRange:
		diffArgs = []string{"diff", scope.Value}
		statArgs = []string{"diff", "--stat", scope.Value}
	case artifact.ScopeFile:
		diffArgs = []string{"diff", "--", scope.Value}
		statArgs = []string{"diff", "--stat", "--", scope.Value}
	default:
		return Change{}, fmt.Errorf("%w: %s", artifact.ErrUnsupportedScope, scope)
	}
	diff, err := git(ctx, r.Root, diffArgs...)
	if err != nil {
		return Change{}, fmt.Errorf("git %s for %s: %w", diffArgs[0], scope, err)
	}
	// The stat is informational; a failure leaves it empty.
	stat, _ := git(ctx, r.Root, statArgs...)

	if scope.Kind == artifact.ScopeFile && strings.TrimSpace(diff) == "" {
		path := filepath.Join(r.Root, scope.Value)
		if data, info, ok := readRegular(path); ok {
			return Change{
				Diff:    string(data),
				Stat:    fmt.Sprintf("file:%s bytes=%d", scope.Value, info.Size()),
				Snippet: true,
			}, nil
		}
	}
	return Change{Diff: diff, Stat: stat}, nil
}

func readRegular(path string) ([]byte, os.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false
	}
	return data, info, true
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("%w: %s", err, msg)
	}
	return stdout.String(), nil
}
