// Package source resolves the initial artifact of a debate session from
// explicit content, a file, version control, or standard input.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/vcs"
)

// PastePrompt is written before the artifact is read from standard input.
const PastePrompt = "No auto-detected artifact. Paste content, then Ctrl-D:"

// ErrNoContent is the cause when standard input yields no artifact text.
var ErrNoContent = errors.New("no artifact content provided")

// ResolutionError reports that no initial artifact could be obtained. It is
// fatal: the session never starts.
type ResolutionError struct {
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string { return "resolving artifact: " + e.Err.Error() }

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error { return e.Err }

// Request describes where to look for the initial artifact.
type Request struct {
	Content      string         // Explicit artifact text; wins over everything else.
	ArtifactFile string         // Path to read the artifact from.
	Target       artifact.Kind  // Forced target; empty means classify automatically.
	Scope        artifact.Scope // Version-control scope for code artifacts.
	WorkDir      string         // Workspace root for relative file scopes.
	Repo         *vcs.Repo      // Nil outside a git working tree.
	Stdin        io.Reader      // Last-resort artifact source.
	Prompt       io.Writer      // Receives PastePrompt; may be nil.
}

// Resolved is the initial artifact plus any version-control material it was
// built from.
type Resolved struct {
	Artifact artifact.Artifact
	Diff     string // Collected diff or file contents.
	Stat     string // Change summary accompanying Diff.
	// Collected is set when Diff and Stat came from a scope collection and
	// should be kept alongside the session.
	Collected bool
}

// Resolve obtains the initial artifact. Sources are tried in order: explicit
// content, the artifact file, the git scope, a file scope outside git, and
// finally standard input. Every failure is a *ResolutionError.
func Resolve(ctx context.Context, req Request) (Resolved, error) {
	if req.Content != "" {
		return text(req.Content, req.Target), nil
	}

	if req.ArtifactFile != "" {
		data, err := os.ReadFile(req.ArtifactFile)
		if err != nil {
			return Resolved{}, &ResolutionError{Err: fmt.Errorf("reading artifact file: %w", err)}
		}
		return text(string(data), req.Target), nil
	}

	switch {
	case req.Repo != nil && req.Target != artifact.KindProposal:
		res, ok, err := fromRepo(ctx, req)
		if err != nil {
			return Resolved{}, &ResolutionError{Err: err}
		}
		if ok {
			return res, nil
		}
	case req.Repo == nil && req.Target == artifact.KindCode:
		switch req.Scope.Kind {
		case artifact.ScopeFile:
			res, err := fromFile(req)
			if err != nil {
				return Resolved{}, &ResolutionError{Err: err}
			}
			return res, nil
		case artifact.ScopeSnippet:
		default:
			return Resolved{}, &ResolutionError{Err: fmt.Errorf(
				"%w in non-git workspace: %s; use file:<path> or provide explicit snippet content",
				artifact.ErrUnsupportedScope, req.Scope)}
		}
	}

	return fromStdin(req)
}

func text(content string, target artifact.Kind) Resolved {
	if target == "" {
		target = artifact.Classify(content)
	}
	return Resolved{Artifact: artifact.Artifact{Content: content, Kind: target, Provenance: artifact.ProvenanceText}}
}

// fromRepo collects the scope when the target is code or the working tree
// has changes. ok is false when there was nothing to collect.
func fromRepo(ctx context.Context, req Request) (Resolved, bool, error) {
	if req.Target != artifact.KindCode {
		// A failing plain diff counts as no changes.
		diff, _ := req.Repo.WorkingDiff(ctx)
		if strings.TrimSpace(diff) == "" {
			return Resolved{}, false, nil
		}
	}
	ch, err := req.Repo.Collect(ctx, req.Scope)
	if err != nil {
		return Resolved{}, false, err
	}
	kind := req.Target
	if kind == "" {
		kind = artifact.KindCode
	}
	prov := artifact.ProvenanceDiff
	if ch.Snippet {
		prov = artifact.ProvenanceSnippet
	}
	diff := strings.TrimSpace(ch.Diff)
	return Resolved{
		Artifact:  artifact.Artifact{Content: diff, Kind: kind, Provenance: prov},
		Diff:      diff,
		Stat:      ch.Stat,
		Collected: true,
	}, true, nil
}

func fromFile(req Request) (Resolved, error) {
	path := req.Scope.Value
	if path == "" {
		return Resolved{}, fmt.Errorf("%w: file scope requires a path", artifact.ErrUnsupportedScope)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(req.WorkDir, path)
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return Resolved{}, fmt.Errorf("file scope path does not exist or is not a file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Resolved{}, fmt.Errorf("reading file scope: %w", err)
	}
	return Resolved{
		Artifact:  artifact.Artifact{Content: string(data), Kind: artifact.KindCode, Provenance: artifact.ProvenanceSnippet},
		Diff:      string(data),
		Stat:      fmt.Sprintf("file:%s bytes=%d", path, info.Size()),
		Collected: true,
	}, nil
}

func fromStdin(req Request) (Resolved, error) {
	if req.Stdin == nil {
		return Resolved{}, &ResolutionError{Err: ErrNoContent}
	}
	if req.Prompt != nil {
		fmt.Fprintln(req.Prompt, PastePrompt)
	}
	data, err := io.ReadAll(req.Stdin)
	if err != nil {
		return Resolved{}, &ResolutionError{Err: fmt.Errorf("reading stdin: %w", err)}
	}
	pasted := string(data)
	if strings.TrimSpace(pasted) == "" {
		return Resolved{}, &ResolutionError{Err: ErrNoContent}
	}
	if req.Repo == nil && req.Target == artifact.KindCode {
		return Resolved{Artifact: artifact.Artifact{Content: pasted, Kind: artifact.KindCode, Provenance: artifact.ProvenanceSnippet}}, nil
	}
	return text(pasted, req.Target), nil
}
