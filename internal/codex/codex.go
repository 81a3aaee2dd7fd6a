// Package codex adapts the codex CLI to the review and revision capabilities
// the debate loop consumes.
package codex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/artifact"
)

// reasoningConfig raises reasoning effort for structured diff reviews.
const reasoningConfig = "model_reasoning_effort=high"

// Invoker runs the codex CLI.
type Invoker struct {
	CodexPath string
	Logger    *slog.Logger
}

// Name returns the backend name.
func (inv *Invoker) Name() string { return agent.Codex }

// reviewArgs returns the `codex review` arguments for a scope, or nil when
// the scope has no structured review form.
func reviewArgs(scope artifact.Scope) []string {
	var args []string
	switch scope.Kind {
	case artifact.ScopeUncommitted:
		args = []string{"review", "--uncommitted"}
	case artifact.ScopeCommit:
		if scope.Value == "" {
			return nil
		}
		args = []string{"review", "--commit", scope.Value}
	case artifact.ScopeBase:
		if scope.Value == "" {
			return nil
		}
		args = []string{"review", "--base", scope.Value}
	default:
		return nil
	}
	return append(args, "--config", reasoningConfig)
}

// execArgs returns the `codex exec` arguments for a free-form prompt.
func execArgs(prompt string, inRepo bool) []string {
	args := []string{"exec"}
	if !inRepo {
		args = append(args, "--skip-git-repo-check")
	}
	return append(args, prompt)
}

// Review critiques an artifact. Code inside a git workspace first tries the
// structured `codex review` call for the scope and falls back to the generic
// prompt when that call fails or the scope has no structured form. Each
// subprocess gets its own req.Timeout, so a timed-out structured review
// leaves the full limit to the prompt.
func (inv *Invoker) Review(ctx context.Context, req agent.ReviewRequest) (string, error) {
	if req.Target == artifact.KindCode && req.InRepo {
		if args := reviewArgs(req.Scope); args != nil {
			out, err := inv.run(ctx, args, req.WorkDir, req.Timeout)
			if err == nil {
				return out.Text(), nil
			}
			if inv.Logger != nil {
				inv.Logger.Debug("codex structured review failed, using prompt", "scope", req.Scope.String(), "error", err)
			}
		}
	}

	out, err := inv.run(ctx, execArgs(agent.ReviewPrompt(req.ArtifactPath, req.Target), req.InRepo), inv.dir(req.WorkDir, req.InRepo), req.Timeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Stdout), nil
}

// Revise asks codex for a revised artifact. Empty output is a failure.
func (inv *Invoker) Revise(ctx context.Context, req agent.ReviseRequest) (string, error) {
	out, err := inv.run(ctx, execArgs(agent.RevisePrompt(req), req.InRepo), inv.dir(req.WorkDir, req.InRepo), req.Timeout)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(out.Stdout)
	if text == "" {
		return "", agent.Fail(agent.Codex, agent.ErrEmptyOutput)
	}
	return text, nil
}

// Validate checks that the CLI runs and returns its version line.
func (inv *Invoker) Validate(ctx context.Context) (string, error) {
	out, err := inv.run(ctx, []string{"--version"}, "", 0)
	if err != nil {
		return "", fmt.Errorf("codex CLI not usable at %q: %w", inv.CodexPath, err)
	}
	return out.Text(), nil
}

func (inv *Invoker) dir(workDir string, inRepo bool) string {
	if inRepo {
		return workDir
	}
	return ""
}

func (inv *Invoker) run(ctx context.Context, args []string, dir string, timeout time.Duration) (agent.Output, error) {
	return agent.Run(ctx, inv.Logger, agent.Command{
		Backend: agent.Codex,
		Path:    inv.CodexPath,
		Args:    args,
		Dir:     dir,
		Timeout: timeout,
	})
}
