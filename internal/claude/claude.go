// Package claude adapts the claude CLI to the review and revision
// capabilities the debate loop consumes.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/papapumpkin/debate/internal/agent"
)

// Invoker runs the claude CLI in print mode with JSON output.
type Invoker struct {
	ClaudePath string
	Model      string // Optional --model override.
	Logger     *slog.Logger
}

// Name returns the backend name.
func (inv *Invoker) Name() string { return agent.Claude }

// buildEnv constructs the environment for a claude invocation.
// It strips the CLAUDECODE variable (to allow nested invocation) and adds
// CLAUDE_CODE_DISABLE_MCP_POPUPS=1 to suppress MCP server UI popups
// during headless runs.
func buildEnv(base []string) []string {
	env := make([]string, 0, len(base)+1)
	for _, e := range base {
		if !strings.HasPrefix(e, "CLAUDECODE=") {
			env = append(env, e)
		}
	}
	env = append(env, "CLAUDE_CODE_DISABLE_MCP_POPUPS=1")
	return env
}

// buildArgs constructs the CLI arguments for a claude invocation.
func (inv *Invoker) buildArgs(prompt string) []string {
	args := []string{
		"-p", prompt,
		"--output-format", "json",
	}
	if inv.Model != "" {
		args = append(args, "--model", inv.Model)
	}
	return args
}

// Review asks claude for a sectioned critique of the artifact file. Claude
// has no structured diff review, so every target uses the generic prompt.
func (inv *Invoker) Review(ctx context.Context, req agent.ReviewRequest) (string, error) {
	return inv.invoke(ctx, agent.ReviewPrompt(req.ArtifactPath, req.Target), req.WorkDir, req.Timeout)
}

// Revise asks claude for a revised artifact. Empty output is a failure.
func (inv *Invoker) Revise(ctx context.Context, req agent.ReviseRequest) (string, error) {
	out, err := inv.invoke(ctx, agent.RevisePrompt(req), req.WorkDir, req.Timeout)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", agent.Fail(agent.Claude, agent.ErrEmptyOutput)
	}
	return out, nil
}

func (inv *Invoker) invoke(ctx context.Context, prompt, workDir string, timeout time.Duration) (string, error) {
	out, err := agent.Run(ctx, inv.Logger, agent.Command{
		Backend: agent.Claude,
		Path:    inv.ClaudePath,
		Args:    inv.buildArgs(prompt),
		Dir:     workDir,
		Env:     buildEnv(os.Environ()),
		Timeout: timeout,
	})
	if err != nil {
		return "", err
	}
	text, err := parseResponse([]byte(out.Stdout))
	if err != nil {
		return "", agent.Fail(agent.Claude, err)
	}
	if inv.Logger != nil {
		inv.Logger.Debug("claude response", "bytes", len(text))
	}
	return text, nil
}

// response is the part of the `claude -p --output-format json` envelope
// a review needs.
type response struct {
	Subtype string `json:"subtype"`
	IsError bool   `json:"is_error"`
	Result  string `json:"result"`
}

// parseResponse extracts the result text from claude's JSON envelope.
func parseResponse(raw []byte) (string, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parsing claude JSON output: %w", err)
	}
	if resp.IsError {
		msg := resp.Result
		if msg == "" {
			msg = resp.Subtype
		}
		return "", fmt.Errorf("claude returned error: %s", msg)
	}
	return strings.TrimSpace(resp.Result), nil
}

// Validate checks that the CLI runs and returns its version line.
func (inv *Invoker) Validate(ctx context.Context) (string, error) {
	out, err := agent.Run(ctx, inv.Logger, agent.Command{
		Backend: agent.Claude,
		Path:    inv.ClaudePath,
		Args:    []string{"--version"},
		Env:     buildEnv(os.Environ()),
	})
	if err != nil {
		return "", fmt.Errorf("claude CLI not usable at %q: %w", inv.ClaudePath, err)
	}
	return strings.TrimSpace(out.Stdout), nil
}
