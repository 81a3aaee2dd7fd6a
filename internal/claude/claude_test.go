package claude

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/artifact"
)

// fakeCLI writes an executable shell script standing in for the claude CLI.
// Tests that exec it stay serial to avoid ETXTBSY from concurrent forks.
func fakeCLI(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildArgs_BaseFlags(t *testing.T) {
	t.Parallel()

	inv := &Invoker{ClaudePath: "claude"}
	args := inv.buildArgs("hello world")

	if args[0] != "-p" || args[1] != "hello world" {
		t.Errorf("expected args[0:2] = [-p, hello world], got %v", args[0:2])
	}
	if args[2] != "--output-format" || args[3] != "json" {
		t.Errorf("expected args[2:4] = [--output-format, json], got %v", args[2:4])
	}
	for _, a := range args {
		if a == "--model" {
			t.Error("expected no --model flag without a model")
		}
	}
}

func TestBuildArgs_Model(t *testing.T) {
	t.Parallel()

	inv := &Invoker{Model: "opus"}
	args := inv.buildArgs("x")
	if got := strings.Join(args[len(args)-2:], " "); got != "--model opus" {
		t.Errorf("trailing args = %q, want --model opus", got)
	}
}

func TestBuildEnv(t *testing.T) {
	t.Parallel()

	env := buildEnv([]string{"HOME=/root", "CLAUDECODE=1", "PATH=/bin"})

	for _, e := range env {
		if strings.HasPrefix(e, "CLAUDECODE=") {
			t.Errorf("CLAUDECODE was not stripped: %v", env)
		}
	}
	if env[len(env)-1] != "CLAUDE_CODE_DISABLE_MCP_POPUPS=1" {
		t.Errorf("last env entry = %q", env[len(env)-1])
	}
	if len(env) != 3 {
		t.Errorf("len(env) = %d, want 3", len(env))
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr string
	}{
		{"result text is trimmed", `{"type":"result","result":"  ## P1 - Must Fix\n- x\n"}`, "## P1 - Must Fix\n- x", ""},
		{"error envelope", `{"is_error":true,"result":"rate limited"}`, "", "rate limited"},
		{"error without result names the subtype", `{"is_error":true,"subtype":"error_max_turns"}`, "", "error_max_turns"},
		{"not json", "plain text", "", "parsing claude JSON output"},
		{"empty result is not an error here", `{"result":""}`, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseResponse([]byte(tt.raw))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("parseResponse() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseResponse: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvoker_Review(t *testing.T) {
	path := fakeCLI(t, `printf '{"result":"## P2 - Should Fix\\n- tighten"}'`)
	inv := &Invoker{ClaudePath: path}

	got, err := inv.Review(context.Background(), agent.ReviewRequest{
		Target:       artifact.KindProposal,
		ArtifactPath: "/tmp/in.md",
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got != "## P2 - Should Fix\n- tighten" {
		t.Errorf("Review() = %q", got)
	}
}

func TestInvoker_ReviseEmptyIsFailure(t *testing.T) {
	path := fakeCLI(t, `printf '{"result":"   "}'`)
	inv := &Invoker{ClaudePath: path}

	_, err := inv.Revise(context.Background(), agent.ReviseRequest{Mode: agent.ReviseCompromise, Current: "a"})
	if !errors.Is(err, agent.ErrEmptyOutput) {
		t.Fatalf("Revise() error = %v, want ErrEmptyOutput", err)
	}
}

func TestInvoker_NonZeroExit(t *testing.T) {
	path := fakeCLI(t, "echo nope >&2; exit 1")
	inv := &Invoker{ClaudePath: path}

	_, err := inv.Review(context.Background(), agent.ReviewRequest{Target: artifact.KindCode})
	var be *agent.BackendError
	if !errors.As(err, &be) || be.Backend != agent.Claude {
		t.Fatalf("Review() error = %v, want claude BackendError", err)
	}
}
