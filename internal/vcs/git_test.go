package vcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papapumpkin/debate/internal/artifact"
)

// initRepo creates a git repository with one commit containing main.go.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	run("add", ".")
	run("commit", "-q", "-m", "initial")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_NotRepo(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	_, err := Open(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNotRepo) {
		t.Fatalf("Open() error = %v, want ErrNotRepo", err)
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	ctx := context.Background()
	repo, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if diff, err := repo.WorkingDiff(ctx); err != nil || diff != "" {
		t.Fatalf("WorkingDiff() on clean tree = %q, %v", diff, err)
	}

	writeFile(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() {}\n")

	t.Run("uncommitted", func(t *testing.T) {
		ch, err := repo.Collect(ctx, artifact.Scope{Kind: artifact.ScopeUncommitted})
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if !strings.Contains(ch.Diff, "+func main() {}") {
			t.Errorf("diff missing change:\n%s", ch.Diff)
		}
		if !strings.Contains(ch.Stat, "main.go") {
			t.Errorf("stat = %q", ch.Stat)
		}
		if ch.Snippet {
			t.Error("uncommitted diff marked as snippet")
		}
	})

	t.Run("commit", func(t *testing.T) {
		ch, err := repo.Collect(ctx, artifact.Scope{Kind: artifact.ScopeCommit, Value: "HEAD"})
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if !strings.Contains(ch.Diff, "+package main") {
			t.Errorf("commit patch missing content:\n%s", ch.Diff)
		}
		if !strings.Contains(ch.Stat, "initial") {
			t.Errorf("stat = %q, want oneline subject", ch.Stat)
		}
	})

	t.Run("file with changes", func(t *testing.T) {
		ch, err := repo.Collect(ctx, artifact.Scope{Kind: artifact.ScopeFile, Value: "main.go"})
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if ch.Snippet || !strings.Contains(ch.Diff, "diff --git") {
			t.Errorf("expected a patch, got snippet=%v:\n%s", ch.Snippet, ch.Diff)
		}
	})

	t.Run("unknown commit fails", func(t *testing.T) {
		if _, err := repo.Collect(ctx, artifact.Scope{Kind: artifact.ScopeCommit, Value: "no-such-ref"}); err == nil {
			t.Error("expected error for unknown commit")
		}
	})

	t.Run("unsupported scope", func(t *testing.T) {
		_, err := repo.Collect(ctx, artifact.Scope{Kind: artifact.ScopeSnippet})
		if !errors.Is(err, artifact.ErrUnsupportedScope) {
			t.Errorf("Collect(snippet) error = %v, want ErrUnsupportedScope", err)
		}
	})
}

func TestCollect_FileFallsBackToSnippet(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	ctx := context.Background()
	repo, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ch, err := repo.Collect(ctx, artifact.Scope{Kind: artifact.ScopeFile, Value: "main.go"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !ch.Snippet {
		t.Fatal("clean file scope should fall back to a snippet")
	}
	if ch.Diff != "package main\n" {
		t.Errorf("snippet = %q", ch.Diff)
	}
	if ch.Stat != "file:main.go bytes=13" {
		t.Errorf("stat = %q", ch.Stat)
	}
}
