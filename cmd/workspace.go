package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/papapumpkin/debate/internal/config"
	"github.com/papapumpkin/debate/internal/history"
	"github.com/papapumpkin/debate/internal/session"
	"github.com/papapumpkin/debate/internal/vcs"
)

// workspace is where a session runs and where its records live.
type workspace struct {
	root    string    // Git root, or the working directory outside git.
	repo    *vcs.Repo // Nil outside a git working tree.
	baseDir string    // Directory holding session directories.
}

// openWorkspace locates the git repository around the working directory and
// resolves the session base directory.
func openWorkspace(ctx context.Context, cfg config.Config) (workspace, error) {
	wd, err := os.Getwd()
	if err != nil {
		return workspace{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	ws := workspace{root: wd}

	repo, err := vcs.Open(ctx, wd)
	switch {
	case err == nil:
		ws.repo, ws.root = repo, repo.Root
	case !errors.Is(err, vcs.ErrNotRepo):
		return workspace{}, err
	}

	gitRoot := ""
	if ws.repo != nil {
		gitRoot = ws.repo.Root
	}
	ws.baseDir, err = session.ResolveBaseDir(cfg.StateDir, gitRoot, ws.root, os.Getenv)
	if err != nil {
		return workspace{}, err
	}
	return ws, nil
}

// sessionDir returns the directory of session id, or of the newest session
// when id is empty.
func (ws workspace) sessionDir(id string) (string, error) {
	if id == "" {
		return session.Latest(ws.baseDir)
	}
	dir := filepath.Join(ws.baseDir, id)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("session %q not found in %s: %w", id, ws.baseDir, err)
	}
	return dir, nil
}

// openHistory opens the session index of the workspace. A nil index with a
// nil error means the index is disabled.
func (ws workspace) openHistory(ctx context.Context, cfg config.Config) (*history.Index, error) {
	if !cfg.History {
		return nil, nil
	}
	if err := os.MkdirAll(ws.baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session base dir: %w", err)
	}
	return history.Open(ctx, filepath.Join(ws.baseDir, history.FileName))
}

// recordHistory indexes the session. Index failures are logged, never fatal.
func recordHistory(ctx context.Context, idx *history.Index, st *session.State, logger *slog.Logger) {
	if idx == nil {
		return
	}
	if err := idx.Record(ctx, history.EntryFromState(st)); err != nil {
		logger.Warn("history record failed", "session", st.SessionID, "error", err)
	}
}
