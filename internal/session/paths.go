package session

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// idPrefix starts every session directory name.
const idPrefix = "debate-"

// ErrNoSessions is returned when a base directory holds no session.
var ErrNoSessions = errors.New("no sessions found")

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// NewID returns a session id of the form debate-YYYYMMDD-HHMMSS-<pid>.
func NewID(now time.Time, pid int) string {
	return fmt.Sprintf("%s%s-%d", idPrefix, now.Format("20060102-150405"), pid)
}

// WorkspaceKey names a non-git workspace under the shared state root: the
// sanitized directory name plus the first 12 hex digits of the SHA-1 of the
// absolute path.
func WorkspaceKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha1.Sum([]byte(abs))
	name := unsafeName.ReplaceAllString(strings.TrimSpace(filepath.Base(abs)), "-")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "workspace"
	}
	return name + "-" + hex.EncodeToString(sum[:])[:12]
}

// StateRoot returns $XDG_STATE_HOME, or ~/.local/state when unset.
func StateRoot(getenv func(string) string) (string, error) {
	if raw := getenv("XDG_STATE_HOME"); raw != "" {
		return filepath.Abs(expandHome(raw))
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}

// ResolveBaseDir picks the directory that holds session directories: the
// explicit override, else <git_root>/.git/review-loop, else a per-workspace
// directory under the XDG state root.
func ResolveBaseDir(explicit, gitRoot, workspaceRoot string, getenv func(string) string) (string, error) {
	if explicit != "" {
		return filepath.Abs(expandHome(explicit))
	}
	if gitRoot != "" {
		return filepath.Join(gitRoot, ".git", "review-loop"), nil
	}
	root, err := StateRoot(getenv)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "debate", WorkspaceKey(workspaceRoot), "review-loop"), nil
}

// List returns the session ids under baseDir, newest first.
func List(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session base dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), idPrefix) {
			ids = append(ids, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Latest returns the directory of the newest session under baseDir.
func Latest(baseDir string) (string, error) {
	ids, err := List(baseDir)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoSessions, baseDir)
	}
	return filepath.Join(baseDir, ids[0]), nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
