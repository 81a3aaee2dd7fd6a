package session

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// File names inside a session directory.
const (
	ArtifactFile      = "artifact.md"
	DiffFile          = "artifact.diff"
	StatFile          = "artifact.stat"
	MetadataFile      = "metadata.toml"
	SummaryFile       = "summary.md"
	FinalArtifactFile = "final-artifact.md"
	EventsFile        = "events.jsonl"
)

// stateVersion is written into every metadata record.
const stateVersion = 1

// Store writes the audit files of one session directory. The files are
// write-only from the loop's point of view; only the inspection commands
// read them back.
type Store struct {
	Dir string
}

// Create makes the directory for session id under baseDir.
func Create(baseDir, id string) (*Store, error) {
	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Path returns the absolute path of a file in the session directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// RoundFile returns the name of a per-round file, for example
// RoundFile(2, "critique") is "round-2-critique.md".
func RoundFile(round int, suffix string) string {
	return fmt.Sprintf("round-%d-%s.md", round, suffix)
}

// Write stores content under name and returns the file's path.
func (s *Store) Write(name, content string) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// WriteRound stores a per-round file and returns its path.
func (s *Store) WriteRound(round int, suffix, content string) (string, error) {
	return s.Write(RoundFile(round, suffix), content)
}

// WriteCollected keeps the raw diff and stat an artifact was built from.
func (s *Store) WriteCollected(diff, stat string) error {
	if _, err := s.Write(DiffFile, diff); err != nil {
		return err
	}
	_, err := s.Write(StatFile, stat)
	return err
}

// SaveState writes metadata.toml atomically (write temp + rename).
func (s *Store) SaveState(st *State) error {
	if st.Version == 0 {
		st.Version = stateVersion
	}
	data, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling session state: %w", err)
	}

	path := s.Path(MetadataFile)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp state file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming state file: %w", err)
	}

	return nil
}

// LoadState reads metadata.toml from a session directory.
func LoadState(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}
	return &st, nil
}
