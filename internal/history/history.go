// Package history keeps a SQLite index of debate sessions so past sessions
// can be listed without walking every session directory.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/debate/internal/session"
)

// FileName is the index database name inside the session base directory.
const FileName = "history.db"

// ErrNotFound is returned by Get for an unknown session id.
var ErrNotFound = errors.New("session not indexed")

// schema contains the DDL executed on every open.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id     TEXT PRIMARY KEY,
    session_dir    TEXT NOT NULL,
    target         TEXT NOT NULL,
    backend        TEXT NOT NULL,
    fallback_local INTEGER NOT NULL DEFAULT 0,
    rounds         INTEGER NOT NULL DEFAULT 0,
    status         TEXT NOT NULL,
    final_decision TEXT NOT NULL DEFAULT '',
    started_at     TIMESTAMP NOT NULL,
    updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS sessions_started_at ON sessions (started_at);
`

// Entry is one indexed session.
type Entry struct {
	SessionID     string
	SessionDir    string
	Target        string
	Backend       string
	FallbackLocal bool
	Rounds        int
	Status        session.Status
	FinalDecision string
	StartedAt     time.Time
	UpdatedAt     time.Time
}

// EntryFromState summarizes a session record for the index.
func EntryFromState(st *session.State) Entry {
	return Entry{
		SessionID:     st.SessionID,
		SessionDir:    st.SessionDir,
		Target:        string(st.Target),
		Backend:       st.Backend,
		FallbackLocal: st.FallbackLocalBackend,
		Rounds:        len(st.Rounds),
		Status:        st.Status,
		FinalDecision: st.FinalDecision,
		StartedAt:     st.StartedAt,
	}
}

// Index is a session index backed by a local SQLite database in WAL mode.
type Index struct {
	db *sql.DB
}

// Open opens (or creates) the index at dbPath.
func Open(ctx context.Context, dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite supports a single writer; one connection keeps PRAGMAs applied.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close releases the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Record inserts or updates the entry for a session.
func (ix *Index) Record(ctx context.Context, e Entry) error {
	const q = `
		INSERT INTO sessions (session_id, session_dir, target, backend, fallback_local, rounds, status, final_decision, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			rounds         = excluded.rounds,
			status         = excluded.status,
			final_decision = excluded.final_decision,
			updated_at     = CURRENT_TIMESTAMP`
	_, err := ix.db.ExecContext(ctx, q,
		e.SessionID, e.SessionDir, e.Target, e.Backend, e.FallbackLocal, e.Rounds,
		string(e.Status), e.FinalDecision, e.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("history: record session %q: %w", e.SessionID, err)
	}
	return nil
}

const selectColumns = `SELECT session_id, session_dir, target, backend, fallback_local, rounds, status, final_decision, started_at, updated_at FROM sessions`

// List returns up to limit sessions, newest first. A limit of zero or less
// returns every session.
func (ix *Index) List(ctx context.Context, limit int) ([]Entry, error) {
	q := selectColumns + ` ORDER BY started_at DESC, session_id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := ix.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query sessions: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate sessions: %w", err)
	}
	return result, nil
}

// Get returns the entry for one session.
func (ix *Index) Get(ctx context.Context, id string) (Entry, error) {
	row := ix.db.QueryRowContext(ctx, selectColumns+` WHERE session_id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e                Entry
		status           string
		started, updated string
	)
	if err := s.Scan(&e.SessionID, &e.SessionDir, &e.Target, &e.Backend, &e.FallbackLocal,
		&e.Rounds, &status, &e.FinalDecision, &started, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("history: scan session: %w", err)
	}
	e.Status = session.Status(status)

	var err error
	if e.StartedAt, err = parseTimestamp(started); err != nil {
		return Entry{}, fmt.Errorf("history: parse started_at: %w", err)
	}
	if e.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return Entry{}, fmt.Errorf("history: parse updated_at: %w", err)
	}
	return e, nil
}

// timestampFormats lists the layouts SQLite timestamps are stored in.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
