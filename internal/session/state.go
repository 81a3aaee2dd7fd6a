// Package session owns the durable record of a debate: session identity,
// the on-disk layout of a session directory, and the rounds it went through.
package session

import (
	"time"

	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/critique"
	"github.com/papapumpkin/debate/internal/judge"
)

// Status is the lifecycle state of a session.
type Status string

// Session statuses.
const (
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// State is the machine-readable session record persisted as metadata.toml.
// It is appended to after every round and closed exactly once.
type State struct {
	Version              int           `toml:"version"`
	SessionID            string        `toml:"session_id"`
	StartedAt            time.Time     `toml:"started_at"`
	ClosedAt             time.Time     `toml:"closed_at"` // Zero while in progress.
	Target               artifact.Kind `toml:"target"`
	Provenance           string        `toml:"provenance"`
	Scope                string        `toml:"scope"`
	Mode                 string        `toml:"mode"`
	MaxRounds            int           `toml:"max_rounds"`
	BudgetMinutes        int           `toml:"budget_minutes"`
	WorkspaceRoot        string        `toml:"workspace_root"`
	SessionDir           string        `toml:"session_dir"`
	HostBackend          string        `toml:"host_backend"`
	Backend              string        `toml:"backend"`
	FallbackLocalBackend bool          `toml:"fallback_local_backend"`
	Status               Status        `toml:"status"`
	FinalDecision        string        `toml:"final_decision,omitempty"`
	Rounds               []RoundRecord `toml:"rounds"`
}

// RoundRecord is the audit entry for one completed round, including rounds
// that auto-stopped on convergence.
type RoundRecord struct {
	Round               int           `toml:"round"`
	Choice              judge.Choice  `toml:"choice"`
	JudgeRecommendation judge.Choice  `toml:"judge_recommendation"`
	JudgeReason         string        `toml:"judge_reason"`
	Target              artifact.Kind `toml:"target"`
	BackendUsed         string        `toml:"backend_used"`
	BackendUnavailable  bool          `toml:"backend_unavailable"`
	BackendError        bool          `toml:"backend_error"`
	P1                  []string      `toml:"p1"`
	P2                  []string      `toml:"p2"`
	P3                  []string      `toml:"p3"`
	Missing             []string      `toml:"missing"`
}

// NewRoundRecord builds a record from a round's parsed critique and verdict.
func NewRoundRecord(round int, choice judge.Choice, v judge.Verdict, p critique.Parsed) RoundRecord {
	return RoundRecord{
		Round:               round,
		Choice:              choice,
		JudgeRecommendation: v.Choice,
		JudgeReason:         v.Reason,
		BackendError:        p.BackendError,
		P1:                  nonNil(p.P1),
		P2:                  nonNil(p.P2),
		P3:                  nonNil(p.P3),
		Missing:             nonNil(p.Missing),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// AppendRound records a finished round.
func (s *State) AppendRound(r RoundRecord) {
	s.Rounds = append(s.Rounds, r)
}

// Close marks the session finished with its final decision.
func (s *State) Close(decision string, at time.Time) {
	s.Status = StatusClosed
	s.FinalDecision = decision
	s.ClosedAt = at
}

// Elapsed returns the wall-clock duration of a closed session, or the time
// since it started when still in progress.
func (s *State) Elapsed(now time.Time) time.Duration {
	if !s.ClosedAt.IsZero() {
		return s.ClosedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}
