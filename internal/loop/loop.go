// Package loop runs a debate session: a bounded sequence of critique and
// revision rounds between the host backend and its opposite, with every
// round written to the session directory as it happens.
package loop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/judge"
	"github.com/papapumpkin/debate/internal/session"
	"github.com/papapumpkin/debate/internal/telemetry"
)

// Loop drives the rounds of one debate session.
type Loop struct {
	Backends        map[string]Backend // Registered backends keyed by name.
	Selection       Selection
	Recorder        Recorder
	UI              UI
	Prompter        Prompter           // Required in manual mode.
	Emitter         *telemetry.Emitter // Optional event stream; nil disables it.
	Logger          *slog.Logger       // Optional; nil discards.
	Mode            judge.Mode
	MaxRounds       int
	Budget          time.Duration // Wall-clock budget checked before every round.
	Timeout         time.Duration // Per backend subprocess; zero means no limit.
	SkipMaterialize bool          // Record an accept-opposite without revising.
	Scope           artifact.Scope
	WorkDir         string
	InRepo          bool
	Now             func() time.Time // Clock; nil means time.Now.

	sessionID string
}

// Result is the outcome of a finished session.
type Result struct {
	State    *session.State
	Final    artifact.Artifact
	Decision string
	Summary  string
}

// Run debates initial until a terminal choice, convergence, the round limit,
// or the budget ends the session. The state is closed and persisted together
// with the summary and the final artifact before Run returns. A cancelled
// context closes the session early and is returned wrapped in ErrInterrupted.
func (l *Loop) Run(ctx context.Context, st *session.State, initial artifact.Artifact) (*Result, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	l.sessionID = st.SessionID
	if st.StartedAt.IsZero() {
		st.StartedAt = l.now()
	}
	st.Status = session.StatusInProgress

	if _, err := l.Recorder.Write(session.ArtifactFile, initial.Content); err != nil {
		return nil, err
	}
	if err := l.Recorder.SaveState(st); err != nil {
		return nil, err
	}
	l.emit(telemetry.KindSessionStart, 0, map[string]any{
		"target":  string(initial.Kind),
		"backend": l.Selection.Primary,
		"host":    l.Selection.Host,
		"mode":    string(l.Mode),
	})
	l.log().Info("session started",
		"session", st.SessionID, "target", initial.Kind, "backend", l.Selection.Primary, "max_rounds", l.MaxRounds)

	current := initial
	decision := DecisionStopped
	previousHasMaterial := false
	var runErr error

	for round := 1; round <= l.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			decision = DecisionInterrupted
			runErr = fmt.Errorf("%w: %w", ErrInterrupted, err)
			break
		}
		if elapsed := l.now().Sub(st.StartedAt); elapsed >= l.Budget {
			l.UI.BudgetExceeded(elapsed.Minutes(), int(l.Budget/time.Minute))
			l.log().Warn("budget exceeded", "round", round, "elapsed", elapsed, "budget", l.Budget)
			decision = DecisionBudgetExceeded
			break
		}

		out, err := l.runRound(ctx, st, round, current, previousHasMaterial)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		current = out.artifact
		if out.interrupted {
			decision = DecisionInterrupted
			runErr = fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
			break
		}
		if out.tracksMaterial {
			previousHasMaterial = out.hasMaterial
		}
		if out.terminal {
			decision = out.decision
			break
		}
	}

	res, err := l.finish(st, current, decision)
	if err != nil {
		return nil, err
	}
	return res, runErr
}

// finish closes the session and writes its closing artifacts.
func (l *Loop) finish(st *session.State, final artifact.Artifact, decision string) (*Result, error) {
	st.Close(decision, l.now())
	summary := session.Summary(st)
	if _, err := l.Recorder.Write(session.SummaryFile, summary); err != nil {
		return nil, err
	}
	if _, err := l.Recorder.Write(session.FinalArtifactFile, final.Content); err != nil {
		return nil, err
	}
	if err := l.Recorder.SaveState(st); err != nil {
		return nil, err
	}
	l.emit(telemetry.KindSessionDone, 0, map[string]any{
		"decision": decision,
		"rounds":   len(st.Rounds),
	})
	l.log().Info("session closed", "session", st.SessionID, "decision", decision, "rounds", len(st.Rounds))
	return &Result{State: st, Final: final, Decision: decision, Summary: summary}, nil
}

func (l *Loop) validate() error {
	if _, ok := l.Backends[l.Selection.Primary]; !ok {
		return fmt.Errorf("%w: %q", ErrBackendMissing, l.Selection.Primary)
	}
	if l.Mode == judge.ModeManual && l.Prompter == nil {
		return ErrNoPrompter
	}
	return nil
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// emit records a telemetry event. Telemetry failures never stop a session.
func (l *Loop) emit(kind string, round int, data map[string]any) {
	if err := l.Emitter.Emit(telemetry.Event{Kind: kind, SessionID: l.sessionID, Round: round, Data: data}); err != nil {
		l.log().Warn("telemetry emit failed", "kind", kind, "error", err)
	}
}
