package loop

import "errors"

// Sentinel errors for session setup and control flow.
var (
	// ErrNoBackend indicates neither the opposite nor the local backend can run.
	ErrNoBackend = errors.New("no review backend available")
	// ErrBackendMissing indicates a backend name has no registered implementation.
	ErrBackendMissing = errors.New("backend not configured")
	// ErrNoPrompter indicates manual mode was requested without an input source.
	ErrNoPrompter = errors.New("manual mode requires a prompter")
	// ErrInterrupted indicates the session context ended before the debate
	// reached a decision.
	ErrInterrupted = errors.New("debate interrupted")
)

// Final decisions recorded when a session closes.
const (
	DecisionKeep           = "Keep Original"
	DecisionAcceptOpposite = "Accept Opposite"
	DecisionAcceptSkipped  = "Accept Opposite (materialization skipped)"
	DecisionStoppedByUser  = "Stopped by user"
	DecisionStoppedBackend = "Stopped (backend error - no review performed)"
	DecisionBudgetExceeded = "Stopped (budget exceeded)"
	DecisionStopped        = "Stopped"
	DecisionInterrupted    = "Stopped (interrupted)"
)

// DefaultRebuttal is appended when a rebuttal round gets no operator text.
const DefaultRebuttal = "Please address remaining concerns with concrete evidence and tradeoffs."

// Round file suffixes, as in round-N-<suffix>.md.
const (
	suffixInput            = "input"
	suffixCritique         = "critique"
	suffixMixedCode        = "mixed-code"
	suffixMixedProposal    = "mixed-proposal"
	suffixFallbackProposal = "fallback-proposal"
)
