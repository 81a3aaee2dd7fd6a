package loop

import (
	"context"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/critique"
	"github.com/papapumpkin/debate/internal/judge"
	"github.com/papapumpkin/debate/internal/session"
)

// Backend is a review backend able to critique and revise artifacts.
// Implementations bound every subprocess they start by the request Timeout.
// *claude.Invoker and *codex.Invoker satisfy it.
type Backend interface {
	Review(ctx context.Context, req agent.ReviewRequest) (string, error)
	Revise(ctx context.Context, req agent.ReviseRequest) (string, error)
}

// Recorder persists round files and session state. *session.Store satisfies it.
type Recorder interface {
	Write(name, content string) (string, error)
	WriteRound(round int, suffix, content string) (string, error)
	SaveState(st *session.State) error
}

// UI reports session progress to the operator. *ui.Printer satisfies it.
type UI interface {
	RoundStart(round, maxRounds int, target artifact.Kind)
	BackendCall(backend string, target artifact.Kind)
	BackendFallback(primary, fallback string, err error)
	BackendError(backend string, err error)
	Verdict(v judge.Verdict, parsed critique.Parsed)
	Choice(mode judge.Mode, c judge.Choice)
	Converged(reason string)
	RevisionFailed(backend string, err error)
	BudgetExceeded(elapsedMin float64, budgetMin int)
	Warn(msg string)
	Info(msg string)
}

// Prompter reads manual-mode answers. *ui.LinePrompter satisfies it.
type Prompter interface {
	ReadChoice(judged judge.Choice) (string, error)
	ReadRebuttal() (string, error)
	ReadManualContent() (string, error)
}

// Selection is the backend routing of a session.
type Selection struct {
	Host           string // Backend hosting this process; runs revisions.
	Primary        string // Backend the critiques are requested from.
	FallbackLocal  bool   // The opposite backend is unavailable; Primary is Host.
	LocalAvailable bool   // Host can run the fallback review.
}

// SelectBackends routes reviews to the backend opposite host when available,
// otherwise to host itself. available reports whether a backend can run.
func SelectBackends(host string, available func(name string) bool) (Selection, error) {
	local := available(host)
	if opposite := agent.Opposite(host); available(opposite) {
		return Selection{Host: host, Primary: opposite, LocalAvailable: local}, nil
	}
	if local {
		return Selection{Host: host, Primary: host, FallbackLocal: true, LocalAvailable: true}, nil
	}
	return Selection{}, ErrNoBackend
}
