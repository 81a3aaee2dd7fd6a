package loop

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/critique"
	"github.com/papapumpkin/debate/internal/judge"
	"github.com/papapumpkin/debate/internal/session"
)

// reply is one queued backend answer.
type reply struct {
	text string
	err  error
}

// fakeBackend answers reviews and revisions from queues and records every
// request it receives.
type fakeBackend struct {
	reviews    []reply
	revisions  []reply
	reviewReqs []agent.ReviewRequest
	reviseReqs []agent.ReviseRequest
	onCall     func() // Runs at the start of every call when set.
}

func (f *fakeBackend) Review(_ context.Context, req agent.ReviewRequest) (string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	idx := len(f.reviewReqs)
	f.reviewReqs = append(f.reviewReqs, req)
	if idx >= len(f.reviews) {
		return "", errors.New("unexpected review call")
	}
	return f.reviews[idx].text, f.reviews[idx].err
}

func (f *fakeBackend) Revise(_ context.Context, req agent.ReviseRequest) (string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	idx := len(f.reviseReqs)
	f.reviseReqs = append(f.reviseReqs, req)
	if idx >= len(f.revisions) {
		return "", errors.New("unexpected revise call")
	}
	return f.revisions[idx].text, f.revisions[idx].err
}

// fakeRecorder keeps written files in memory.
type fakeRecorder struct {
	files     map[string]string
	order     []string
	saves     int
	savedRuns []int // len(st.Rounds) at every SaveState call.
	failOn    string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{files: make(map[string]string)}
}

func (r *fakeRecorder) Write(name, content string) (string, error) {
	if name == r.failOn {
		return "", fmt.Errorf("writing %s: disk full", name)
	}
	r.files[name] = content
	r.order = append(r.order, name)
	return "/session/" + name, nil
}

func (r *fakeRecorder) WriteRound(round int, suffix, content string) (string, error) {
	return r.Write(session.RoundFile(round, suffix), content)
}

func (r *fakeRecorder) SaveState(st *session.State) error {
	r.saves++
	r.savedRuns = append(r.savedRuns, len(st.Rounds))
	return nil
}

// fakeUI records warnings and a compact trace of progress calls.
type fakeUI struct {
	trace []string
	warns []string
}

func (u *fakeUI) RoundStart(round, _ int, target artifact.Kind) {
	u.trace = append(u.trace, fmt.Sprintf("round %d %s", round, target))
}

func (u *fakeUI) BackendCall(backend string, target artifact.Kind) {
	u.trace = append(u.trace, fmt.Sprintf("call %s %s", backend, target))
}

func (u *fakeUI) BackendFallback(primary, fallback string, _ error) {
	u.trace = append(u.trace, fmt.Sprintf("fallback %s->%s", primary, fallback))
}

func (u *fakeUI) BackendError(backend string, _ error) {
	u.trace = append(u.trace, "error "+backend)
}

func (u *fakeUI) Verdict(v judge.Verdict, _ critique.Parsed) {
	u.trace = append(u.trace, "judged "+string(v.Choice))
}

func (u *fakeUI) Choice(_ judge.Mode, c judge.Choice) {
	u.trace = append(u.trace, "choice "+string(c))
}

func (u *fakeUI) Converged(reason string) {
	u.trace = append(u.trace, "converged "+reason)
}

func (u *fakeUI) RevisionFailed(backend string, _ error) {
	u.trace = append(u.trace, "revision failed "+backend)
}

func (u *fakeUI) BudgetExceeded(_ float64, _ int) {
	u.trace = append(u.trace, "budget exceeded")
}

func (u *fakeUI) Warn(msg string) { u.warns = append(u.warns, msg) }
func (u *fakeUI) Info(string)     {}

// fakePrompter answers manual-mode questions from queues.
type fakePrompter struct {
	choices   []string
	rebuttals []string
	manual    string
	asked     []judge.Choice
}

func (p *fakePrompter) ReadChoice(judged judge.Choice) (string, error) {
	p.asked = append(p.asked, judged)
	if len(p.choices) == 0 {
		return "", nil
	}
	c := p.choices[0]
	p.choices = p.choices[1:]
	return c, nil
}

func (p *fakePrompter) ReadRebuttal() (string, error) {
	if len(p.rebuttals) == 0 {
		return "", nil
	}
	r := p.rebuttals[0]
	p.rebuttals = p.rebuttals[1:]
	return r, nil
}

func (p *fakePrompter) ReadManualContent() (string, error) {
	return p.manual, nil
}

// Critique texts with a known judgement.
const (
	critiqueP1       = "## P1 - Must Fix\n- nil dereference in handler\n"
	critiqueTwoP2    = "## P2 - Should Fix\n- add a test\n- split the function\n"
	critiqueOneP2    = "## P2 - Should Fix\n- add a test\n"
	critiqueNit      = "## P3 - Nice to Have\n- rename helper\n"
	critiqueSilent   = "## Recommended Decision\nShip it as is.\n"
	critiqueAgreeing = "## P3 - Nice to Have\n- rename helper\n\nLGTM overall.\n"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// harness bundles a loop wired to fakes. Reviews go to codex, hosted by
// claude, which also runs revisions and the local fallback.
type harness struct {
	loop     *Loop
	opposite *fakeBackend
	local    *fakeBackend
	rec      *fakeRecorder
	ui       *fakeUI
	prompter *fakePrompter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		opposite: &fakeBackend{},
		local:    &fakeBackend{},
		rec:      newFakeRecorder(),
		ui:       &fakeUI{},
		prompter: &fakePrompter{},
	}
	h.loop = &Loop{
		Backends: map[string]Backend{
			agent.Codex:  h.opposite,
			agent.Claude: h.local,
		},
		Selection: Selection{Host: agent.Claude, Primary: agent.Codex, LocalAvailable: true},
		Recorder:  h.rec,
		UI:        h.ui,
		Prompter:  h.prompter,
		Mode:      judge.ModeAuto,
		MaxRounds: 5,
		Budget:    time.Hour,
		Scope:     artifact.Scope{Kind: artifact.ScopeUncommitted},
		WorkDir:   "/repo",
		InRepo:    true,
		Now:       func() time.Time { return testStart.Add(time.Minute) },
	}
	return h
}

func (h *harness) run(t *testing.T, initial artifact.Artifact) *Result {
	t.Helper()
	st := &session.State{SessionID: "20260301-120000-1", StartedAt: testStart}
	res, err := h.loop.Run(context.Background(), st, initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func proposal(content string) artifact.Artifact {
	return artifact.Artifact{Content: content, Kind: artifact.KindProposal, Provenance: artifact.ProvenanceText}
}

func choices(st *session.State) []judge.Choice {
	out := make([]judge.Choice, 0, len(st.Rounds))
	for _, r := range st.Rounds {
		out = append(out, r.Choice)
	}
	return out
}
