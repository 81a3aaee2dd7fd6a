package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/critique"
	"github.com/papapumpkin/debate/internal/judge"
	"github.com/papapumpkin/debate/internal/session"
)

func TestPrinter_RoundOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)

	p.RoundStart(2, 3, artifact.KindMixed)
	p.BackendCall("codex", artifact.KindCode)
	p.BackendFallback("codex", "claude", errors.New("exit status 1"))
	p.Verdict(judge.Verdict{Choice: judge.ChoiceCompromise, Reason: "Detected 2 P2 issue(s)"},
		critique.Parsed{P2: []string{"a", "b"}, Missing: []string{"c"}})
	p.Choice(judge.ModeAuto, judge.ChoiceCompromise)

	output := buf.String()
	checks := []struct {
		name   string
		substr string
	}{
		{"round header", "Round 2/3"},
		{"target", "target=mixed"},
		{"backend call", "codex"},
		{"fallback", "retrying with claude"},
		{"recommendation", "Judge recommendation:"},
		{"counts", "P1=0 P2=2 P3=0 Missing=1"},
		{"choice", "auto mode choice:"},
	}
	for _, c := range checks {
		if !strings.Contains(output, c.substr) {
			t.Errorf("expected output to contain %s (%q), got:\n%s", c.name, c.substr, output)
		}
	}
}

func TestSummaryBox(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	st := &session.State{
		SessionID:            "debate-20260101-100000-1",
		Target:               artifact.KindCode,
		Backend:              "claude",
		FallbackLocalBackend: true,
		MaxRounds:            3,
		StartedAt:            start,
		Rounds:               []session.RoundRecord{{Round: 1}},
	}
	st.Close("Keep Original", start.Add(3*time.Minute))

	out := SummaryBox(st, start.Add(time.Hour))
	for _, want := range []string{"Debate Summary", "debate-20260101-100000-1", "claude (local fallback)", "1/3", "3 minutes", "Keep Original"} {
		if !strings.Contains(out, want) {
			t.Errorf("SummaryBox() missing %q:\n%s", want, out)
		}
	}
}

func TestElapsed(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	if got := Elapsed(start, start.Add(200*time.Millisecond)); got != "under a second" {
		t.Errorf("Elapsed(200ms) = %q", got)
	}
	if got := Elapsed(start, start.Add(2*time.Hour)); got != "2 hours" {
		t.Errorf("Elapsed(2h) = %q", got)
	}
}

func TestIsSettled(t *testing.T) {
	t.Parallel()

	for decision, want := range map[string]bool{
		"Keep Original":             true,
		"Accept Opposite":           true,
		"Converged (agreement ...)": true,
		"Stopped by user":           false,
		"Stopped (budget exceeded)": false,
	} {
		if got := isSettled(decision); got != want {
			t.Errorf("isSettled(%q) = %v, want %v", decision, got, want)
		}
	}
}

func TestLinePrompter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader(" b \n\nmy rebuttal\nrevised\ncontent\n"), &out)

	choice, err := p.ReadChoice(judge.ChoiceRebut)
	if err != nil || choice != "b" {
		t.Fatalf("ReadChoice() = %q, %v", choice, err)
	}
	if !strings.Contains(out.String(), "Choose [A/B/C/D/E] (default D): ") {
		t.Errorf("prompt = %q", out.String())
	}

	if empty, err := p.ReadChoice(judge.ChoiceKeep); err != nil || empty != "" {
		t.Errorf("ReadChoice() on blank line = %q, %v", empty, err)
	}

	rebuttal, err := p.ReadRebuttal()
	if err != nil || rebuttal != "my rebuttal" {
		t.Errorf("ReadRebuttal() = %q, %v", rebuttal, err)
	}

	content, err := p.ReadManualContent()
	if err != nil || content != "revised\ncontent" {
		t.Errorf("ReadManualContent() = %q, %v", content, err)
	}

	// Input is exhausted: the default is kept and the operator is told why.
	out.Reset()
	if got, err := p.ReadChoice(judge.ChoiceKeep); err != nil || got != "" {
		t.Errorf("ReadChoice() at EOF = %q, %v", got, err)
	}
	if !strings.Contains(out.String(), closedNotice) {
		t.Errorf("EOF notice missing: %q", out.String())
	}
}
