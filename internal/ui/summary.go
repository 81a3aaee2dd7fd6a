package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/debate/internal/session"
)

// Elapsed renders a duration between two instants in words, for example
// "3 minutes".
func Elapsed(from, to time.Time) string {
	if to.Sub(from) < time.Second {
		return "under a second"
	}
	return strings.TrimSpace(humanize.RelTime(from, to, "", ""))
}

// SummaryBox renders a bordered overview of a closed session.
func SummaryBox(st *session.State, now time.Time) string {
	end := now
	if !st.ClosedAt.IsZero() {
		end = st.ClosedAt
	}

	backend := st.Backend
	if st.FallbackLocalBackend {
		backend += " (local fallback)"
	}

	decision := styleDecisionStop.Render(st.FinalDecision)
	if isSettled(st.FinalDecision) {
		decision = styleDecisionGood.Render(st.FinalDecision)
	}

	rows := [][2]string{
		{"Session", st.SessionID},
		{"Target", string(st.Target)},
		{"Backend", backend},
		{"Rounds", fmt.Sprintf("%d/%d", len(st.Rounds), st.MaxRounds)},
		{"Elapsed", Elapsed(st.StartedAt, end)},
		{"Final Decision", decision},
	}
	lines := []string{styleTitle.Render("Debate Summary"), ""}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, styleLabel.Render(r[0]), r[1]))
	}
	return styleBox.Render(strings.Join(lines, "\n"))
}

// isSettled reports whether a decision ended the debate with an outcome
// rather than a stop.
func isSettled(decision string) bool {
	for _, prefix := range []string{"Keep", "Accept", "Converged"} {
		if strings.HasPrefix(decision, prefix) {
			return true
		}
	}
	return false
}
