// Package ui renders operator-facing progress for a debate session on the
// terminal and reads the operator's decisions in manual mode.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/papapumpkin/debate/internal/ansi"
	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/critique"
	"github.com/papapumpkin/debate/internal/judge"
)

// Printer writes colored progress lines. The zero value is not usable; call
// New or NewWriter.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to stderr. Colors are dropped when stderr is
// not a terminal or NO_COLOR is set.
func New() *Printer {
	if !ansi.Enabled(os.Stderr) {
		return &Printer{w: ansi.Plain(os.Stderr)}
	}
	return &Printer{w: os.Stderr}
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// SessionStart announces the session and the backend reviewing it.
func (p *Printer) SessionStart(id, host, backend string, target artifact.Kind, dir string) {
	fmt.Fprintf(p.w, ansi.Bold+ansi.Cyan+"debate"+ansi.Reset+" %s "+ansi.Dim+"host=%s backend=%s target=%s"+ansi.Reset+"\n",
		id, host, backend, target)
	fmt.Fprintf(p.w, ansi.Dim+"session dir: %s"+ansi.Reset+"\n", dir)
}

// RoundStart prints the round header.
func (p *Printer) RoundStart(round, maxRounds int, target artifact.Kind) {
	fmt.Fprintf(p.w, "\n"+ansi.Bold+ansi.Magenta+"=== Round %d/%d ==="+ansi.Reset+ansi.Dim+" target=%s"+ansi.Reset+"\n",
		round, maxRounds, target)
}

// BackendCall reports a review request going out.
func (p *Printer) BackendCall(backend string, target artifact.Kind) {
	fmt.Fprintf(p.w, ansi.Blue+"▶ %s"+ansi.Reset+ansi.Dim+" reviewing %s..."+ansi.Reset+"\n", backend, target)
}

// BackendFallback reports a retry against the local backend.
func (p *Printer) BackendFallback(primary, fallback string, err error) {
	fmt.Fprintf(p.w, ansi.Yellow+ansi.Bold+"⚠ %s failed"+ansi.Reset+", retrying with %s: %v\n", primary, fallback, err)
}

// BackendError reports a review that produced no critique.
func (p *Printer) BackendError(backend string, err error) {
	fmt.Fprintf(p.w, ansi.Red+ansi.Bold+"✗ %s review failed"+ansi.Reset+": %v\n", backend, err)
}

// Verdict prints the judge recommendation and the finding counts.
func (p *Printer) Verdict(v judge.Verdict, parsed critique.Parsed) {
	fmt.Fprintf(p.w, "Judge recommendation: "+ansi.Bold+"%s"+ansi.Reset+" (%s)\n", v.Choice, v.Reason)
	fmt.Fprintf(p.w, ansi.Dim+"P1=%d P2=%d P3=%d Missing=%d"+ansi.Reset+"\n",
		len(parsed.P1), len(parsed.P2), len(parsed.P3), len(parsed.Missing))
}

// Choice prints the choice taken for the round.
func (p *Printer) Choice(mode judge.Mode, c judge.Choice) {
	fmt.Fprintf(p.w, "%s mode choice: "+ansi.Bold+"%s"+ansi.Reset+ansi.Dim+" (%s)"+ansi.Reset+"\n", mode, c, c.Label())
}

// Converged prints an auto-stop.
func (p *Printer) Converged(reason string) {
	fmt.Fprintf(p.w, ansi.Green+ansi.Bold+"✓ %s"+ansi.Reset+"\n", reason)
}

// RevisionFailed reports a revision that left the artifact unchanged.
func (p *Printer) RevisionFailed(backend string, err error) {
	fmt.Fprintf(p.w, ansi.Yellow+"⚠ %s revision failed, keeping current artifact"+ansi.Reset+": %v\n", backend, err)
}

// BudgetExceeded reports the session budget running out before a round.
func (p *Printer) BudgetExceeded(elapsedMin float64, budgetMin int) {
	fmt.Fprintf(p.w, ansi.Red+ansi.Bold+"✗ budget exceeded"+ansi.Reset+" (%.1f / %d min)\n", elapsedMin, budgetMin)
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, ansi.Yellow+"warning: "+ansi.Reset+"%s\n", msg)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

// Info prints a dimmed informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}
