// Package judge maps a parsed critique to the next action of a debate round
// and decides when a debate has converged.
package judge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papapumpkin/debate/internal/critique"
)

// ErrInvalidChoice is returned by ResolveChoice when interactive input is
// not one of A through E.
var ErrInvalidChoice = errors.New("invalid choice")

// Choice is the action taken at the end of a round.
type Choice string

const (
	ChoiceKeep           Choice = "A"         // Keep the current artifact and stop.
	ChoiceAcceptOpposite Choice = "B"         // Materialize the critic's position and stop.
	ChoiceCompromise     Choice = "C"         // Synthesize a compromise and continue.
	ChoiceRebut          Choice = "D"         // Append a rebuttal and continue.
	ChoiceStop           Choice = "E"         // Stop without further action.
	ChoiceAutoStop       Choice = "AUTO_STOP" // Converged before judging.
)

// Valid reports whether c is one of the five judgeable choices A through E.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceKeep, ChoiceAcceptOpposite, ChoiceCompromise, ChoiceRebut, ChoiceStop:
		return true
	default:
		return false
	}
}

// Terminal reports whether taking c ends the session.
func (c Choice) Terminal() bool {
	return c != ChoiceCompromise && c != ChoiceRebut
}

// Label is a short human-readable name for the choice.
func (c Choice) Label() string {
	switch c {
	case ChoiceKeep:
		return "keep original"
	case ChoiceAcceptOpposite:
		return "accept opposite"
	case ChoiceCompromise:
		return "compromise"
	case ChoiceRebut:
		return "rebut and continue"
	case ChoiceStop:
		return "stop"
	case ChoiceAutoStop:
		return "auto stop"
	default:
		return "unknown"
	}
}

// Verdict is the judged recommendation for a round.
type Verdict struct {
	Choice Choice
	Reason string
}

// Judge recommends the next action for a parsed critique. Rules are applied
// in priority order and the first match wins.
func Judge(p critique.Parsed) Verdict {
	p1, p2 := len(p.P1), len(p.P2)
	switch {
	case p.BackendError && p.Empty():
		return Verdict{ChoiceStop, "Backend review failed; no structured critique was produced."}
	case p1 > 0:
		return Verdict{ChoiceAcceptOpposite, fmt.Sprintf("Detected %d P1 issue(s); accepting opposite recommendation is safer.", p1)}
	case p2 >= 2:
		return Verdict{ChoiceCompromise, fmt.Sprintf("Detected %d P2 issue(s); compromise likely balances tradeoffs.", p2)}
	case p.SeverityEmpty():
		return Verdict{ChoiceKeep, "No material concerns detected."}
	default:
		return Verdict{ChoiceRebut, "There are unresolved concerns; continue one more round."}
	}
}

// Mode selects whether choices are taken from the judge or from a human.
type Mode string

const (
	ModeAuto   Mode = "auto"   // The judged choice is always taken.
	ModeManual Mode = "manual" // A human may override the judged choice.
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeManual:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want auto or manual)", s)
	}
}

// ResolveChoice returns the choice to take for a round. In auto mode it is
// always judged. In manual mode input overrides it; empty input keeps the
// judged choice, and input that is not A through E keeps the judged choice
// and reports ErrInvalidChoice.
func ResolveChoice(judged Choice, mode Mode, input string) (Choice, error) {
	if mode != ModeManual {
		return judged, nil
	}
	val := Choice(strings.ToUpper(strings.TrimSpace(input)))
	if val == "" {
		return judged, nil
	}
	if !val.Valid() {
		return judged, fmt.Errorf("%w: %q", ErrInvalidChoice, input)
	}
	return val, nil
}
