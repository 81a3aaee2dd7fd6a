package session

import (
	"fmt"
	"strings"
)

// Summary renders the human-readable summary.md for a closed session.
func Summary(st *State) string {
	lines := []string{
		"## Debate Summary",
		"",
		"Session: " + st.SessionID,
		fmt.Sprintf("Target: %s", st.Target),
		fmt.Sprintf("Rounds: %d", len(st.Rounds)),
		"Final Decision: " + st.FinalDecision,
		"",
		"### Next Actions",
		"1. Apply selected artifact content",
		"2. Run validation/tests",
	}
	return strings.Join(lines, "\n") + "\n"
}
