package critique

import (
	"fmt"
	"strings"
)

// CombineMixed joins the two critiques of a dual code/proposal review under
// their own headings.
func CombineMixed(codeCritique, proposalCritique string) string {
	return "## Code Critique\n\n" + codeCritique + "\n\n## Proposal Critique\n\n" + proposalCritique
}

// WithFallbackNotice prefixes a critique obtained from the local backend with
// a note naming the primary backend and the error that caused the fallback.
func WithFallbackNotice(primary string, primaryErr error, localCritique string) string {
	var b strings.Builder
	b.WriteString("## Backend Fallback\n")
	fmt.Fprintf(&b, "- primary_backend: %s\n", primary)
	fmt.Fprintf(&b, "- error: %s\n\n", oneLine(primaryErr))
	b.WriteString(localCritique)
	return b.String()
}

// BackendErrorText synthesizes a critique for a round in which both the
// primary backend and its local fallback failed.
func BackendErrorText(primary string, primaryErr error, fallback string, fallbackErr error) string {
	var b strings.Builder
	b.WriteString("## Backend Error\n")
	fmt.Fprintf(&b, "- primary_backend: %s\n", primary)
	fmt.Fprintf(&b, "- primary_error: %s\n", oneLine(primaryErr))
	fmt.Fprintf(&b, "- fallback_backend: %s\n", fallback)
	fmt.Fprintf(&b, "- fallback_error: %s\n", oneLine(fallbackErr))
	return b.String()
}

// SingleBackendErrorText synthesizes a critique for a failed call when no
// distinct fallback backend was available.
func SingleBackendErrorText(err error) string {
	return fmt.Sprintf("## Backend Error\n- %s\n", oneLine(err))
}

// oneLine flattens an error message so multi-line backend stderr cannot
// introduce headings or list items into a synthesized critique.
func oneLine(err error) string {
	if err == nil {
		return "unknown error"
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
