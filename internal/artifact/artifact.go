// Package artifact models the text under review in a debate session: its
// kind (code, proposal, or mixed), where it came from, and the review scope
// used to obtain it.
package artifact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for values outside the known kinds.
var ErrUnknownKind = errors.New("unknown artifact kind")

// Kind identifies how an artifact should be reviewed.
type Kind string

const (
	KindCode     Kind = "code"     // Fenced code or a diff; reviewed as code.
	KindProposal Kind = "proposal" // Prose design proposal.
	KindMixed    Kind = "mixed"    // Both; split and reviewed on each axis.
)

// ParseKind converts a user-supplied target string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCode, KindProposal, KindMixed:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Provenance records how the initial artifact text was obtained.
type Provenance string

const (
	ProvenanceDiff    Provenance = "diff"    // Output of a version-control diff.
	ProvenanceSnippet Provenance = "snippet" // Raw file contents.
	ProvenanceText    Provenance = "text"    // Explicit content, a plain file, or stdin.
)

// Artifact is the immutable text under review for one round.
type Artifact struct {
	Content    string
	Kind       Kind
	Provenance Provenance
}

// WithContent returns a copy of the artifact carrying new content. Kind and
// provenance are preserved across rounds.
func (a Artifact) WithContent(content string) Artifact {
	a.Content = content
	return a
}

// IsSnippetLike reports whether the artifact is not a real diff, so code
// reviews must not assume a version-control scope.
func (a Artifact) IsSnippetLike() bool {
	return a.Provenance == ProvenanceText || a.Provenance == ProvenanceSnippet
}
