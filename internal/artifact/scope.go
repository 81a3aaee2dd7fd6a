package artifact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedScope is returned when a scope kind is unknown or is missing
// the value it requires.
var ErrUnsupportedScope = errors.New("unsupported scope")

// ScopeKind names the part of a workspace a code review covers.
type ScopeKind string

const (
	ScopeUncommitted ScopeKind = "uncommitted" // Working tree changes.
	ScopeCommit      ScopeKind = "commit"      // A single commit: commit:<id>.
	ScopeBase        ScopeKind = "base"        // Changes since a base ref: base:<ref>.
	ScopeRange       ScopeKind = "range"       // An arbitrary diff expression: range:<expr>.
	ScopeFile        ScopeKind = "file"        // One path: file:<path>.
	ScopeSnippet     ScopeKind = "snippet"     // Explicit content, no version-control scope.
)

// Scope is a parsed scope string such as "commit:abc123".
type Scope struct {
	Kind  ScopeKind
	Value string
}

// ParseScope splits a scope string on its first colon. It never fails;
// call Validate to reject unknown kinds.
func ParseScope(s string) Scope {
	kind, value, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return Scope{Kind: ScopeKind(kind)}
	}
	return Scope{Kind: ScopeKind(kind), Value: value}
}

// String renders the scope in its "kind[:value]" form.
func (s Scope) String() string {
	if s.Value == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.Value
}

// Validate reports whether the scope has a known kind and carries a value
// when the kind requires one.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeUncommitted, ScopeSnippet:
		return nil
	case ScopeCommit, ScopeBase, ScopeRange, ScopeFile:
		if s.Value == "" {
			return fmt.Errorf("%w: %s requires a value", ErrUnsupportedScope, s.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedScope, s)
	}
}
