// Package critique extracts severity-bucketed findings from a backend's
// free-form review text.
//
// Backends are asked to answer under five fixed headings (P1, P2, P3,
// Missing Alternatives, Recommended Decision). Parsing is a tolerant line
// scanner: anything it does not recognize is dropped, so malformed output
// yields empty buckets rather than an error.
package critique

// Section is the heading the scanner is currently inside.
type Section int

const (
	SectionNone           Section = iota // Before any recognized heading.
	SectionP1                            // P1 - Must Fix.
	SectionP2                            // P2 - Should Fix.
	SectionP3                            // P3 - Nice to Have.
	SectionMissing                       // Missing Alternatives.
	SectionRecommendation                // Recommended Decision.
)

// String returns the bucket name of the section.
func (s Section) String() string {
	switch s {
	case SectionNone:
		return "none"
	case SectionP1:
		return "p1"
	case SectionP2:
		return "p2"
	case SectionP3:
		return "p3"
	case SectionMissing:
		return "missing"
	case SectionRecommendation:
		return "recommendation"
	default:
		return "unknown"
	}
}

// Parsed is the structured form of one critique. Each source line lands in
// at most one bucket.
type Parsed struct {
	P1             []string // Must fix.
	P2             []string // Should fix.
	P3             []string // Nice to have.
	Missing        []string // Alternatives not considered.
	Recommendation string   // First line under Recommended Decision; empty when absent.
	BackendError   bool     // A "Backend Error" heading appears anywhere in the text.
}

// HasMaterial reports whether the critique carries any P1 or P2 finding.
func (p Parsed) HasMaterial() bool {
	return len(p.P1)+len(p.P2) > 0
}

// SeverityEmpty reports whether all three severity buckets are empty.
func (p Parsed) SeverityEmpty() bool {
	return len(p.P1) == 0 && len(p.P2) == 0 && len(p.P3) == 0
}

// Empty reports whether the severity buckets and the missing bucket are all
// empty.
func (p Parsed) Empty() bool {
	return p.SeverityEmpty() && len(p.Missing) == 0
}
