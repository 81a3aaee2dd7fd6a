package critique

import (
	"regexp"
	"strings"

	"github.com/papapumpkin/debate/internal/artifact"
)

// sectionPatterns are tried in order against a trimmed line; the first
// match switches the scanner into that section.
var sectionPatterns = []struct {
	section Section
	re      *regexp.Regexp
}{
	{SectionP1, regexp.MustCompile(`(?i)^#{1,6}\s*P1\b|^#{1,6}\s*.*Must Fix|^#{1,6}\s*.*Must Reconsider`)},
	{SectionP2, regexp.MustCompile(`(?i)^#{1,6}\s*P2\b|^#{1,6}\s*.*Should Fix|^#{1,6}\s*.*Should Improve`)},
	{SectionP3, regexp.MustCompile(`(?i)^#{1,6}\s*P3\b|^#{1,6}\s*.*Nice to Have|^#{1,6}\s*.*Nice to Strengthen`)},
	{SectionMissing, regexp.MustCompile(`(?i)^#{1,6}\s*Missing\b`)},
	{SectionRecommendation, regexp.MustCompile(`(?i)^#{1,6}\s*Recommended Decision\b`)},
}

var backendErrorHeading = regexp.MustCompile(`(?im)^#{1,6}\s*Backend Error\b`)

// agreementMarkers are lowercase phrases a reviewer uses to signal it has no
// remaining objections.
var agreementMarkers = []string{
	"lgtm",
	"looks good",
	"no concerns",
	"no critical issues",
	"approved",
}

// Parse scans critique text into buckets. It never fails: unrecognized
// headings leave the current section unchanged and unmatched lines are
// dropped.
func Parse(text string) Parsed {
	p := Parsed{BackendError: backendErrorHeading.MatchString(text)}
	section := SectionNone

	for _, raw := range artifact.SplitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if s, ok := matchSection(line); ok {
			section = s
			continue
		}

		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			p.add(section, strings.TrimSpace(line[1:]))
			continue
		}
		if section == SectionRecommendation && p.Recommendation == "" {
			p.Recommendation = line
		}
	}
	return p
}

// HasAgreementSignal reports whether text contains, case-insensitively, a
// phrase indicating the reviewer agrees with the artifact.
func HasAgreementSignal(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range agreementMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func matchSection(line string) (Section, bool) {
	for _, sp := range sectionPatterns {
		if sp.re.MatchString(line) {
			return sp.section, true
		}
	}
	return SectionNone, false
}

// add appends a list item to the bucket for section. Only the first item of
// the recommendation section is kept.
func (p *Parsed) add(section Section, item string) {
	switch section {
	case SectionP1:
		p.P1 = append(p.P1, item)
	case SectionP2:
		p.P2 = append(p.P2, item)
	case SectionP3:
		p.P3 = append(p.P3, item)
	case SectionMissing:
		p.Missing = append(p.Missing, item)
	case SectionRecommendation:
		if p.Recommendation == "" {
			p.Recommendation = item
		}
	}
}
