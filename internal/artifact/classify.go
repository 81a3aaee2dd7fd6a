package artifact

import (
	"regexp"
	"strings"
)

// proposalKeywords is the alternation shared by the classifier and splitter.
const proposalKeywords = `(design|proposal|approach|decision|tradeoff|rebuttal|response)\b`

var (
	proposalMarker  = regexp.MustCompile(`(?im)^\s{0,3}#+\s*` + proposalKeywords)
	proposalHeading = regexp.MustCompile(`(?i)^\s{0,3}#{1,6}\s*` + proposalKeywords)
	anyHeading      = regexp.MustCompile(`^\s{0,3}#{1,6}\s+`)
	fencedBlock     = regexp.MustCompile("```[\\s\\S]*?```")
)

// Classify decides whether text is code, a proposal, or a mix of both.
// Text with neither a fenced block nor a proposal heading is treated as a
// proposal.
func Classify(text string) Kind {
	hasCode := strings.Contains(text, "```")
	hasProposal := proposalMarker.MatchString(text)
	switch {
	case hasCode && hasProposal:
		return KindMixed
	case hasCode:
		return KindCode
	default:
		return KindProposal
	}
}
