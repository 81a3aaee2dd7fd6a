package agent

import (
	"fmt"

	"github.com/papapumpkin/debate/internal/artifact"
)

// ReviewSections is the heading convention every generic review prompt asks
// for. The critique parser keys off these headings.
const ReviewSections = `## P1 - Must Fix
## P2 - Should Fix
## P3 - Nice to Have
## Missing Alternatives
## Recommended Decision`

// ReviewPrompt builds the generic review prompt for an artifact on disk.
func ReviewPrompt(path string, target artifact.Kind) string {
	return fmt.Sprintf("Read %s. Review this %s artifact.\n"+
		"Output sections:\n%s\n"+
		"Include concrete evidence.", path, target, ReviewSections)
}

// RevisePrompt builds the prompt asking for a revised artifact.
func RevisePrompt(req ReviseRequest) string {
	if req.Mode == ReviseAcceptOpposite {
		return "Apply the opposite model's review feedback to the artifact.\n" +
			"Output only the revised artifact content.\n\n" +
			fmt.Sprintf("Current Artifact:\n%s\n\nCritique:\n%s\n", req.Current, req.Critique)
	}
	return "Generate a compromise revision that addresses the critique while preserving valid parts " +
		"of the original. Output only revised artifact content.\n\n" +
		fmt.Sprintf("Original:\n%s\n\nCritique:\n%s\n", req.Current, req.Critique)
}
