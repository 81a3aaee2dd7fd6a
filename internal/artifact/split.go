package artifact

import "strings"

// SplitMixed separates mixed content into its fenced-code portion and its
// proposal portion.
//
// Every fenced block is kept verbatim in code, joined by blank lines. In the
// remaining text, a proposal-keyword heading opens a kept section and any other
// heading opens an unkept one; kept sections are joined into proposal. If no
// section was kept, proposal is the whole code-stripped text. Either part may
// be empty.
func SplitMixed(text string) (code, proposal string) {
	blocks := fencedBlock.FindAllString(text, -1)
	code = strings.TrimSpace(strings.Join(blocks, "\n\n"))
	withoutCode := strings.TrimSpace(fencedBlock.ReplaceAllString(text, ""))

	var (
		sections []string
		current  []string
		keep     bool
	)
	flush := func() {
		if keep && len(current) > 0 {
			if s := strings.TrimSpace(strings.Join(current, "\n")); s != "" {
				sections = append(sections, s)
			}
		}
	}

	for _, line := range SplitLines(withoutCode) {
		switch {
		case proposalHeading.MatchString(line):
			flush()
			current = []string{line}
			keep = true
		case anyHeading.MatchString(line):
			flush()
			current = []string{line}
			keep = false
		default:
			current = append(current, line)
		}
	}
	flush()

	proposal = strings.TrimSpace(strings.Join(sections, "\n\n"))
	if proposal == "" {
		proposal = withoutCode
	}
	return code, proposal
}

// SplitLines splits text into lines, accepting both LF and CRLF endings.
// A trailing newline does not produce an empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
