// Package section splits Markdown source into titled sections and provides
// the title normalization used for matching sections against artifact units.
package section

import (
	"strings"
)

// marker is the second-level heading prefix that starts a new section.
// The trailing space is part of the contract: "##Results" is body text.
const marker = "## "

// Section is one titled chunk of the source document. Content holds the
// lines following the heading, verbatim, up to the next heading or EOF.
// The heading line itself is not part of Content.
type Section struct {
	Title   string
	Content string
}

// Extract scans doc line by line and returns its sections in source order.
// Lines before the first heading are discarded. A document with no second-level
// headings yields nil; callers decide the fallback (whole-document section for
// create, append for replace).
//
// Duplicate titles are allowed and preserved here; collision handling happens
// in the match map.
func Extract(doc string) []Section {
	var sections []Section
	var content []string
	title := ""
	open := false

	flush := func() {
		if open {
			sections = append(sections, Section{
				Title:   title,
				Content: strings.Join(content, "\n"),
			})
		}
	}

	for _, line := range strings.Split(doc, "\n") {
		// Indentation is tolerated, but the trailing space after "##" is
		// required: a bare "##" or "##Results" is body text.
		stripped := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(stripped, marker) {
			flush()
			title = strings.TrimSpace(stripped[len(marker):])
			content = content[:0]
			open = true
			continue
		}
		if open {
			content = append(content, line)
		}
	}
	flush()

	return sections
}

// Normalize canonicalizes a title for matching: lowercase, runs of whitespace
// collapsed to a single space, leading/trailing whitespace trimmed. Never used
// for display.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
