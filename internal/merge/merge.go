// Package merge implements the section-to-unit matching and the
// reconstruction of an artifact's page/slide sequence. It is format-agnostic:
// concrete artifact formats plug in through the Store and Renderer interfaces.
package merge

import (
	"github.com/dgallion1/mdoffice/internal/section"
)

// TitledUnit is one page or slide of an existing artifact, identified by its
// 0-based position and the title recovered from it. Units without a
// recoverable title are never represented here.
type TitledUnit struct {
	Index int
	Title string
}

// Match pairs an existing unit with the section that will replace it.
// OriginalTitle is the title as read from the artifact, kept for reporting.
type Match struct {
	UnitIndex     int
	OriginalTitle string
	Section       section.Section
}

// BuildMatchMap indexes sections by normalized title. On duplicate titles the
// later section silently wins; callers that care should check for collisions
// before rendering.
func BuildMatchMap(sections []section.Section) map[string]section.Section {
	m := make(map[string]section.Section, len(sections))
	for _, sec := range sections {
		m[section.Normalize(sec.Title)] = sec
	}
	return m
}

// FindMatches intersects artifact titles with the match map, preserving the
// unit order of titled. Units whose normalized title is not a key, or whose
// title normalizes to the empty string, produce no match.
func FindMatches(titled []TitledUnit, matchMap map[string]section.Section) []Match {
	var matches []Match
	for _, tu := range titled {
		key := section.Normalize(tu.Title)
		if key == "" {
			continue
		}
		sec, ok := matchMap[key]
		if !ok {
			continue
		}
		matches = append(matches, Match{
			UnitIndex:     tu.Index,
			OriginalTitle: tu.Title,
			Section:       sec,
		})
	}
	return matches
}
