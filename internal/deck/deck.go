package deck

import (
	"strings"

	"github.com/dgallion1/mdoffice/internal/merge"
	"github.com/dgallion1/mdoffice/internal/section"
)

// Slide is the deck unit. A passthrough slide references its part in the
// source package and is copied byte-for-byte; a rendered slide carries the
// title and body text it will be generated from.
type Slide struct {
	Title string
	Body  string

	// src/part are set for passthrough slides only.
	src  *Package
	part string
}

func (s Slide) passthrough() bool { return s.src != nil }

// Store exposes an existing deck as ordered slides with recovered titles.
type Store struct {
	pkg    *Package
	titles []merge.TitledUnit
}

// Open loads an existing .pptx for merging.
func Open(path string) (*Store, error) {
	pkg, err := OpenPackage(path)
	if err != nil {
		return nil, err
	}
	return newStore(pkg), nil
}

func newStore(pkg *Package) *Store {
	st := &Store{pkg: pkg}
	for i := 0; i < pkg.SlideCount(); i++ {
		if title := slideTitle(pkg.slideXML(i)); title != "" {
			st.titles = append(st.titles, merge.TitledUnit{Index: i, Title: title})
		}
	}
	return st
}

func (s *Store) Len() int { return s.pkg.SlideCount() }

func (s *Store) Unit(i int) merge.Unit {
	return Slide{src: s.pkg, part: s.pkg.order[i]}
}

func (s *Store) Titles() []merge.TitledUnit { return s.titles }

// DefaultMaxBodyLines is the per-slide line budget before a section
// overflows onto a continuation slide.
const DefaultMaxBodyLines = 12

// Renderer renders a section into one or more slides. Long bodies are split
// at paragraph boundaries under a per-slide line budget, so one section may
// fan out into several slides, all carrying the section title.
type Renderer struct {
	MaxBodyLines int
}

func (r *Renderer) Render(sec section.Section) ([]merge.Unit, error) {
	budget := r.MaxBodyLines
	if budget <= 0 {
		budget = DefaultMaxBodyLines
	}

	bodies := splitBody(strings.TrimSpace(sec.Content), budget)
	if len(bodies) == 0 {
		bodies = []string{""}
	}

	units := make([]merge.Unit, 0, len(bodies))
	for _, body := range bodies {
		units = append(units, Slide{Title: sec.Title, Body: body})
	}
	return units, nil
}

// splitBody packs paragraphs into slide bodies of at most maxLines non-blank
// lines each. A single paragraph over the budget is split mid-paragraph.
func splitBody(body string, maxLines int) []string {
	if body == "" {
		return nil
	}

	var bodies []string
	var current []string
	lines := 0

	flush := func() {
		if len(current) > 0 {
			bodies = append(bodies, strings.Join(current, "\n\n"))
			current = nil
			lines = 0
		}
	}

	for _, para := range splitParagraphs(body) {
		n := countLines(para)
		if n > maxLines {
			// Oversized paragraph: hard-split by lines.
			flush()
			paraLines := strings.Split(para, "\n")
			for start := 0; start < len(paraLines); start += maxLines {
				end := start + maxLines
				if end > len(paraLines) {
					end = len(paraLines)
				}
				bodies = append(bodies, strings.Join(paraLines[start:end], "\n"))
			}
			continue
		}
		if lines+n > maxLines {
			flush()
		}
		current = append(current, para)
		lines += n
	}
	flush()
	return bodies
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paras = append(paras, strings.TrimSpace(p))
		}
	}
	return paras
}

func countLines(para string) int {
	return len(strings.Split(para, "\n"))
}
