package merge

import (
	"errors"
	"fmt"

	"github.com/dgallion1/mdoffice/internal/section"
)

// Sentinel errors wrapped by the format packages and surfaced by the
// reconstructor. Both are fatal: nothing is written once either occurs.
var (
	// ErrUnreadableArtifact means an existing artifact could not be opened
	// or parsed for unit or title reading.
	ErrUnreadableArtifact = errors.New("unreadable artifact")

	// ErrRenderFailure means a section could not be rendered into units.
	ErrRenderFailure = errors.New("render failure")
)

// Mode selects the reconstruction policy.
type Mode string

const (
	ModeCreate  Mode = "create"
	ModeAppend  Mode = "append"
	ModeReplace Mode = "replace"
)

// Unit is an opaque artifact unit (a single page or slide). The reconstructor
// only sequences units; it never looks inside them.
type Unit any

// Store exposes an existing artifact as an ordered unit sequence with
// recoverable titles.
type Store interface {
	// Len is the number of units in the artifact.
	Len() int
	// Unit returns the i-th unit for verbatim passthrough.
	Unit(i int) Unit
	// Titles returns one TitledUnit per unit with a recoverable non-empty
	// title, in unit order.
	Titles() []TitledUnit
}

// Renderer turns one section into one or more finished units. A long section
// may fan out into several units; order within the returned slice is the
// output order.
type Renderer interface {
	Render(sec section.Section) ([]Unit, error)
}

// Replacement records one substitution for the run report.
type Replacement struct {
	UnitIndex     int    // 0-based index of the replaced unit
	OriginalTitle string // title as read from the artifact
	RenderedUnits int    // fan-out width of the substitution
}

// Summary is the observable outcome of a reconstruction besides the unit
// sequence itself.
type Summary struct {
	Mode          Mode
	Sections      int
	Matches       int
	OriginalUnits int
	AddedUnits    int
	ReplacedUnits int
	FellBack      bool // replace degraded to append
	Replacements  []Replacement
	Warnings      []string
}

// Result is the reconstructed unit sequence plus its summary. Units is the
// complete output artifact; the caller writes it exactly once.
type Result struct {
	Units   []Unit
	Summary Summary
}

// Create renders every section in order and concatenates the units. Any
// existing artifact is ignored.
func Create(sections []section.Section, r Renderer) (*Result, error) {
	res := &Result{Summary: Summary{Mode: ModeCreate, Sections: len(sections)}}
	for _, sec := range sections {
		units, err := r.Render(sec)
		if err != nil {
			return nil, fmt.Errorf("%w: section %q: %v", ErrRenderFailure, sec.Title, err)
		}
		res.Units = append(res.Units, units...)
	}
	res.Summary.AddedUnits = len(res.Units)
	return res, nil
}

// Append copies every existing unit unchanged, then renders every section
// (matched or not) after them.
func Append(st Store, sections []section.Section, r Renderer) (*Result, error) {
	res := &Result{Summary: Summary{Mode: ModeAppend, Sections: len(sections)}}
	for i := 0; i < st.Len(); i++ {
		res.Units = append(res.Units, st.Unit(i))
	}
	res.Summary.OriginalUnits = st.Len()

	for _, sec := range sections {
		units, err := r.Render(sec)
		if err != nil {
			return nil, fmt.Errorf("%w: section %q: %v", ErrRenderFailure, sec.Title, err)
		}
		res.Units = append(res.Units, units...)
		res.Summary.AddedUnits += len(units)
	}
	return res, nil
}

// Replace substitutes matched units with freshly rendered ones, in place.
// Unmatched units pass through verbatim; unmatched sections are dropped, not
// appended. With no sections or no matches it degrades to Append and says so
// in the summary.
//
// The output is built by a single pass over the original indices, splicing
// rendered sequences at match points, so a matched unit may legally expand
// into several output units without disturbing the order of its neighbors.
func Replace(st Store, sections []section.Section, r Renderer) (*Result, error) {
	if len(sections) == 0 {
		res, err := Append(st, sections, r)
		if err != nil {
			return nil, err
		}
		res.Summary.Mode = ModeReplace
		res.Summary.FellBack = true
		res.Summary.Warnings = append(res.Summary.Warnings,
			"no sections found in source; appending instead")
		return res, nil
	}

	matches := FindMatches(st.Titles(), BuildMatchMap(sections))
	if len(matches) == 0 {
		res, err := Append(st, sections, r)
		if err != nil {
			return nil, err
		}
		res.Summary.Mode = ModeReplace
		res.Summary.FellBack = true
		res.Summary.Warnings = append(res.Summary.Warnings,
			"no unit titles match any section; appending instead")
		return res, nil
	}

	byIndex := make(map[int]Match, len(matches))
	for _, m := range matches {
		byIndex[m.UnitIndex] = m
	}

	res := &Result{Summary: Summary{
		Mode:          ModeReplace,
		Sections:      len(sections),
		Matches:       len(matches),
		OriginalUnits: st.Len(),
	}}

	for i := 0; i < st.Len(); i++ {
		m, ok := byIndex[i]
		if !ok {
			res.Units = append(res.Units, st.Unit(i))
			continue
		}
		units, err := r.Render(m.Section)
		if err != nil {
			return nil, fmt.Errorf("%w: section %q: %v", ErrRenderFailure, m.Section.Title, err)
		}
		res.Units = append(res.Units, units...)
		res.Summary.ReplacedUnits++
		res.Summary.Replacements = append(res.Summary.Replacements, Replacement{
			UnitIndex:     m.UnitIndex,
			OriginalTitle: m.OriginalTitle,
			RenderedUnits: len(units),
		})
	}
	return res, nil
}
