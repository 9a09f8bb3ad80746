package merge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdoffice/internal/section"
)

// fakeStore exposes string units; a unit's title is the unit string itself
// unless overridden to empty via untitled.
type fakeStore struct {
	units    []string
	untitled map[int]bool
}

func (s *fakeStore) Len() int        { return len(s.units) }
func (s *fakeStore) Unit(i int) Unit { return s.units[i] }

func (s *fakeStore) Titles() []TitledUnit {
	var out []TitledUnit
	for i, u := range s.units {
		if s.untitled[i] {
			continue
		}
		out = append(out, TitledUnit{Index: i, Title: u})
	}
	return out
}

// fakeRenderer renders a section into fanOut units labeled by title.
type fakeRenderer struct {
	fanOut  map[string]int // title -> unit count, default 1
	failOn  string
	renders int
}

func (r *fakeRenderer) Render(sec section.Section) ([]Unit, error) {
	r.renders++
	if sec.Title == r.failOn {
		return nil, errors.New("boom")
	}
	n := r.fanOut[sec.Title]
	if n == 0 {
		n = 1
	}
	units := make([]Unit, n)
	for i := range units {
		units[i] = fmt.Sprintf("rendered:%s:%d", sec.Title, i)
	}
	return units, nil
}

func sectionsOf(pairs ...string) []section.Section {
	var out []section.Section
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, section.Section{Title: pairs[i], Content: pairs[i+1]})
	}
	return out
}

func TestBuildMatchMap_LastWriteWins(t *testing.T) {
	m := BuildMatchMap(sectionsOf("Same", "first", "  SAME ", "second"))
	require.Len(t, m, 1)
	assert.Equal(t, "second", m["same"].Content)
}

func TestFindMatches_NormalizedAndOrdered(t *testing.T) {
	m := BuildMatchMap(sectionsOf("Results", "r", "Intro", "i"))
	titled := []TitledUnit{
		{Index: 0, Title: "  RESULTS  "},
		{Index: 1, Title: "Summary"},
		{Index: 3, Title: "intro"},
	}
	matches := FindMatches(titled, m)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].UnitIndex)
	assert.Equal(t, "  RESULTS  ", matches[0].OriginalTitle)
	assert.Equal(t, "r", matches[0].Section.Content)
	assert.Equal(t, 3, matches[1].UnitIndex)
}

func TestFindMatches_EmptyTitleNeverMatches(t *testing.T) {
	m := BuildMatchMap(sectionsOf("", "body"))
	matches := FindMatches([]TitledUnit{{Index: 0, Title: "   "}}, m)
	assert.Empty(t, matches)
}

func TestCreate_RendersAllSectionsInOrder(t *testing.T) {
	r := &fakeRenderer{fanOut: map[string]int{"B": 2}}
	res, err := Create(sectionsOf("A", "a", "B", "b"), r)
	require.NoError(t, err)
	require.Equal(t, []Unit{"rendered:A:0", "rendered:B:0", "rendered:B:1"}, res.Units)
	assert.Equal(t, 3, res.Summary.AddedUnits)
	assert.Equal(t, 2, res.Summary.Sections)
}

func TestAppend_PreservesOriginalPrefix(t *testing.T) {
	st := &fakeStore{units: []string{"p0", "p1"}}
	res, err := Append(st, sectionsOf("New", "n"), &fakeRenderer{})
	require.NoError(t, err)
	require.Len(t, res.Units, 3)
	// Original units are a verbatim, in-order prefix of the output.
	assert.Equal(t, Unit("p0"), res.Units[0])
	assert.Equal(t, Unit("p1"), res.Units[1])
	assert.Equal(t, 2, res.Summary.OriginalUnits)
	assert.Equal(t, 1, res.Summary.AddedUnits)
}

func TestReplace_MatchedReplacedUnmatchedSectionDropped(t *testing.T) {
	// Source sections: Intro, Results. Artifact units: Intro, Summary.
	// Expect exactly one replacement and NO appended unit for Results.
	st := &fakeStore{units: []string{"Intro", "Summary"}}
	res, err := Replace(st, sectionsOf("Intro", "body1", "Results", "body2"), &fakeRenderer{})
	require.NoError(t, err)

	require.Equal(t, []Unit{"rendered:Intro:0", "Summary"}, res.Units)
	assert.Equal(t, 1, res.Summary.ReplacedUnits)
	assert.Equal(t, 1, res.Summary.Matches)
	assert.False(t, res.Summary.FellBack)
	require.Len(t, res.Summary.Replacements, 1)
	assert.Equal(t, 0, res.Summary.Replacements[0].UnitIndex)
	assert.Equal(t, "Intro", res.Summary.Replacements[0].OriginalTitle)
}

func TestReplace_FanOutPreservesNeighborOrder(t *testing.T) {
	st := &fakeStore{units: []string{"A", "Mid", "B"}}
	r := &fakeRenderer{fanOut: map[string]int{"Mid": 3}}
	res, err := Replace(st, sectionsOf("Mid", "m"), r)
	require.NoError(t, err)

	want := []Unit{"A", "rendered:Mid:0", "rendered:Mid:1", "rendered:Mid:2", "B"}
	assert.Equal(t, want, res.Units)

	// len(output) == len(original) - matched + sum(fan-out).
	assert.Len(t, res.Units, 3-1+3)
	assert.Equal(t, 3, res.Summary.Replacements[0].RenderedUnits)
}

func TestReplace_NoSectionsFallsBackToAppend(t *testing.T) {
	st := &fakeStore{units: []string{"p0"}}
	res, err := Replace(st, nil, &fakeRenderer{})
	require.NoError(t, err)
	assert.True(t, res.Summary.FellBack)
	assert.Equal(t, ModeReplace, res.Summary.Mode)
	assert.Equal(t, []Unit{"p0"}, res.Units)
	require.Len(t, res.Summary.Warnings, 1)
}

func TestReplace_NoMatchesFallsBackToAppend(t *testing.T) {
	st := &fakeStore{units: []string{"Alpha", "Beta"}}
	secs := sectionsOf("Gamma", "g")
	res, err := Replace(st, secs, &fakeRenderer{})
	require.NoError(t, err)
	assert.True(t, res.Summary.FellBack)

	// Observationally equivalent to Append on the same inputs.
	app, err := Append(st, secs, &fakeRenderer{})
	require.NoError(t, err)
	assert.Equal(t, app.Units, res.Units)
}

func TestReplace_EmptyArtifactFallsBackToAppend(t *testing.T) {
	st := &fakeStore{}
	res, err := Replace(st, sectionsOf("A", "a", "B", "b"), &fakeRenderer{})
	require.NoError(t, err)
	assert.True(t, res.Summary.FellBack)
	assert.Equal(t, []Unit{"rendered:A:0", "rendered:B:0"}, res.Units)
}

func TestReplace_UntitledUnitsPassThrough(t *testing.T) {
	st := &fakeStore{
		units:    []string{"A", "A"},
		untitled: map[int]bool{1: true},
	}
	res, err := Replace(st, sectionsOf("A", "a"), &fakeRenderer{})
	require.NoError(t, err)
	// Unit 1 has the same text but no recoverable title: never a candidate.
	assert.Equal(t, []Unit{"rendered:A:0", "A"}, res.Units)
}

func TestRenderFailureIsFatal(t *testing.T) {
	st := &fakeStore{units: []string{"A"}}
	r := &fakeRenderer{failOn: "A"}
	_, err := Replace(st, sectionsOf("A", "a"), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailure)

	_, err = Create(sectionsOf("A", "a"), r)
	assert.ErrorIs(t, err, ErrRenderFailure)
}
