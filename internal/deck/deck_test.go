package deck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdoffice/internal/merge"
	"github.com/dgallion1/mdoffice/internal/section"
)

func renderedSlides(t *testing.T, secs ...section.Section) []Slide {
	t.Helper()
	r := &Renderer{}
	var slides []Slide
	for _, sec := range secs {
		units, err := r.Render(sec)
		require.NoError(t, err)
		for _, u := range units {
			slides = append(slides, u.(Slide))
		}
	}
	return slides
}

func freshPackage(t *testing.T, titles ...string) *Package {
	t.Helper()
	var slides []Slide
	for _, title := range titles {
		slides = append(slides, Slide{Title: title, Body: "body of " + title})
	}
	data, err := buildFresh(slides)
	require.NoError(t, err)
	pkg, err := readPackageFromBytes(data)
	require.NoError(t, err)
	return pkg
}

func TestSlideTitle_StructuralPlaceholder(t *testing.T) {
	slide := slideXML(Slide{Title: "Quarterly Results", Body: "first line\nsecond line"})
	assert.Equal(t, "Quarterly Results", slideTitle([]byte(slide)))
}

func TestSlideTitle_EscapedCharactersRoundTrip(t *testing.T) {
	slide := slideXML(Slide{Title: `R&D <plan> "2026"`, Body: ""})
	assert.Equal(t, `R&D <plan> "2026"`, slideTitle([]byte(slide)))
}

func TestSlideTitle_FallsBackToFirstTextLine(t *testing.T) {
	// A slide with no title placeholder, only a body shape.
	slide := `<p:sld><p:cSld><p:spTree><p:sp>` +
		`<p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>` +
		`<p:txBody><a:p><a:r><a:t>  Inferred Heading  </a:t></a:r></a:p></p:txBody>` +
		`</p:sp></p:spTree></p:cSld></p:sld>`
	assert.Equal(t, "Inferred Heading", slideTitle([]byte(slide)))
}

func TestSlideTitle_NoTextYieldsEmpty(t *testing.T) {
	assert.Equal(t, "", slideTitle([]byte(`<p:sld><p:cSld><p:spTree/></p:cSld></p:sld>`)))
}

func TestRenderer_ShortSectionSingleSlide(t *testing.T) {
	r := &Renderer{}
	units, err := r.Render(section.Section{Title: "Intro", Content: "one\ntwo"})
	require.NoError(t, err)
	require.Len(t, units, 1)
	s := units[0].(Slide)
	assert.Equal(t, "Intro", s.Title)
	assert.False(t, s.passthrough())
}

func TestRenderer_LongSectionFansOut(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "line")
	}
	r := &Renderer{MaxBodyLines: 10}
	units, err := r.Render(section.Section{Title: "Big", Content: strings.Join(lines, "\n")})
	require.NoError(t, err)
	assert.Len(t, units, 3)
	for _, u := range units {
		assert.Equal(t, "Big", u.(Slide).Title)
	}
}

func TestSplitBody_ParagraphBoundariesPreferred(t *testing.T) {
	body := "a\nb\nc\n\nd\ne\n\nf"
	bodies := splitBody(body, 5)
	require.Len(t, bodies, 2)
	assert.Equal(t, "a\nb\nc\n\nd\ne", bodies[0])
	assert.Equal(t, "f", bodies[1])
}

func TestBuildFresh_RoundTrip(t *testing.T) {
	pkg := freshPackage(t, "Intro", "Results")
	require.Equal(t, 2, pkg.SlideCount())

	st := newStore(pkg)
	titles := st.Titles()
	require.Len(t, titles, 2)
	assert.Equal(t, merge.TitledUnit{Index: 0, Title: "Intro"}, titles[0])
	assert.Equal(t, merge.TitledUnit{Index: 1, Title: "Results"}, titles[1])
}

func TestRebuild_ReplaceWithFanOut(t *testing.T) {
	pkg := freshPackage(t, "Intro", "Summary")
	st := newStore(pkg)

	rendered := renderedSlides(t, section.Section{Title: "Intro", Content: "updated"})
	require.Len(t, rendered, 1)

	// Output: rendered Intro replacement, then passthrough Summary.
	out := []Slide{rendered[0], st.Unit(1).(Slide)}
	data, err := rebuild(pkg, out)
	require.NoError(t, err)

	got, err := readPackageFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, 2, got.SlideCount())
	assert.Equal(t, "Intro", slideTitle(got.slideXML(0)))
	assert.Equal(t, "Summary", slideTitle(got.slideXML(1)))

	// The passthrough slide part is byte-identical to the source.
	assert.Equal(t, pkg.slideXML(1), got.slideXML(1))
}

func TestRebuild_AppendKeepsOriginalOrder(t *testing.T) {
	pkg := freshPackage(t, "A", "B")
	st := newStore(pkg)

	rendered := renderedSlides(t, section.Section{Title: "C", Content: "c body"})
	out := []Slide{st.Unit(0).(Slide), st.Unit(1).(Slide), rendered[0]}
	data, err := rebuild(pkg, out)
	require.NoError(t, err)

	got, err := readPackageFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, 3, got.SlideCount())
	assert.Equal(t, "A", slideTitle(got.slideXML(0)))
	assert.Equal(t, "B", slideTitle(got.slideXML(1)))
	assert.Equal(t, "C", slideTitle(got.slideXML(2)))
}
