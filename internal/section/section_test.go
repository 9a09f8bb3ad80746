package section

import (
	"strings"
	"testing"
)

func TestExtract_SplitsOnSecondLevelHeadings(t *testing.T) {
	input := `# Report

preamble that belongs to no section

## Intro

body1

## Results

body2
line two
`
	sections := Extract(input)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	if sections[0].Title != "Intro" {
		t.Errorf("expected title %q, got %q", "Intro", sections[0].Title)
	}
	if !strings.Contains(sections[0].Content, "body1") {
		t.Errorf("expected Intro content to contain %q, got %q", "body1", sections[0].Content)
	}
	if strings.Contains(sections[0].Content, "## Intro") {
		t.Errorf("heading line must not be part of content, got %q", sections[0].Content)
	}

	if sections[1].Title != "Results" {
		t.Errorf("expected title %q, got %q", "Results", sections[1].Title)
	}
	if !strings.Contains(sections[1].Content, "line two") {
		t.Errorf("expected Results content to contain %q, got %q", "line two", sections[1].Content)
	}
}

func TestExtract_NoHeadingsReturnsEmpty(t *testing.T) {
	inputs := []string{
		"",
		"plain text\nwith no structure",
		"# only a top-level heading\n\ntext",
		"### only a third-level heading\n\ntext",
		"##NoSpaceAfterMarker\n\ntext",
	}
	for _, input := range inputs {
		if got := Extract(input); len(got) != 0 {
			t.Errorf("Extract(%q): expected no sections, got %d", input, len(got))
		}
	}
}

func TestExtract_PreambleDiscarded(t *testing.T) {
	sections := Extract("orphan line\n## A\nbody")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if strings.Contains(sections[0].Content, "orphan") {
		t.Errorf("preamble leaked into section content: %q", sections[0].Content)
	}
}

func TestExtract_EmptyContentBetweenHeadings(t *testing.T) {
	sections := Extract("## A\n## B\nbody")
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if strings.TrimSpace(sections[0].Content) != "" {
		t.Errorf("expected empty content for back-to-back headings, got %q", sections[0].Content)
	}
}

func TestExtract_EmptyTitleHeading(t *testing.T) {
	// "## " with nothing after the marker is still a heading; it yields a
	// section whose title normalizes to the empty key and is never matchable.
	sections := Extract("## \nbody")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "" {
		t.Errorf("expected empty title, got %q", sections[0].Title)
	}
}

func TestExtract_DuplicateTitlesPreserved(t *testing.T) {
	sections := Extract("## Same\nfirst\n## Same\nsecond")
	if len(sections) != 2 {
		t.Fatalf("expected duplicates preserved, got %d sections", len(sections))
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Foo  Bar", "foo bar"},
		{"  RESULTS  ", "results"},
		{"a\tb\n c", "a b c"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Foo  Bar", "  x ", "Already normal"} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}
