package pdfdoc

import "testing"

func TestFirstNonEmptyLine(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Title\nbody", "Title"},
		{"\n\n  Title  \nbody", "Title"},
		{"", ""},
		{"\n \t \n", ""},
	}
	for _, c := range cases {
		if got := firstNonEmptyLine(c.in); got != c.want {
			t.Errorf("firstNonEmptyLine(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}
