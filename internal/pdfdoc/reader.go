// Package pdfdoc reads, renders, and assembles page-oriented PDF artifacts.
// Existing pages are handled as opaque single-page files; only their text is
// inspected, for title recovery.
package pdfdoc

import (
	"fmt"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/mdoffice/internal/merge"
)

// pageTexts extracts the plain text of every page, one entry per page.
// Pages with no extractable text yield an empty string so indices stay
// aligned with the artifact.
func pageTexts(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	texts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// pdftotextPages shells out to pdftotext, splitting its output on the form
// feeds it emits between pages.
func pdftotextPages(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(string(out), "\f"), nil
}

// Titles recovers one TitledUnit per page with extractable text, using the
// first non-empty line as the page title. Pages without text contribute
// nothing. With fallback set, pdftotext is tried when the Go extractor fails.
func Titles(path string, fallback bool) ([]merge.TitledUnit, error) {
	texts, err := pageTexts(path)
	if err != nil && fallback {
		texts, err = pdftotextPages(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", merge.ErrUnreadableArtifact, path, err)
	}

	var titled []merge.TitledUnit
	for i, text := range texts {
		if title := firstNonEmptyLine(text); title != "" {
			titled = append(titled, merge.TitledUnit{Index: i, Title: title})
		}
	}
	return titled, nil
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
