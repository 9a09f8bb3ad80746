// Package render turns Markdown into the intermediate forms the format
// writers consume: an HTML document for the PDF path, and a flat block
// sequence for the Word/Excel paths.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// HTML converts Markdown to an HTML fragment with pipe tables enabled.
func HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
