package render

import (
	"regexp"
	"strings"
)

// BlockKind discriminates the Block variants.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockTable
)

// Block is one flat element of a Markdown document: a heading with its level,
// a paragraph line, or a pipe table.
type Block struct {
	Kind  BlockKind
	Level int    // heading level, 1-3
	Text  string // heading or paragraph text
	Rows  [][]string
}

// Span is a run of paragraph text with uniform styling.
type Span struct {
	Text string
	Bold bool
}

var boldPattern = regexp.MustCompile(`(\*\*.*?\*\*)`)

// Spans splits paragraph text on **bold** markers into styled runs.
func Spans(text string) []Span {
	matches := boldPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Span{{Text: text}}
	}

	var spans []Span
	last := 0
	for _, m := range matches {
		if m[0] > last {
			spans = append(spans, Span{Text: text[last:m[0]]})
		}
		spans = append(spans, Span{Text: text[m[0]+2 : m[1]-2], Bold: true})
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}

// Blocks scans Markdown line by line into a flat block sequence. Blank lines
// are skipped; consecutive pipe lines form one table, with the separator row
// dropped. Unrecognized lines become paragraphs.
func Blocks(src string) []Block {
	lines := strings.Split(src, "\n")
	var blocks []Block

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 3, Text: line[4:]})
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: line[3:]})
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 1, Text: line[2:]})
		case strings.HasPrefix(line, "|"):
			var tableLines []string
			for ; i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "|"); i++ {
				tableLines = append(tableLines, strings.TrimSpace(lines[i]))
			}
			i--
			if rows := tableRows(tableLines); len(rows) > 0 {
				blocks = append(blocks, Block{Kind: BlockTable, Rows: rows})
			}
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
		}
	}
	return blocks
}

// tableRows parses pipe-delimited lines into cell grids, skipping the
// header separator row.
func tableRows(lines []string) [][]string {
	var rows [][]string
	for _, line := range lines {
		if strings.Contains(line, "---") {
			continue
		}
		cells := strings.Split(line, "|")
		if len(cells) < 3 {
			continue
		}
		row := make([]string, 0, len(cells)-2)
		for _, c := range cells[1 : len(cells)-1] {
			row = append(row, strings.TrimSpace(c))
		}
		rows = append(rows, row)
	}
	return rows
}
