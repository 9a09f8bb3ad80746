// Package docdoc writes Word documents from Markdown. DOCX output is
// create-only: there is no unit model to merge into, so append/replace are
// rejected upstream.
package docdoc

import (
	"fmt"
	"os"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/mdoffice/internal/render"
)

// Heading sizes in half-points.
var headingSizes = map[int]string{1: "32", 2: "28", 3: "24"}

// Create converts the whole Markdown document to a .docx at outPath.
func Create(src, outPath string) error {
	w := docx.New().WithDefaultTheme()

	for _, block := range render.Blocks(src) {
		switch block.Kind {
		case render.BlockHeading:
			size, ok := headingSizes[block.Level]
			if !ok {
				size = headingSizes[3]
			}
			para := w.AddParagraph()
			para.AddText(block.Text).Size(size).Bold()

		case render.BlockTable:
			addTable(w, block.Rows)

		case render.BlockParagraph:
			para := w.AddParagraph()
			for _, span := range render.Spans(block.Text) {
				run := para.AddText(span.Text)
				if span.Bold {
					run.Bold()
				}
			}
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if _, err := w.WriteTo(f); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// addTable fills a Word table from parsed cell rows, bolding the header row.
func addTable(w *docx.Docx, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])

	tbl := w.AddTable(len(rows), cols, 0, nil)
	for i, row := range rows {
		for j := 0; j < cols && j < len(row); j++ {
			cell := tbl.TableRows[i].TableCells[j]
			run := cell.AddParagraph().AddText(row[j])
			if i == 0 {
				run.Bold()
			}
		}
	}
}
