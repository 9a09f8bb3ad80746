package pdfdoc

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/mdoffice/internal/render"
	"github.com/dgallion1/mdoffice/internal/section"
)

// Page geometry mirrors the fixed stylesheet of the converter's HTML
// template: landscape Letter with half-inch margins.
const (
	pageMargin   = 12.7 // 0.5in in mm
	bodyFontSize = 10
	tableFont    = 7
	lineHeight   = 5
	cellHeight   = 6
)

// renderSectionPDF renders one section (heading re-attached, so the first
// line of the page is the section title) into a new PDF document.
func renderSectionPDF(sec section.Section, outPath string) error {
	src := sec.Content
	if sec.Title != "" {
		src = "## " + sec.Title + "\n\n" + sec.Content
	}
	return renderMarkdownPDF(src, outPath)
}

// renderMarkdownPDF converts Markdown to HTML and lays the HTML out into a
// PDF written to outPath.
func renderMarkdownPDF(src, outPath string) error {
	htmlSrc, err := render.HTML(src)
	if err != nil {
		return err
	}

	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return fmt.Errorf("parse rendered html: %w", err)
	}

	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", bodyFontSize)

	w := &pdfWalker{pdf: pdf}
	w.walk(doc)

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// pdfWalker lays out an HTML node tree into an fpdf document.
type pdfWalker struct {
	pdf  *fpdf.Fpdf
	bold int // nesting depth of <strong>/<b>
}

func (w *pdfWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3:
			w.heading(n)
			return
		case atom.P:
			w.paragraph(n)
			return
		case atom.Table:
			w.table(n)
			return
		case atom.Ul, atom.Ol:
			w.list(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *pdfWalker) heading(n *html.Node) {
	size := map[atom.Atom]float64{atom.H1: 16, atom.H2: 14, atom.H3: 12}[n.DataAtom]
	w.pdf.SetFont("Helvetica", "B", size)
	w.pdf.MultiCell(0, lineHeight+2, nodeText(n), "", "L", false)
	w.pdf.Ln(2)
	w.pdf.SetFont("Helvetica", "", bodyFontSize)
}

func (w *pdfWalker) paragraph(n *html.Node) {
	w.inline(n)
	w.pdf.Ln(lineHeight + 2)
}

// inline writes text runs, flipping to bold inside <strong>/<b>.
func (w *pdfWalker) inline(n *html.Node) {
	switch {
	case n.Type == html.TextNode:
		w.pdf.Write(lineHeight, n.Data)
		return
	case n.Type == html.ElementNode && (n.DataAtom == atom.Strong || n.DataAtom == atom.B):
		w.bold++
		w.pdf.SetFont("Helvetica", "B", bodyFontSize)
		defer func() {
			w.bold--
			style := ""
			if w.bold > 0 {
				style = "B"
			}
			w.pdf.SetFont("Helvetica", style, bodyFontSize)
		}()
	case n.Type == html.ElementNode && n.DataAtom == atom.Br:
		w.pdf.Ln(lineHeight)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.inline(c)
	}
}

func (w *pdfWalker) list(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			w.pdf.Write(lineHeight, "  • "+nodeText(c))
			w.pdf.Ln(lineHeight)
		}
	}
	w.pdf.Ln(2)
}

// table draws a bordered grid with the template's white-on-green header row
// and equal column widths across the printable area.
func (w *pdfWalker) table(n *html.Node) {
	rows := tableCells(n)
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	pageW, _ := w.pdf.GetPageSize()
	colW := (pageW - 2*pageMargin) / float64(cols)

	w.pdf.SetFont("Helvetica", "", tableFont)
	w.pdf.SetDrawColor(51, 51, 51)

	for i, row := range rows {
		if i == 0 {
			w.pdf.SetFont("Helvetica", "B", tableFont)
			w.pdf.SetFillColor(76, 175, 80)
			w.pdf.SetTextColor(255, 255, 255)
		} else if i%2 == 0 {
			w.pdf.SetFillColor(242, 242, 242)
		} else {
			w.pdf.SetFillColor(255, 255, 255)
		}

		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			w.pdf.CellFormat(colW, cellHeight, cell, "1", 0, "L", true, 0, "")
		}
		w.pdf.Ln(cellHeight)

		if i == 0 {
			w.pdf.SetFont("Helvetica", "", tableFont)
			w.pdf.SetTextColor(0, 0, 0)
		}
	}
	w.pdf.SetFont("Helvetica", "", bodyFontSize)
	w.pdf.Ln(2)
}

// tableCells flattens a <table> node into rows of cell text, traversing
// thead/tbody transparently.
func tableCells(n *html.Node) [][]string {
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					row = append(row, nodeText(c))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return rows
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.TrimSpace(b.String())
}
