// Package sheet writes Excel workbooks from Markdown. Only headings and
// pipe tables carry over; spreadsheets have no notion of paragraphs, so
// narrative text is skipped. Create-only, like the Word path.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/mdoffice/internal/render"
)

const (
	sheetName   = "Data"
	maxColWidth = 50
)

// Create converts the Markdown document's headings and tables into a
// workbook at outPath.
func Create(src, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4CAF50"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("section style: %w", err)
	}

	colWidths := map[int]int{}
	row := 1

	for _, block := range render.Blocks(src) {
		switch block.Kind {
		case render.BlockHeading:
			if block.Level > 2 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetCellValue(sheetName, cell, block.Text); err != nil {
				return fmt.Errorf("write heading: %w", err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, sectionStyle); err != nil {
				return fmt.Errorf("style heading: %w", err)
			}
			row += 2

		case render.BlockTable:
			for i, cells := range block.Rows {
				for j, value := range cells {
					cell, _ := excelize.CoordinatesToCellName(j+1, row)
					if err := f.SetCellValue(sheetName, cell, value); err != nil {
						return fmt.Errorf("write cell: %w", err)
					}
					if i == 0 {
						if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
							return fmt.Errorf("style header cell: %w", err)
						}
					}
					if w := len(value) + 2; w > colWidths[j] {
						colWidths[j] = w
					}
				}
				row++
			}
			row += 2 // spacing between tables
		}
	}

	for col, width := range colWidths {
		if width > maxColWidth {
			width = maxColWidth
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, float64(width)); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
