// Package xlsx writes the contents table: sheet numbers and titles of all
// processed drawings, followed by the configured specification titles.
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/artidea/dxf-sheet-enumerator/internal/sheets"
)

// Layout carries the configurable worksheet strings.
type Layout struct {
	WorksheetTitle string
	DrawingsTitle  string
	SpecsTitle     string
}

const (
	fontName = "Liberation Sans"

	// The table is shaped for an A3 contents page printed in two
	// columns: once a column holds this many rows, the remaining rows
	// spill into the second column block.
	// TODO: make this configurable; sets longer than two columns
	// overflow the page.
	maxRowsPerPage = 47

	firstDataRow    = 4
	secondColOffset = 3
)

// WriteContents builds the contents workbook and saves it at path.
// Drawing rows keep their record order, which is the sheet numbering
// order; specification rows follow in the second column block.
func WriteContents(path string, records []sheets.SheetRecord, layout Layout) error {
	f := excelize.NewFile()
	defer f.Close()

	ws := layout.WorksheetTitle
	if err := f.SetSheetName("Sheet1", ws); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: fontName, Size: 14, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	numberStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: fontName, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: fontName, Size: 12},
	})
	if err != nil {
		return err
	}

	if err := setCell(f, ws, 1, 2, layout.DrawingsTitle, headerStyle); err != nil {
		return err
	}
	if err := f.MergeCell(ws, "A2", "B2"); err != nil {
		return err
	}

	rowIdx := firstDataRow
	rowOffset := 0
	colOffset := 0

	for _, rec := range records {
		if rec.IsSpecification {
			continue
		}
		if rowIdx > maxRowsPerPage {
			colOffset = secondColOffset
			rowOffset = maxRowsPerPage - firstDataRow + 1
		}
		row := rowIdx - rowOffset
		if err := setCell(f, ws, 1+colOffset, row, rec.SheetIndex, numberStyle); err != nil {
			return err
		}
		title := strings.ReplaceAll(rec.Title, `\P`, " ")
		if err := setCell(f, ws, 2+colOffset, row, title, titleStyle); err != nil {
			return err
		}
		rowIdx++
	}

	if err := writeSpecs(f, ws, records, layout, rowIdx, headerStyle, titleStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(ws, "B", "B", 60); err != nil {
		return err
	}
	if err := f.SetColWidth(ws, "E", "E", 60); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// writeSpecs appends the specification section into the second column
// block, directly under the drawing rows when those already spilled over.
func writeSpecs(f *excelize.File, ws string, records []sheets.SheetRecord, layout Layout,
	rowIdx int, headerStyle, titleStyle int,
) error {
	var specs []sheets.SheetRecord
	for _, rec := range records {
		if rec.IsSpecification {
			specs = append(specs, rec)
		}
	}
	if len(specs) == 0 {
		return nil
	}

	colOffset := secondColOffset
	rowOffset := 0
	if rowIdx <= maxRowsPerPage {
		rowIdx = 2
	} else {
		rowOffset = maxRowsPerPage - firstDataRow + 1
		rowIdx += 2
	}

	row := rowIdx - rowOffset
	if err := setCell(f, ws, 1+colOffset, row, layout.SpecsTitle, headerStyle); err != nil {
		return err
	}
	from, err := excelize.CoordinatesToCellName(1+colOffset, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(2+colOffset, row)
	if err != nil {
		return err
	}
	if err := f.MergeCell(ws, from, to); err != nil {
		return err
	}
	rowIdx += 2

	for _, rec := range specs {
		if err := setCell(f, ws, 2+colOffset, rowIdx-rowOffset, rec.Title, titleStyle); err != nil {
			return err
		}
		rowIdx++
	}
	return nil
}

func setCell(f *excelize.File, ws string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(ws, cell, value); err != nil {
		return fmt.Errorf("cell %s: %w", cell, err)
	}
	return f.SetCellStyle(ws, cell, cell, style)
}
