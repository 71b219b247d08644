package xlsx

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/artidea/dxf-sheet-enumerator/internal/sheets"
)

var testLayout = Layout{
	WorksheetTitle: "Перечень листов",
	DrawingsTitle:  "Чертежи",
	SpecsTitle:     "Ведомости",
}

func drawingRecords(n int) []sheets.SheetRecord {
	var records []sheets.SheetRecord
	for i := 1; i <= n; i++ {
		records = append(records, sheets.SheetRecord{
			SourceFile: fmt.Sprintf("plan%d.dxf", i),
			SheetIndex: i,
			Title:      fmt.Sprintf("План этажа %d", i),
		})
	}
	return records
}

func openWritten(t *testing.T, records []sheets.SheetRecord) *excelize.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contents.xlsx")
	require.NoError(t, WriteContents(path, records, testLayout))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(testLayout.WorksheetTitle, ref)
	require.NoError(t, err)
	return v
}

func TestWriteContentsDrawingRows(t *testing.T) {
	f := openWritten(t, drawingRecords(3))

	sheetList := f.GetSheetList()
	require.Contains(t, sheetList, testLayout.WorksheetTitle)

	assert.Equal(t, "Чертежи", cell(t, f, "A2"))
	for i := 1; i <= 3; i++ {
		row := 3 + i
		assert.Equal(t, fmt.Sprint(i), cell(t, f, fmt.Sprintf("A%d", row)))
		assert.Equal(t, fmt.Sprintf("План этажа %d", i), cell(t, f, fmt.Sprintf("B%d", row)))
	}
}

func TestWriteContentsReplacesLineBreaks(t *testing.T) {
	records := []sheets.SheetRecord{{
		SheetIndex: 1,
		Title:      `План\Pэтажа`,
	}}
	f := openWritten(t, records)

	assert.Equal(t, "План этажа", cell(t, f, "B4"))
}

func TestWriteContentsSpecsSection(t *testing.T) {
	records := append(drawingRecords(2),
		sheets.SheetRecord{Title: "Ведомость полов", IsSpecification: true},
		sheets.SheetRecord{Title: "Ведомость дверей", IsSpecification: true},
	)
	f := openWritten(t, records)

	// Short sets keep the spec section at the top of the second column.
	assert.Equal(t, "Ведомости", cell(t, f, "D2"))
	assert.Equal(t, "Ведомость полов", cell(t, f, "E4"))
	assert.Equal(t, "Ведомость дверей", cell(t, f, "E5"))
}

func TestWriteContentsSecondColumnSpill(t *testing.T) {
	// 50 drawings: rows 4..47 fill the first column block, the rest
	// continue in the second one.
	f := openWritten(t, drawingRecords(50))

	assert.Equal(t, "44", cell(t, f, "A47"))
	assert.Equal(t, "45", cell(t, f, "D4"))
	assert.Equal(t, "50", cell(t, f, "D9"))
}

func TestWriteContentsNoSpecs(t *testing.T) {
	f := openWritten(t, drawingRecords(1))

	assert.Equal(t, "", cell(t, f, "D2"))
}

func TestWriteContentsBadPath(t *testing.T) {
	err := WriteContents(filepath.Join(t.TempDir(), "missing", "contents.xlsx"),
		drawingRecords(1), testLayout)
	assert.Error(t, err)
}
