package parser

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// reopen saves f into a temp dir and opens it again, so tests read what a
// real file contains.
func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(tmpFile))
	require.NoError(t, f.Close())

	f2, err := excelize.OpenFile(tmpFile)
	require.NoError(t, err)
	t.Cleanup(func() { f2.Close() })
	return f2
}

func extract(t *testing.T, f *excelize.File, sheet string, walk CellWalk) map[string]models.CellRecord {
	t.Helper()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	cells, err := ExtractCells(f, sheet, rows, SheetBounds(f, sheet, rows), walk)
	require.NoError(t, err)
	return cells
}

func TestExtractCells(t *testing.T) {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	require.NoError(t, f.SetCellValue(sheetName, "A1", "Header1"))
	require.NoError(t, f.SetCellValue(sheetName, "B1", "Header2"))
	require.NoError(t, f.SetCellValue(sheetName, "A2", 100))
	require.NoError(t, f.SetCellValue(sheetName, "B2", 200.5))
	require.NoError(t, f.SetCellValue(sheetName, "A3", true))
	require.NoError(t, f.SetCellFormula(sheetName, "C2", "SUM(A2:B2)"))
	require.NoError(t, f.SetCellValue(sheetName, "D4", "far"))

	cells := extract(t, reopen(t, f), sheetName, CellWalk{})

	assert.Equal(t, models.CellRecord{Value: "Header1", DataType: models.DataTypeString, NumberFormat: "General"}, cells["A1"])
	assert.Equal(t, int64(100), cells["A2"].Value)
	assert.Equal(t, models.DataTypeNumber, cells["A2"].DataType)
	assert.Equal(t, 200.5, cells["B2"].Value)
	assert.Equal(t, true, cells["A3"].Value)
	assert.Equal(t, models.DataTypeBool, cells["A3"].DataType)

	formula := cells["C2"]
	assert.Equal(t, models.DataTypeFormula, formula.DataType)
	assert.Equal(t, "=SUM(A2:B2)", formula.Value)
	assert.Equal(t, "=SUM(A2:B2)", formula.Formula)

	// Empty unstyled coordinates inside the bounds are not materialized.
	assert.NotContains(t, cells, "B3")
	assert.NotContains(t, cells, "C1")
	assert.Len(t, cells, 7)
}

func TestExtractCellsStyledEmptyCell(t *testing.T) {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	require.NoError(t, f.SetCellValue(sheetName, "A1", "x"))
	styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		Font: &excelize.Font{Bold: true},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheetName, "B2", "B2", styleID))

	f = reopen(t, f)

	cells := extract(t, f, sheetName, CellWalk{})
	require.Contains(t, cells, "B2")
	styled := cells["B2"]
	assert.Nil(t, styled.Value)
	assert.Equal(t, models.DataTypeNull, styled.DataType)
	require.NotNil(t, styled.Style)
	require.NotNil(t, styled.Style.Fill)
	assert.Equal(t, "solid", styled.Style.Fill.FillType)
	require.NotNil(t, styled.Style.Font)
	assert.True(t, styled.Style.Font.Bold)

	light := extract(t, f, sheetName, CellWalk{SkipStyles: true})
	assert.NotContains(t, light, "B2")
	assert.Nil(t, light["A1"].Style)
}

func TestExtractCellsSparseWalk(t *testing.T) {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	require.NoError(t, f.SetCellValue(sheetName, "A1", "first"))
	require.NoError(t, f.SetCellValue(sheetName, "Z500", "last"))

	f = reopen(t, f)
	cells := extract(t, f, sheetName, CellWalk{MaxCells: 100})
	assert.Len(t, cells, 2)
	assert.Equal(t, "last", cells["Z500"].Value)
}

func TestCoordinateKeysRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	for _, cell := range []string{"A1", "Z9", "AA10", "AZ3", "XFD2"} {
		require.NoError(t, f.SetCellValue(sheetName, cell, cell))
	}

	cells := extract(t, reopen(t, f), sheetName, CellWalk{MaxCells: 1000})
	for key := range cells {
		col, row, err := excelize.SplitCellName(key)
		require.NoError(t, err)
		joined, err := excelize.JoinCellName(col, row)
		require.NoError(t, err)
		assert.Equal(t, key, joined)
	}
	assert.Len(t, cells, 5)
}

func TestSheetBounds(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1))
	require.NoError(t, f.SetCellValue("Sheet1", "D5", 2))
	f = reopen(t, f)

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	b := SheetBounds(f, "Sheet1", rows)
	assert.Equal(t, 5, b.MaxRow)
	assert.Equal(t, 4, b.MaxCol)
	assert.LessOrEqual(t, b.MinRow, 2)
	assert.LessOrEqual(t, b.MinCol, 2)

	assert.Equal(t, 0, Bounds{}.Area())
	assert.Equal(t, 6, Bounds{MinRow: 1, MinCol: 1, MaxRow: 2, MaxCol: 3}.Area())
}

func TestTypedValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		cellType excelize.CellType
		numFmt   string
		value    interface{}
		dataType string
	}{
		{"empty", "", excelize.CellTypeUnset, "General", nil, models.DataTypeNull},
		{"int", "42", excelize.CellTypeNumber, "General", int64(42), models.DataTypeNumber},
		{"float", "3.25", excelize.CellTypeUnset, "0.00", 3.25, models.DataTypeNumber},
		{"shared string digits", "007", excelize.CellTypeSharedString, "General", "007", models.DataTypeString},
		{"bool true", "1", excelize.CellTypeBool, "General", true, models.DataTypeBool},
		{"bool false text", "FALSE", excelize.CellTypeBool, "General", false, models.DataTypeBool},
		{"error", "#DIV/0!", excelize.CellTypeError, "General", "#DIV/0!", models.DataTypeError},
		{"formula", "=A1+1", excelize.CellTypeFormula, "General", "=A1+1", models.DataTypeFormula},
		{"date serial", "45306", excelize.CellTypeNumber, "yyyy-mm-dd", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), models.DataTypeDate},
		{"iso date", "2024-01-15T00:00:00Z", excelize.CellTypeDate, "General", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), models.DataTypeDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, dataType := typedValue(tt.raw, tt.cellType, tt.numFmt, false)
			assert.Equal(t, tt.dataType, dataType)
			if tm, ok := tt.value.(time.Time); ok {
				require.IsType(t, time.Time{}, value)
				assert.True(t, tm.Equal(value.(time.Time)), "got %v", value)
				return
			}
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"1E-3", 0.001},
		{"hello", "hello"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseValue(tt.input), "parseValue(%q)", tt.input)
	}
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"General", false},
		{"0.00", false},
		{"#,##0", false},
		{"@", false},
		{"yyyy-mm-dd", true},
		{"m/d/yy h:mm", true},
		{"[h]:mm:ss", true},
		{`"Day" 0`, false},
		{`[Red]0.00`, false},
		{`0.00\d`, false},
		{"mmm-yy", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDateFormat(tt.format), tt.format)
	}
}

func TestParseOwnStyles(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <cols><col min="2" max="2" style="3" customWidth="1" width="9"/></cols>
  <sheetData>
    <row r="1"><c r="A1" t="s"><v>0</v></c><c r="C1" s="3"/></row>
    <row r="2" s="3" customFormat="1"/>
    <row r="4"><c r="A4" s="0"/><c s="2"/></row>
  </sheetData>
</worksheet>`)

	styled, err := parseOwnStyles(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"C1": true, "B4": true}, styled)

	_, err = parseOwnStyles([]byte(`<worksheet><sheetData>`))
	assert.Error(t, err)
}

func TestExtractCellsOwnStyles(t *testing.T) {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	require.NoError(t, f.SetCellValue(sheetName, "A1", "x"))
	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheetName, "B2", "B2", styleID))
	require.NoError(t, f.SetCellStyle(sheetName, "C3", "C3", styleID))

	f = reopen(t, f)
	cells := extract(t, f, sheetName, CellWalk{OwnStyles: map[string]bool{"B2": true}})
	assert.Contains(t, cells, "A1")
	assert.Contains(t, cells, "B2")
	assert.NotContains(t, cells, "C3")
}
