package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
)

// CellWalk configures ExtractCells.
type CellWalk struct {
	// MaxCells bounds the dense coordinate walk; zero means unbounded.
	MaxCells int
	// Date1904 selects the 1904 date system for serial conversion.
	Date1904 bool
	// SkipStyles drops style records; styled empty cells are then omitted.
	SkipStyles bool
	// OwnStyles holds the references of cells carrying their own style
	// attribute. When set, an empty cell outside it is omitted even if it
	// inherits a row or column style. Nil trusts the resolved cell style.
	OwnStyles map[string]bool
}

// Bounds describes the extent of a sheet in 1-based coordinates.
type Bounds struct {
	MinRow, MinCol, MaxRow, MaxCol int
}

// Area returns the number of coordinates covered by the bounds.
func (b Bounds) Area() int {
	if b.MaxRow < b.MinRow || b.MaxCol < b.MinCol {
		return 0
	}
	return (b.MaxRow - b.MinRow + 1) * (b.MaxCol - b.MinCol + 1)
}

// SheetBounds returns the union of the declared sheet dimension and the
// populated rows. A sheet with neither yields a zero Bounds.
func SheetBounds(f *excelize.File, sheetName string, rows [][]string) Bounds {
	var b Bounds
	extend := func(col, row int) {
		if b.MinRow == 0 || row < b.MinRow {
			b.MinRow = row
		}
		if b.MinCol == 0 || col < b.MinCol {
			b.MinCol = col
		}
		if row > b.MaxRow {
			b.MaxRow = row
		}
		if col > b.MaxCol {
			b.MaxCol = col
		}
	}

	if dim, err := f.GetSheetDimension(sheetName); err == nil && dim != "" {
		for _, ref := range strings.Split(dim, ":") {
			if col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(ref, "$", "")); err == nil {
				extend(col, row)
			}
		}
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if value != "" {
				extend(colIdx+1, rowIdx+1)
			}
		}
	}
	return b
}

// ExtractCells walks every populated or styled cell of a sheet.
// Empty, unstyled cells are not materialized.
func ExtractCells(f *excelize.File, sheetName string, rows [][]string, bounds Bounds, walk CellWalk) (map[string]models.CellRecord, error) {
	result := make(map[string]models.CellRecord)
	styles := make(map[int]*excelize.Style)

	visit := func(col, row int) error {
		cellName, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		record, ok, err := readCell(f, sheetName, cellName, styles, walk)
		if err != nil {
			return fmt.Errorf("cell %s: %w", cellName, err)
		}
		if ok {
			result[cellName] = record
		}
		return nil
	}

	if walk.MaxCells > 0 && bounds.Area() > walk.MaxCells {
		// Too large for a dense walk: visit populated cells only.
		for rowIdx, values := range rows {
			for colIdx, value := range values {
				if value == "" {
					continue
				}
				if err := visit(colIdx+1, rowIdx+1); err != nil {
					return nil, err
				}
			}
		}
		return result, nil
	}

	for row := bounds.MinRow; row >= 1 && row <= bounds.MaxRow; row++ {
		for col := bounds.MinCol; col >= 1 && col <= bounds.MaxCol; col++ {
			if err := visit(col, row); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// readCell builds the record of one cell; ok is false for empty, unstyled cells.
func readCell(f *excelize.File, sheetName, cellName string, styles map[int]*excelize.Style, walk CellWalk) (models.CellRecord, bool, error) {
	var record models.CellRecord

	styleID, err := f.GetCellStyle(sheetName, cellName)
	if err != nil {
		return record, false, err
	}
	var style *excelize.Style
	if styleID != 0 {
		st, ok := styles[styleID]
		if !ok {
			if st, err = f.GetStyle(styleID); err != nil {
				return record, false, err
			}
			styles[styleID] = st
		}
		style = st
	}

	record.NumberFormat = "General"
	if style != nil {
		record.NumberFormat = NumberFormat(style)
		record.Style = convertStyle(style)
	}

	formula, err := f.GetCellFormula(sheetName, cellName)
	if err != nil {
		return record, false, err
	}
	cellType, err := f.GetCellType(sheetName, cellName)
	if err != nil {
		return record, false, err
	}
	raw, err := f.GetCellValue(sheetName, cellName, excelize.Options{RawCellValue: true})
	if err != nil {
		return record, false, err
	}

	if formula != "" {
		raw = "=" + strings.TrimPrefix(formula, "=")
	}
	record.Value, record.DataType = typedValue(raw, cellType, record.NumberFormat, walk.Date1904)
	if record.DataType == models.DataTypeFormula {
		record.Formula = raw
	}

	if record.Value == nil && walk.OwnStyles != nil && !walk.OwnStyles[cellName] {
		return record, false, nil
	}
	if walk.SkipStyles || record.Style.IsZero() {
		record.Style = nil
	}
	if record.Value == nil && (walk.SkipStyles || (record.Style == nil && record.NumberFormat == "General")) {
		return record, false, nil
	}
	return record, true, nil
}

// OwnStyledCells returns the references of the cells of a sheet whose <c>
// element carries a non-zero style index. A sheet without a worksheet part
// yields nil.
func (a *Archive) OwnStyledCells(sheetName string) (map[string]bool, error) {
	part := a.SheetPart(sheetName)
	if part == "" {
		return nil, nil
	}
	data, err := a.ReadPart(part)
	if err != nil || data == nil {
		return nil, err
	}
	return parseOwnStyles(data)
}

// parseOwnStyles collects styled cell references of a worksheet part. Cells
// without an r attribute follow the previous cell of their row.
func parseOwnStyles(data []byte) (map[string]bool, error) {
	result := make(map[string]bool)
	decoder := xml.NewDecoder(bytes.NewReader(data))
	row, col := 0, 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "row":
			row++
			col = 0
			if r := attrValue(se, "r"); r != "" {
				if n, err := strconv.Atoi(r); err == nil {
					row = n
				}
			}
		case "c":
			col++
			ref := attrValue(se, "r")
			if ref != "" {
				if c, r, err := excelize.CellNameToCoordinates(ref); err == nil {
					col, row = c, r
				}
			}
			if styleIdx := attrValue(se, "s"); styleIdx == "" || styleIdx == "0" {
				continue
			}
			if name, err := excelize.CoordinatesToCellName(col, row); err == nil {
				result[name] = true
			}
		}
	}
}

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// typedValue converts the raw cell content into a typed value.
// Raw content starting with "=" is formula text.
func typedValue(raw string, cellType excelize.CellType, numFmt string, date1904 bool) (interface{}, string) {
	if raw == "" {
		return nil, models.DataTypeNull
	}
	if strings.HasPrefix(raw, "=") {
		return raw, models.DataTypeFormula
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), models.DataTypeBool
	case excelize.CellTypeError:
		return raw, models.DataTypeError
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return raw, models.DataTypeString
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, models.DataTypeDate
			}
		}
		return raw, models.DataTypeString
	}

	v := parseValue(raw)
	if _, isString := v.(string); isString {
		return v, models.DataTypeString
	}
	if IsDateFormat(numFmt) {
		serial, _ := strconv.ParseFloat(raw, 64)
		if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
			return t, models.DataTypeDate
		}
	}
	return v, models.DataTypeNumber
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}
