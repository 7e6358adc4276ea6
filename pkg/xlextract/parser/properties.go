package parser

import (
	"math"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
)

// Excel defaults used when the sheet format declares none.
const (
	defaultColWidth  = 9.140625
	defaultRowHeight = 15.0
	sizeEpsilon      = 1e-6
)

// ExtractSheetProperties reads sheet metadata. Column widths and row heights
// are sparse: only sizes that differ from the sheet default are kept.
func ExtractSheetProperties(f *excelize.File, sheetName string, bounds Bounds) models.SheetProperties {
	props := models.SheetProperties{
		Title:      sheetName,
		MaxRow:     bounds.MaxRow,
		MaxColumn:  bounds.MaxCol,
		SheetState: "visible",
	}

	if visible, err := f.GetSheetVisible(sheetName); err == nil && !visible {
		props.SheetState = "hidden"
	}

	if view, err := f.GetSheetView(sheetName, 0); err == nil {
		props.SheetView = &models.SheetView{
			ShowGridLines:     view.ShowGridLines,
			ShowRowColHeaders: view.ShowRowColHeaders,
			ZoomScale:         view.ZoomScale,
		}
	}

	colDefault, rowDefault := defaultColWidth, defaultRowHeight
	if sp, err := f.GetSheetProps(sheetName); err == nil {
		if sp.DefaultColWidth != nil && *sp.DefaultColWidth > 0 {
			colDefault = *sp.DefaultColWidth
		}
		if sp.DefaultRowHeight != nil && *sp.DefaultRowHeight > 0 {
			rowDefault = *sp.DefaultRowHeight
		}
	}

	for col := 1; col <= bounds.MaxCol; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			continue
		}
		width, err := f.GetColWidth(sheetName, name)
		if err != nil || math.Abs(width-colDefault) <= sizeEpsilon || math.Abs(width-defaultColWidth) <= sizeEpsilon {
			continue
		}
		if props.ColumnWidths == nil {
			props.ColumnWidths = make(map[string]float64)
		}
		props.ColumnWidths[name] = width
	}

	for row := 1; row <= bounds.MaxRow; row++ {
		height, err := f.GetRowHeight(sheetName, row)
		if err != nil || math.Abs(height-rowDefault) <= sizeEpsilon || math.Abs(height-defaultRowHeight) <= sizeEpsilon {
			continue
		}
		if props.RowHeights == nil {
			props.RowHeights = make(map[int]float64)
		}
		props.RowHeights[row] = height
	}

	return props
}

// ExtractDocumentProperties reads the core document properties, nil when absent.
func ExtractDocumentProperties(f *excelize.File) *models.DocumentProperties {
	dp, err := f.GetDocProps()
	if err != nil || dp == nil {
		return nil
	}
	props := &models.DocumentProperties{
		Title:          dp.Title,
		Subject:        dp.Subject,
		Creator:        dp.Creator,
		Keywords:       dp.Keywords,
		Description:    dp.Description,
		LastModifiedBy: dp.LastModifiedBy,
		Created:        dp.Created,
		Modified:       dp.Modified,
	}
	if *props == (models.DocumentProperties{}) {
		return nil
	}
	return props
}

// ActiveSheetName returns the name of the active sheet, or "".
func ActiveSheetName(f *excelize.File) string {
	return f.GetSheetName(f.GetActiveSheetIndex())
}

// Date1904 reports whether the workbook uses the 1904 date system.
func Date1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	return err == nil && props.Date1904 != nil && *props.Date1904
}
