package models

// SheetSnapshot represents the full extracted content of one worksheet.
type SheetSnapshot struct {
	// Properties holds sheet-level metadata.
	Properties SheetProperties `json:"properties"`
	// Cells maps a coordinate key (e.g. "B3") to its record.
	Cells map[string]CellRecord `json:"cells"`
	// MergedCells lists merged ranges (e.g. "A1:B1") in file order.
	MergedCells []string `json:"merged_cells"`
	// Hyperlinks maps coordinate to link data.
	Hyperlinks map[string]Hyperlink `json:"hyperlinks"`
	// Comments maps coordinate to comment data.
	Comments map[string]Comment `json:"comments"`
	// Images lists embedded images in extraction order.
	Images []ImageRecord `json:"images"`
	// Charts lists charts in drawing order.
	Charts []ChartRecord `json:"charts"`
}

// SheetProperties represents sheet metadata.
type SheetProperties struct {
	Title      string `json:"title"`
	MaxRow     int    `json:"max_row"`
	MaxColumn  int    `json:"max_column"`
	SheetState string `json:"sheet_state"`
	// SheetView is nil when the sheet has no view element.
	SheetView *SheetView `json:"sheet_view"`
	// ColumnWidths holds explicitly sized columns only.
	ColumnWidths map[string]float64 `json:"column_widths,omitempty"`
	// RowHeights holds explicitly sized rows only.
	RowHeights map[int]float64 `json:"row_heights,omitempty"`
}

// SheetView holds the view flags of the first sheet view.
type SheetView struct {
	ShowGridLines     *bool    `json:"show_gridlines"`
	ShowRowColHeaders *bool    `json:"show_row_col_headers"`
	ZoomScale         *float64 `json:"zoom_scale"`
}

// Hyperlink represents a cell hyperlink.
type Hyperlink struct {
	URL     string  `json:"url"`
	Display string  `json:"display"`
	Tooltip *string `json:"tooltip"`
}

// Comment represents a cell comment.
type Comment struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// NewSheetSnapshot returns a snapshot with initialized collections.
func NewSheetSnapshot(title string) *SheetSnapshot {
	return &SheetSnapshot{
		Properties:  SheetProperties{Title: title},
		Cells:       make(map[string]CellRecord),
		MergedCells: []string{},
		Hyperlinks:  make(map[string]Hyperlink),
		Comments:    make(map[string]Comment),
		Images:      []ImageRecord{},
		Charts:      []ChartRecord{},
	}
}
