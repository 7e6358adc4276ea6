// Package models defines the snapshot data structures produced by extraction.
package models

// Value data types, following the single-letter codes used in SpreadsheetML.
const (
	DataTypeNull    = "null"
	DataTypeString  = "s"
	DataTypeNumber  = "n"
	DataTypeBool    = "b"
	DataTypeFormula = "f"
	DataTypeDate    = "d"
	DataTypeError   = "e"
)

// CellRecord represents one populated or styled cell.
type CellRecord struct {
	// Value is nil, string, int64, float64, bool or time.Time.
	// Formula cells carry their formula text (starting with "=").
	Value interface{} `json:"value"`
	// DataType is one of the DataType* codes.
	DataType string `json:"data_type"`
	// NumberFormat is the declared number/date format string.
	NumberFormat string `json:"number_format,omitempty"`
	// Formula is set when the raw content begins with "=".
	Formula string `json:"formula,omitempty"`
	// Style is nil for cells without any styling attribute.
	Style *CellStyle `json:"style,omitempty"`
}

// CellStyle holds the style attributes that are present on a cell.
type CellStyle struct {
	Font      *Font      `json:"font,omitempty"`
	Fill      *Fill      `json:"fill,omitempty"`
	Alignment *Alignment `json:"alignment,omitempty"`
	Border    *Border    `json:"border,omitempty"`
}

// Font describes cell font attributes.
type Font struct {
	Name      string  `json:"name,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Bold      bool    `json:"bold"`
	Italic    bool    `json:"italic"`
	Underline string  `json:"underline,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// Fill describes the background of a cell.
type Fill struct {
	FillType   string `json:"fill_type"`
	StartColor string `json:"start_color,omitempty"`
	EndColor   string `json:"end_color,omitempty"`
}

// Alignment describes cell alignment.
type Alignment struct {
	Horizontal   string `json:"horizontal,omitempty"`
	Vertical     string `json:"vertical,omitempty"`
	WrapText     bool   `json:"wrap_text"`
	TextRotation int    `json:"text_rotation,omitempty"`
}

// Border holds the named line style of each cell edge.
type Border struct {
	Left   string `json:"left,omitempty"`
	Right  string `json:"right,omitempty"`
	Top    string `json:"top,omitempty"`
	Bottom string `json:"bottom,omitempty"`
}

// IsZero reports whether no style attribute is set.
func (s *CellStyle) IsZero() bool {
	return s == nil || (s.Font == nil && s.Fill == nil && s.Alignment == nil && s.Border == nil)
}
