package models

// ChartRecord represents a chart found on a sheet.
type ChartRecord struct {
	// Name is the drawing object name, when present.
	Name string `json:"name,omitempty"`
	// Type is the chart kind (e.g. Bar, Line, Pie).
	Type string `json:"type"`
	// Title is the rich-text title, nil when absent or unreadable.
	Title *string `json:"title"`
	// Position is the anchor rectangle, nil when unresolved.
	Position *Rect `json:"position"`
}
