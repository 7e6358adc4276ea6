package models

// WorkbookData represents one extraction result: workbook properties plus
// a snapshot per extracted sheet.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"-"`
	// Properties holds workbook-level metadata.
	Properties WorkbookProperties `json:"workbook_properties"`
	// Sheets maps sheet name to its snapshot.
	Sheets map[string]*SheetSnapshot `json:"sheets"`
}

// WorkbookProperties represents workbook-level metadata, captured once per workbook.
type WorkbookProperties struct {
	// SheetNames lists the extracted sheets in workbook order.
	SheetNames  []string `json:"sheetnames"`
	ActiveSheet string   `json:"active_sheet"`
	SourceFile  string   `json:"source_file,omitempty"`
	// DocumentProperties is nil when the core properties part is absent.
	DocumentProperties *DocumentProperties `json:"document_properties,omitempty"`
	// NamedRanges maps defined name to its reference.
	NamedRanges map[string]string `json:"named_ranges,omitempty"`
	// PrintAreas maps sheet name to its print areas.
	PrintAreas map[string][]PrintArea `json:"print_areas,omitempty"`
}

// DocumentProperties holds the core document properties.
type DocumentProperties struct {
	Title          string `json:"title,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Creator        string `json:"creator,omitempty"`
	Keywords       string `json:"keywords,omitempty"`
	Description    string `json:"description,omitempty"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
}

// OrderedSheets returns the names of the extracted sheets in workbook order.
func (w *WorkbookData) OrderedSheets() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, name := range w.Properties.SheetNames {
		if _, ok := w.Sheets[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// PrintArea is a rectangle of a print area definition, 1-based and inclusive.
type PrintArea struct {
	R1 int `json:"r1"`
	C1 int `json:"c1"`
	R2 int `json:"r2"`
	C2 int `json:"c2"`
}
