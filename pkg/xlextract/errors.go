package xlextract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrUnsupportedFormat indicates the input is not a zip-based SpreadsheetML package.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// SheetNotFoundError reports a sheet name missing from the workbook.
type SheetNotFoundError struct {
	Name      string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found. Available sheets: %s", e.Name, strings.Join(e.Available, ", "))
}

// ExtractionError represents a failure while extracting one sheet component.
type ExtractionError struct {
	SheetName string
	Component string // "cells", "merged_cells", "hyperlinks", "comments", "images", "charts"
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}

// PartialExtractionWarning notes a recoverable gap in the extracted data.
// It is logged, never returned.
type PartialExtractionWarning struct {
	SheetName string
	Reason    string
}

func (w *PartialExtractionWarning) Error() string {
	return fmt.Sprintf("partial extraction in sheet %q: %s", w.SheetName, w.Reason)
}
