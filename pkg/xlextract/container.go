package xlextract

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/parser"
	"github.com/xuri/excelize/v2"
)

// Workbook is an open spreadsheet: the excelize object model plus the raw
// package archive. Close releases both.
type Workbook struct {
	Path    string
	File    *excelize.File
	Archive *parser.Archive

	zc *zip.ReadCloser
}

// supportedExts are the zip-based SpreadsheetML extensions.
var supportedExts = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// Open opens a workbook for reading.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(path)); !slices.Contains(supportedExts, ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	zc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}
	archive := parser.NewArchive(&zc.Reader)
	if !archive.Has("[Content_Types].xml") {
		zc.Close()
		return nil, fmt.Errorf("%w: %s is not an OOXML package", ErrUnsupportedFormat, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		zc.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}

	return &Workbook{
		Path:    path,
		File:    f,
		Archive: archive,
		zc:      zc,
	}, nil
}

// Close releases the workbook handles.
func (w *Workbook) Close() error {
	return errors.Join(w.File.Close(), w.zc.Close())
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.File.GetSheetList()
}

// CheckSheet returns a *SheetNotFoundError when the sheet does not exist.
func (w *Workbook) CheckSheet(name string) error {
	names := w.SheetNames()
	if !slices.Contains(names, name) {
		return &SheetNotFoundError{Name: name, Available: names}
	}
	return nil
}

// ListSheets returns the sheet names of the workbook at path.
func ListSheets(path string) ([]string, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.SheetNames(), nil
}

// Rows returns the formatted cell text of a sheet, row-major, trailing empty
// cells trimmed.
func (w *Workbook) Rows(name string) ([][]string, error) {
	if err := w.CheckSheet(name); err != nil {
		return nil, err
	}
	return w.File.GetRows(name)
}
