// Package parser reads the excelize object model and the raw parts of an
// xlsx package into snapshot records.
package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// XML namespaces used in SpreadsheetML and DrawingML parts.
const (
	nsXDR = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// Archive gives access to the raw parts of an xlsx package.
type Archive struct {
	zr     *zip.Reader
	files  map[string]*zip.File
	sheets map[string]string
}

// NewArchive indexes the parts of a zip reader.
func NewArchive(zr *zip.Reader) *Archive {
	a := &Archive{
		zr:    zr,
		files: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		a.files[strings.TrimPrefix(f.Name, "/")] = f
	}
	return a
}

// Has reports whether the package contains the named part.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// ReadPart returns the content of a part. A missing part yields (nil, nil).
func (a *Archive) ReadPart(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Relationships parses the .rels part that belongs to the given part.
func (a *Archive) Relationships(part string) []Relationship {
	data, err := a.ReadPart(relsPath(part))
	if err != nil || data == nil {
		return nil
	}
	return parseRelationships(data)
}

// SheetPart returns the worksheet part path for a sheet name, or "".
func (a *Archive) SheetPart(sheetName string) string {
	if a.sheets == nil {
		a.sheets = a.sheetParts()
	}
	return a.sheets[sheetName]
}

// DrawingPart returns the drawing part referenced by a worksheet part, or "".
func (a *Archive) DrawingPart(sheetPart string) string {
	for _, rel := range a.Relationships(sheetPart) {
		if strings.HasSuffix(rel.Type, "/drawing") {
			return resolveRelativePath(rel.Target, path.Dir(sheetPart))
		}
	}
	return ""
}

// DrawingParts returns every drawing fragment in the package in natural order.
func (a *Archive) DrawingParts() []string {
	return a.partsUnder("xl/drawings/", ".xml")
}

// MediaParts returns every blob in the media folder, in archive order.
func (a *Archive) MediaParts() []string {
	var result []string
	for _, f := range a.zr.File {
		name := strings.TrimPrefix(f.Name, "/")
		if strings.HasPrefix(name, "xl/media/") && !strings.HasSuffix(name, "/") {
			result = append(result, name)
		}
	}
	return result
}

func (a *Archive) partsUnder(dir, ext string) []string {
	var result []string
	for name := range a.files {
		if !strings.HasPrefix(name, dir) || !strings.HasSuffix(name, ext) {
			continue
		}
		if strings.Contains(strings.TrimPrefix(name, dir), "/") {
			continue
		}
		result = append(result, name)
	}
	sort.Slice(result, func(i, j int) bool {
		return naturalLess(result[i], result[j])
	})
	return result
}

// sheetParts maps sheet names to worksheet parts via workbook.xml and its rels.
func (a *Archive) sheetParts() map[string]string {
	result := make(map[string]string)

	workbookXML, err := a.ReadPart("xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return result
	}
	sheetsInfo := parseWorkbookSheets(workbookXML)

	for _, rel := range a.Relationships("xl/workbook.xml") {
		if name, ok := sheetsInfo[rel.ID]; ok && strings.Contains(strings.ToLower(rel.Type), "worksheet") {
			result[name] = resolveRelativePath(rel.Target, "xl")
		}
	}
	return result
}

// relsPath returns the relationships part for a part ("xl/a/b.xml" -> "xl/a/_rels/b.xml.rels").
func relsPath(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveRelativePath resolves a relationship target against the source part's directory.
// Targets starting with "/" are package-absolute.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

func parseRelationships(data []byte) []Relationship {
	var result []Relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var rel Relationship
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				rel.ID = attr.Value
			case "Type":
				rel.Type = attr.Value
			case "Target":
				rel.Target = attr.Value
			case "TargetMode":
				rel.TargetMode = attr.Value
			}
		}
		result = append(result, rel)
	}
	return result
}

// parseWorkbookSheets maps relationship ids to sheet names.
func parseWorkbookSheets(data []byte) map[string]string {
	result := make(map[string]string)
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var name, rID string
			for _, attr := range se.Attr {
				switch {
				case attr.Name.Local == "name":
					name = attr.Value
				case attr.Name.Local == "id" && attr.Name.Space == nsR:
					rID = attr.Value
				case attr.Name.Local == "id" && rID == "":
					rID = attr.Value
				}
			}
			if name != "" && rID != "" {
				result[rID] = name
			}
		}
	}

	return result
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// naturalLess orders "drawing2.xml" before "drawing10.xml".
func naturalLess(a, b string) bool {
	pa, na := splitTrailingNumber(a)
	pb, nb := splitTrailingNumber(b)
	if pa != pb || na < 0 || nb < 0 {
		return a < b
	}
	return na < nb
}

func splitTrailingNumber(name string) (string, int) {
	base := strings.TrimSuffix(name, path.Ext(name))
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return base, -1
	}
	return base[:i], n
}
