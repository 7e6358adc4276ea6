package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
)

var errNotDrawing = errors.New("root element is not a spreadsheet drawing")

// contentKinds maps anchored element names to content kinds.
var contentKinds = map[string]string{
	"pic":          "pic",
	"graphicFrame": "chart",
	"sp":           "shape",
	"grpSp":        "group",
	"cxnSp":        "connector",
}

// ParseAnchors parses a drawing fragment and returns its grid anchors in
// document order. Absolute anchors carry no grid position and are skipped.
func ParseAnchors(part string, data []byte) ([]models.Anchor, error) {
	var anchors []models.Anchor

	decoder := xml.NewDecoder(bytes.NewReader(data))
	sawRoot := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedDrawingError{Part: part, Err: err}
		}

		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if se.Name.Space != nsXDR || se.Name.Local != "wsDr" {
				return nil, &MalformedDrawingError{Part: part, Err: errNotDrawing}
			}
			sawRoot = true
			continue
		}
		if se.Name.Space != nsXDR {
			continue
		}

		switch se.Name.Local {
		case "twoCellAnchor", "oneCellAnchor":
			anchor, err := parseGridAnchor(decoder, se)
			if err != nil {
				return nil, &MalformedDrawingError{Part: part, Err: err}
			}
			anchor.Part = part
			anchors = append(anchors, anchor)
		}
	}

	if !sawRoot {
		return nil, &MalformedDrawingError{Part: part, Err: errNotDrawing}
	}

	for i := range anchors {
		anchors[i].Seq = i + 1
		anchors[i].Key = fmt.Sprintf("image_%d", i+1)
	}
	return anchors, nil
}

// parseGridAnchor reads a twoCellAnchor or oneCellAnchor element.
func parseGridAnchor(decoder *xml.Decoder, start xml.StartElement) (models.Anchor, error) {
	anchor := models.Anchor{Kind: strings.TrimSuffix(start.Name.Local, "Anchor")}
	var hasFrom, hasTo bool
	var from, to [2]int

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return anchor, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Space != nsXDR {
				if (t.Name.Local == "blip" || t.Name.Local == "chart") && anchor.RelID == "" {
					anchor.RelID = relAttr(t, "embed", "id")
				}
				continue
			}
			switch t.Name.Local {
			case "from":
				col, row, err := parseMarker(decoder)
				if err != nil {
					return anchor, err
				}
				from = [2]int{col, row}
				hasFrom = true
				depth--
			case "to":
				col, row, err := parseMarker(decoder)
				if err != nil {
					return anchor, err
				}
				to = [2]int{col, row}
				hasTo = true
				depth--
			case "ext":
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "cx":
						anchor.ExtCX, _ = strconv.ParseInt(attr.Value, 10, 64)
					case "cy":
						anchor.ExtCY, _ = strconv.ParseInt(attr.Value, 10, 64)
					}
				}
			case "cNvPr":
				if anchor.Name == "" {
					for _, attr := range t.Attr {
						if attr.Name.Local == "name" {
							anchor.Name = attr.Value
						}
					}
				}
			default:
				if kind, ok := contentKinds[t.Name.Local]; ok && anchor.Content == "" {
					anchor.Content = kind
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	if !hasFrom {
		return anchor, errors.New(start.Name.Local + " without from marker")
	}
	if !hasTo {
		to = from
	}
	anchor.Rect = models.Rect{FromCol: from[0], FromRow: from[1], ToCol: to[0], ToRow: to[1]}
	return anchor, nil
}

// relAttr returns the first relationship-namespace attribute among names.
func relAttr(se xml.StartElement, names ...string) string {
	for _, name := range names {
		for _, attr := range se.Attr {
			if attr.Name.Space == nsR && attr.Name.Local == name {
				return attr.Value
			}
		}
	}
	return ""
}

// parseMarker reads the col and row children of a from/to marker.
func parseMarker(decoder *xml.Decoder) (col, row int, err error) {
	var hasCol, hasRow bool
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return 0, 0, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "col", "row":
				txt, err := readElementText(decoder)
				if err != nil {
					return 0, 0, err
				}
				depth--
				v, err := strconv.Atoi(strings.TrimSpace(txt))
				if err != nil {
					return 0, 0, fmt.Errorf("marker %s: %w", t.Name.Local, err)
				}
				if t.Name.Local == "col" {
					col, hasCol = v, true
				} else {
					row, hasRow = v, true
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	if !hasCol || !hasRow {
		return 0, 0, errors.New("marker without col/row")
	}
	return col, row, nil
}

// SheetAnchors resolves the anchors of the drawing attached to one sheet.
// It returns (nil, nil) when the sheet has no drawing.
func (a *Archive) SheetAnchors(sheetName string) ([]models.Anchor, error) {
	sheetPart := a.SheetPart(sheetName)
	if sheetPart == "" {
		return nil, nil
	}
	drawingPart := a.DrawingPart(sheetPart)
	if drawingPart == "" {
		return nil, nil
	}
	data, err := a.ReadPart(drawingPart)
	if err != nil {
		return nil, &MalformedDrawingError{Part: drawingPart, Err: err}
	}
	if data == nil {
		return nil, nil
	}
	return ParseAnchors(drawingPart, data)
}

// WorkbookAnchors concatenates the anchors of every drawing fragment in the
// package. Fragments that fail to parse are skipped and reported through the
// returned error slice; Seq and Key are renumbered across fragments.
func (a *Archive) WorkbookAnchors() ([]models.Anchor, []error) {
	var result []models.Anchor
	var errs []error
	for _, part := range a.DrawingParts() {
		data, err := a.ReadPart(part)
		if err != nil {
			errs = append(errs, &MalformedDrawingError{Part: part, Err: err})
			continue
		}
		anchors, err := ParseAnchors(part, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result = append(result, anchors...)
	}
	for i := range result {
		result[i].Seq = i + 1
		result[i].Key = fmt.Sprintf("image_%d", i+1)
	}
	return result, errs
}

// PictureAnchors filters anchors down to those holding a picture.
func PictureAnchors(anchors []models.Anchor) []models.Anchor {
	var result []models.Anchor
	for _, anchor := range anchors {
		if anchor.Content == "pic" {
			result = append(result, anchor)
		}
	}
	return result
}
