package parser

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
)

// hyperlinkMeta holds the attributes of a worksheet <hyperlink> element.
type hyperlinkMeta struct {
	Ref      string
	RelID    string
	Location string
	Display  string
	Tooltip  *string
}

// parseHyperlinkElements reads every <hyperlink> of a worksheet part.
func parseHyperlinkElements(data []byte) []hyperlinkMeta {
	var result []hyperlinkMeta
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "hyperlink" {
			continue
		}
		var meta hyperlinkMeta
		for _, attr := range se.Attr {
			switch {
			case attr.Name.Local == "ref":
				meta.Ref = attr.Value
			case attr.Name.Local == "id" && attr.Name.Space == nsR:
				meta.RelID = attr.Value
			case attr.Name.Local == "location":
				meta.Location = attr.Value
			case attr.Name.Local == "display":
				meta.Display = attr.Value
			case attr.Name.Local == "tooltip":
				tooltip := attr.Value
				meta.Tooltip = &tooltip
			}
		}
		if meta.Ref != "" {
			result = append(result, meta)
		}
	}
	return result
}

// ExtractHyperlinks collects the hyperlinks of a sheet keyed by the top-left
// cell of each hyperlink range. Targets come from excelize; display text and
// tooltip come from the worksheet part.
func ExtractHyperlinks(f *excelize.File, a *Archive, sheetName string) map[string]models.Hyperlink {
	result := make(map[string]models.Hyperlink)

	sheetPart := a.SheetPart(sheetName)
	if sheetPart == "" {
		return result
	}
	data, err := a.ReadPart(sheetPart)
	if err != nil || data == nil {
		return result
	}

	external := make(map[string]string)
	for _, rel := range a.Relationships(sheetPart) {
		if strings.HasSuffix(rel.Type, "/hyperlink") {
			external[rel.ID] = rel.Target
		}
	}

	for _, meta := range parseHyperlinkElements(data) {
		cell := strings.ReplaceAll(strings.SplitN(meta.Ref, ":", 2)[0], "$", "")

		target := ""
		if ok, link, err := f.GetCellHyperLink(sheetName, cell); err == nil && ok {
			target = link
		}
		if target == "" {
			target = external[meta.RelID]
		}
		if meta.Location != "" && (target == "" || target == meta.Location) {
			target = "#" + meta.Location
		}

		display := meta.Display
		if display == "" {
			display, _ = f.GetCellValue(sheetName, cell)
		}
		if display == "" {
			display = target
		}

		result[cell] = models.Hyperlink{
			URL:     target,
			Display: display,
			Tooltip: meta.Tooltip,
		}
	}
	return result
}
