package parser

import (
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
)

const printAreaName = "_xlnm.Print_Area"

// ExtractNamedRanges returns every defined name with its reference, and the
// print areas parsed per sheet. Sheet-scoped names are keyed "Scope!Name".
func ExtractNamedRanges(f *excelize.File) (map[string]string, map[string][]models.PrintArea) {
	names := make(map[string]string)
	printAreas := make(map[string][]models.PrintArea)

	for _, dn := range f.GetDefinedName() {
		key := dn.Name
		if dn.Scope != "" && dn.Scope != "Workbook" {
			key = dn.Scope + "!" + dn.Name
		}
		names[key] = dn.RefersTo

		if strings.EqualFold(dn.Name, printAreaName) {
			sheetName, areas := parsePrintAreaReference(dn.RefersTo)
			if sheetName == "" && dn.Scope != "Workbook" {
				sheetName = dn.Scope
			}
			if sheetName != "" && len(areas) > 0 {
				printAreas[sheetName] = append(printAreas[sheetName], areas...)
			}
		}
	}

	if len(names) == 0 {
		names = nil
	}
	if len(printAreas) == 0 {
		printAreas = nil
	}
	return names, printAreas
}

// parsePrintAreaReference splits a reference such as
// 'Q1 Sales'!$A$1:$D$10,'Q1 Sales'!$F$1:$G$4 into its sheet name and areas.
func parsePrintAreaReference(ref string) (string, []models.PrintArea) {
	var sheetName string
	var areas []models.PrintArea

	for _, part := range strings.Split(ref, ",") {
		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		sheet := strings.TrimSpace(part[:idx])
		if strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") && len(sheet) >= 2 {
			sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
		}
		if sheetName == "" {
			sheetName = sheet
		}
		if area, ok := parseRangeToArea(strings.TrimSpace(part[idx+1:])); ok {
			areas = append(areas, area)
		}
	}

	return sheetName, areas
}

// parseRangeToArea parses $A$1:$D$10 (or a single cell) into a PrintArea.
func parseRangeToArea(rangeStr string) (models.PrintArea, bool) {
	cells := strings.Split(strings.ReplaceAll(rangeStr, "$", ""), ":")
	if len(cells) == 1 {
		cells = append(cells, cells[0])
	}
	if len(cells) != 2 {
		return models.PrintArea{}, false
	}

	c1, r1, err := excelize.CellNameToCoordinates(cells[0])
	if err != nil {
		return models.PrintArea{}, false
	}
	c2, r2, err := excelize.CellNameToCoordinates(cells[1])
	if err != nil {
		return models.PrintArea{}, false
	}
	return models.PrintArea{R1: r1, C1: c1, R2: r2, C2: c2}, true
}
