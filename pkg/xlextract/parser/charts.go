package parser

import (
	"bytes"
	"encoding/xml"
	"path"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      "Line",
	"line3DChart":    "3DLine",
	"barChart":       "Bar",
	"bar3DChart":     "3DBar",
	"areaChart":      "Area",
	"area3DChart":    "3DArea",
	"pieChart":       "Pie",
	"pie3DChart":     "3DPie",
	"doughnutChart":  "Doughnut",
	"scatterChart":   "XYScatter",
	"bubbleChart":    "Bubble",
	"radarChart":     "Radar",
	"surfaceChart":   "Surface",
	"surface3DChart": "3DSurface",
	"stockChart":     "Stock",
	"ofPieChart":     "PieOfPie",
}

// chartTitle mirrors c:title down to the text runs of its rich body.
type chartTitle struct {
	Tx *struct {
		Rich *struct {
			P []struct {
				R []struct {
					T string `xml:"t"`
				} `xml:"r"`
			} `xml:"p"`
		} `xml:"rich"`
	} `xml:"tx"`
}

// text concatenates the title runs; nil when the structure does not match.
func (t *chartTitle) text() *string {
	if t.Tx == nil || t.Tx.Rich == nil {
		return nil
	}
	var sb strings.Builder
	found := false
	for _, p := range t.Tx.Rich.P {
		for _, r := range p.R {
			sb.WriteString(r.T)
			found = true
		}
	}
	if !found {
		return nil
	}
	title := sb.String()
	return &title
}

// SheetCharts extracts the charts anchored in a sheet's drawing.
func (a *Archive) SheetCharts(sheetName string) ([]models.ChartRecord, error) {
	sheetPart := a.SheetPart(sheetName)
	if sheetPart == "" {
		return nil, nil
	}
	drawingPart := a.DrawingPart(sheetPart)
	if drawingPart == "" {
		return nil, nil
	}
	data, err := a.ReadPart(drawingPart)
	if err != nil || data == nil {
		return nil, err
	}
	anchors, err := ParseAnchors(drawingPart, data)
	if err != nil {
		return nil, err
	}

	targets := make(map[string]string)
	for _, rel := range a.Relationships(drawingPart) {
		if strings.HasSuffix(rel.Type, "/chart") {
			targets[rel.ID] = resolveRelativePath(rel.Target, path.Dir(drawingPart))
		}
	}

	var charts []models.ChartRecord
	for _, anchor := range anchors {
		if anchor.Content != "chart" {
			continue
		}
		chartPart, ok := targets[anchor.RelID]
		if !ok {
			continue
		}
		chartXML, err := a.ReadPart(chartPart)
		if err != nil || chartXML == nil {
			continue
		}
		kind, title := parseChartXML(chartXML)
		rect := anchor.Rect
		charts = append(charts, models.ChartRecord{
			Name:     anchor.Name,
			Type:     kind,
			Title:    title,
			Position: &rect,
		})
	}
	return charts, nil
}

// parseChartXML returns the chart kind and its title.
func parseChartXML(data []byte) (chartType string, title *string) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "chart" {
			chartType, title = parseChartElement(decoder)
			break
		}
	}

	if chartType == "" {
		chartType = "unknown"
	}
	return chartType, title
}

// parseChartElement parses the c:chart element.
func parseChartElement(decoder *xml.Decoder) (chartType string, title *string) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "title":
				var ct chartTitle
				if err := decoder.DecodeElement(&ct, &t); err == nil {
					title = ct.text()
				}
				depth--
			case "plotArea":
				chartType = parsePlotArea(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}

// parsePlotArea returns the first chart type element of the plot area.
func parsePlotArea(decoder *xml.Decoder) (chartType string) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if ct, ok := ChartTypeMap[t.Name.Local]; ok && chartType == "" {
				chartType = ct
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}
