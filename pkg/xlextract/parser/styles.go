package parser

import (
	"fmt"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
)

// builtinNumFmts holds the common built-in number format ids.
var builtinNumFmts = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

// borderStyles maps excelize border style indexes to SpreadsheetML names.
var borderStyles = map[int]string{
	1:  "thin",
	2:  "medium",
	3:  "dashed",
	4:  "dotted",
	5:  "thick",
	6:  "double",
	7:  "hair",
	8:  "mediumDashed",
	9:  "dashDot",
	10: "mediumDashDot",
	11: "dashDotDot",
	12: "mediumDashDotDot",
	13: "slantDashDot",
}

// fillPatterns maps excelize pattern indexes to SpreadsheetML names.
var fillPatterns = map[int]string{
	1:  "solid",
	2:  "mediumGray",
	3:  "darkGray",
	4:  "lightGray",
	5:  "darkHorizontal",
	6:  "darkVertical",
	7:  "darkDown",
	8:  "darkUp",
	9:  "darkGrid",
	10: "darkTrellis",
	11: "lightHorizontal",
	12: "lightVertical",
	13: "lightDown",
	14: "lightUp",
	15: "lightGrid",
	16: "lightTrellis",
	17: "gray125",
	18: "gray0625",
}

// NumberFormat returns the format string declared by a style.
func NumberFormat(style *excelize.Style) string {
	if style == nil {
		return "General"
	}
	if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
		return *style.CustomNumFmt
	}
	if code, ok := builtinNumFmts[style.NumFmt]; ok {
		return code
	}
	return fmt.Sprintf("builtin:%d", style.NumFmt)
}

// IsDateFormat reports whether a number format renders dates or times.
// Quoted literals, escaped characters and bracketed sections are ignored.
func IsDateFormat(format string) bool {
	switch format {
	case "", "General", "@":
		return false
	}
	inQuote, inBracket := false, false
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '\\' || c == '_' || c == '*':
			i++
		case c == '[':
			inBracket = true
			if strings.HasPrefix(format[i:], "[h]") || strings.HasPrefix(format[i:], "[hh]") ||
				strings.HasPrefix(format[i:], "[m]") || strings.HasPrefix(format[i:], "[mm]") ||
				strings.HasPrefix(format[i:], "[s]") || strings.HasPrefix(format[i:], "[ss]") {
				return true
			}
		case c == ']':
			inBracket = false
		case inBracket:
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

// convertStyle translates an excelize style, keeping only attributes that are set.
func convertStyle(style *excelize.Style) *models.CellStyle {
	result := &models.CellStyle{}

	if font := style.Font; font != nil {
		result.Font = &models.Font{
			Name:      font.Family,
			Size:      font.Size,
			Bold:      font.Bold,
			Italic:    font.Italic,
			Underline: font.Underline,
			Color:     font.Color,
		}
	}

	if fill := style.Fill; fill.Type != "" && (fill.Type == "gradient" || fill.Pattern != 0) {
		f := &models.Fill{FillType: fill.Type}
		if fill.Type == "pattern" {
			if name, ok := fillPatterns[fill.Pattern]; ok {
				f.FillType = name
			}
		}
		if len(fill.Color) > 0 {
			f.StartColor = fill.Color[0]
		}
		if len(fill.Color) > 1 {
			f.EndColor = fill.Color[1]
		}
		result.Fill = f
	}

	if al := style.Alignment; al != nil && (al.Horizontal != "" || al.Vertical != "" || al.WrapText || al.TextRotation != 0) {
		result.Alignment = &models.Alignment{
			Horizontal:   al.Horizontal,
			Vertical:     al.Vertical,
			WrapText:     al.WrapText,
			TextRotation: al.TextRotation,
		}
	}

	var border models.Border
	hasBorder := false
	for _, b := range style.Border {
		name, ok := borderStyles[b.Style]
		if !ok {
			continue
		}
		switch b.Type {
		case "left":
			border.Left = name
		case "right":
			border.Right = name
		case "top":
			border.Top = name
		case "bottom":
			border.Bottom = name
		default:
			continue
		}
		hasBorder = true
	}
	if hasBorder {
		result.Border = &border
	}

	return result
}
