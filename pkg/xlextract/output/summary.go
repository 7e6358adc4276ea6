package output

import (
	"fmt"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/dustin/go-humanize"
)

var rule = strings.Repeat("=", 60)

// Summary returns the plain-text extraction summary of a workbook.
func Summary(wb *models.WorkbookData) string {
	var sb strings.Builder
	props := wb.Properties
	source := props.SourceFile
	if source == "" {
		source = wb.BookName
	}
	active := props.ActiveSheet
	if active == "" {
		active = "N/A"
	}
	names := wb.OrderedSheets()

	fmt.Fprintf(&sb, "\n%s\nEXTRACTION SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(&sb, "\nWorkbook: %s\n", source)
	fmt.Fprintf(&sb, "Active Sheet: %s\n", active)
	fmt.Fprintf(&sb, "Total Sheets: %d\n", len(names))

	for _, name := range names {
		sheet := wb.Sheets[name]
		fmt.Fprintf(&sb, "\n--- Sheet: %s ---\n", name)
		fmt.Fprintf(&sb, "  Dimensions: %d rows × %d columns\n", sheet.Properties.MaxRow, sheet.Properties.MaxColumn)
		fmt.Fprintf(&sb, "  Cells with data: %d\n", len(sheet.Cells))
		fmt.Fprintf(&sb, "  Merged cells: %d\n", len(sheet.MergedCells))
		fmt.Fprintf(&sb, "  Hyperlinks: %d\n", len(sheet.Hyperlinks))
		fmt.Fprintf(&sb, "  Comments: %d\n", len(sheet.Comments))
		if size := imageBytes(sheet.Images); size > 0 {
			fmt.Fprintf(&sb, "  Images: %d (%s)\n", len(sheet.Images), humanize.Bytes(size))
		} else {
			fmt.Fprintf(&sb, "  Images: %d\n", len(sheet.Images))
		}
		fmt.Fprintf(&sb, "  Charts: %d\n", len(sheet.Charts))
	}

	fmt.Fprintf(&sb, "\n%s", rule)
	return sb.String()
}

func imageBytes(images []models.ImageRecord) uint64 {
	var n uint64
	for _, img := range images {
		n += uint64(len(img.Data))
	}
	return n
}
