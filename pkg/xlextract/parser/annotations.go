package parser

import (
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
)

// ExtractMergedRanges returns the merged ranges of a sheet in file order.
func ExtractMergedRanges(f *excelize.File, sheetName string) ([]string, error) {
	merged, err := f.GetMergeCells(sheetName)
	if err != nil {
		return nil, err
	}
	ranges := make([]string, 0, len(merged))
	for _, mc := range merged {
		ranges = append(ranges, mc.GetStartAxis()+":"+mc.GetEndAxis())
	}
	return ranges, nil
}

// ExtractComments returns the comments of a sheet keyed by cell. The text is
// the plain comment text followed by its rich-text runs.
func ExtractComments(f *excelize.File, sheetName string) (map[string]models.Comment, error) {
	comments, err := f.GetComments(sheetName)
	if err != nil {
		return nil, err
	}
	result := make(map[string]models.Comment, len(comments))
	for _, c := range comments {
		var text strings.Builder
		text.WriteString(c.Text)
		for _, run := range c.Paragraph {
			text.WriteString(run.Text)
		}
		result[c.Cell] = models.Comment{
			Text:   text.String(),
			Author: c.Author,
		}
	}
	return result, nil
}
