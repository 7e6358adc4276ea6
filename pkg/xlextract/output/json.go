// Package output serializes extracted workbooks to JSON, Markdown and text.
package output

import (
	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	jsoniter "github.com/json-iterator/go"
)

// json sorts map keys, so equal snapshots serialize to equal bytes.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON serializes the workbook data to JSON.
func ToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return marshal(wb, pretty)
}

// SheetToJSON serializes a single sheet snapshot to JSON.
func SheetToJSON(sheet *models.SheetSnapshot, pretty bool) ([]byte, error) {
	return marshal(sheet, pretty)
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
