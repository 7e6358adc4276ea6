package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
)

// WriteImages writes the blob of every extracted image into dir under its
// assigned filename and returns the number of files written.
func WriteImages(dir string, wb *models.WorkbookData) (int, error) {
	written := 0
	for _, name := range wb.OrderedSheets() {
		for _, img := range wb.Sheets[name].Images {
			if len(img.Data) == 0 {
				continue
			}
			if written == 0 {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return 0, err
				}
			}
			target := filepath.Join(dir, filepath.Base(img.Filename))
			if err := os.WriteFile(target, img.Data, 0644); err != nil {
				return written, fmt.Errorf("write image %s: %w", img.Filename, err)
			}
			written++
		}
	}
	return written, nil
}
