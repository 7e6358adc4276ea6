package parser

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// emuPerPixel converts DrawingML extents (914400 EMU per inch) to pixels at 96 DPI.
const emuPerPixel = 9525

func emuToPixels(emu int64) int {
	return int((emu + emuPerPixel/2) / emuPerPixel)
}

// AttachedImages extracts the pictures excelize exposes for a sheet and joins
// them with the sheet's picture anchors. The join is positional: the i-th
// picture takes the i-th picture anchor unless another unused anchor starts
// at the picture's own cell. It is a best-effort correlation.
func AttachedImages(f *excelize.File, sheetName string, anchors []models.Anchor) ([]models.ImageRecord, error) {
	cells, err := f.GetPictureCells(sheetName)
	if err != nil {
		return nil, err
	}

	picAnchors := PictureAnchors(anchors)
	used := make([]bool, len(picAnchors))

	var images []models.ImageRecord
	for _, cell := range cells {
		pics, err := f.GetPictures(sheetName, cell)
		if err != nil {
			return nil, fmt.Errorf("pictures at %s: %w", cell, err)
		}
		for _, pic := range pics {
			idx := len(images)
			format := imageFormat(pic.Extension)
			record := models.ImageRecord{
				Filename: fmt.Sprintf("%s_image_%d.%s", SafeFileName(sheetName), idx+1, format),
				Format:   format,
				Anchor:   cell,
				Data:     pic.File,
			}

			anchor := joinAnchor(picAnchors, used, idx, cell)
			switch {
			case anchor != nil:
				rect := anchor.Rect
				record.Position = &rect
			case cell != "":
				if col, row, err := excelize.CellNameToCoordinates(cell); err == nil {
					record.Position = &models.Rect{FromCol: col - 1, FromRow: row - 1, ToCol: col - 1, ToRow: row - 1}
				}
			}
			record.Width, record.Height = imageSize(pic.File, anchor)
			images = append(images, record)
		}
	}
	return images, nil
}

// joinAnchor picks the anchor for the idx-th picture.
func joinAnchor(anchors []models.Anchor, used []bool, idx int, cell string) *models.Anchor {
	if idx < len(anchors) && !used[idx] && anchorCell(anchors[idx]) == cell {
		used[idx] = true
		return &anchors[idx]
	}
	for i := range anchors {
		if !used[i] && anchorCell(anchors[i]) == cell {
			used[i] = true
			return &anchors[i]
		}
	}
	if idx < len(anchors) && !used[idx] {
		used[idx] = true
		return &anchors[idx]
	}
	return nil
}

func anchorCell(anchor models.Anchor) string {
	cell, err := excelize.CoordinatesToCellName(anchor.Rect.FromCol+1, anchor.Rect.FromRow+1)
	if err != nil {
		return ""
	}
	return cell
}

// ScanMedia extracts every blob of the media folder. Images cannot be
// attributed to a sheet this way; they are joined by index with the picture
// anchors of the whole workbook.
func ScanMedia(a *Archive, anchors []models.Anchor) ([]models.ImageRecord, error) {
	picAnchors := PictureAnchors(anchors)

	var images []models.ImageRecord
	for i, part := range a.MediaParts() {
		data, err := a.ReadPart(part)
		if err != nil {
			return images, err
		}
		format := strings.ToLower(strings.TrimPrefix(path.Ext(part), "."))
		if format == "" {
			format = "png"
		}
		record := models.ImageRecord{
			Filename: fmt.Sprintf("workbook_image_%d.%s", i+1, format),
			Format:   format,
			Source:   part,
			Data:     data,
		}
		var anchor *models.Anchor
		if i < len(picAnchors) {
			anchor = &picAnchors[i]
			rect := anchor.Rect
			record.Position = &rect
		}
		record.Width, record.Height = imageSize(data, anchor)
		images = append(images, record)
	}
	return images, nil
}

// imageSize decodes the pixel dimensions of an image, falling back to the
// extent declared by its anchor.
func imageSize(data []byte, anchor *models.Anchor) (width, height *int) {
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		w, h := cfg.Width, cfg.Height
		return &w, &h
	}
	if anchor != nil && anchor.ExtCX > 0 && anchor.ExtCY > 0 {
		w, h := emuToPixels(anchor.ExtCX), emuToPixels(anchor.ExtCY)
		return &w, &h
	}
	return nil, nil
}

func imageFormat(ext string) string {
	format := strings.ToLower(strings.TrimPrefix(ext, "."))
	switch format {
	case "":
		return "png"
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return format
}

// SafeFileName replaces characters that are not portable in file names.
func SafeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
