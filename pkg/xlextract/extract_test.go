package xlextract

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func cellKeys(cells map[string]models.CellRecord) []string {
	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	return keys
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 6))))
	return buf.Bytes()
}

// createTestWorkbook builds a two-sheet workbook covering every extracted component.
func createTestWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	require.NoError(t, f.SetCellValue("Data", "A1", "Title"))
	require.NoError(t, f.MergeCell("Data", "A1", "B1"))
	require.NoError(t, f.SetCellValue("Data", "A5", 42))
	require.NoError(t, f.SetCellValue("Data", "B5", "a|b\nc"))
	require.NoError(t, f.SetCellHyperLink("Data", "A5", "https://example.com/answer", "External"))
	require.NoError(t, f.AddComment("Data", excelize.Comment{
		Cell:      "B5",
		Author:    "Ann",
		Paragraph: []excelize.RichTextRun{{Text: "pipes and breaks"}},
	}))
	require.NoError(t, f.AddPictureFromBytes("Data", "A3", &excelize.Picture{
		Extension: ".png",
		File:      pngBytes(t),
		Format:    &excelize.GraphicOptions{},
	}))

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "plain"))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExtractWorkbook(t *testing.T) {
	path := createTestWorkbook(t)

	wb, err := New(DefaultOptions(), nil).ExtractWorkbook(path)
	require.NoError(t, err)

	assert.Equal(t, "book.xlsx", wb.BookName)
	assert.Equal(t, []string{"Data", "Notes"}, wb.Properties.SheetNames)
	assert.Equal(t, []string{"Data", "Notes"}, wb.OrderedSheets())
	assert.Equal(t, path, wb.Properties.SourceFile)
	require.Len(t, wb.Sheets, 2)

	data := wb.Sheets["Data"]
	assert.Equal(t, "Title", data.Cells["A1"].Value)
	assert.Equal(t, int64(42), data.Cells["A5"].Value)
	assert.Equal(t, "a|b\nc", data.Cells["B5"].Value)
	assert.Equal(t, []string{"A1:B1"}, data.MergedCells)
	assert.Equal(t, "https://example.com/answer", data.Hyperlinks["A5"].URL)
	assert.Equal(t, "Ann", data.Comments["B5"].Author)
	assert.Equal(t, 5, data.Properties.MaxRow)
	assert.Equal(t, 2, data.Properties.MaxColumn)

	require.Len(t, data.Images, 1)
	img := data.Images[0]
	assert.Equal(t, "Data_image_1.png", img.Filename)
	require.NotNil(t, img.Position)
	assert.Equal(t, 3, img.Position.DisplayRow())
	assert.Equal(t, 8, *img.Width)
	assert.Equal(t, 6, *img.Height)

	notes := wb.Sheets["Notes"]
	assert.Equal(t, "plain", notes.Cells["A1"].Value)
	assert.Empty(t, notes.Images)
	assert.Empty(t, notes.Charts)
	assert.NotNil(t, notes.MergedCells)
}

func TestExtractSheet(t *testing.T) {
	path := createTestWorkbook(t)

	wb, err := New(DefaultOptions(), nil).ExtractSheet(path, "Notes")
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes"}, wb.Properties.SheetNames)
	assert.Equal(t, "Notes", wb.Properties.ActiveSheet)
	require.Len(t, wb.Sheets, 1)
	assert.Contains(t, wb.Sheets, "Notes")
}

func TestExtractSheetNotFound(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	path := filepath.Join(t.TempDir(), "only-data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := New(DefaultOptions(), nil).ExtractSheet(path, "Sheet1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Data")

	var notFound *SheetNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Sheet1", notFound.Name)
	assert.Equal(t, []string{"Data"}, notFound.Available)
}

func TestExtractLightMode(t *testing.T) {
	path := createTestWorkbook(t)
	opts := DefaultOptions()
	opts.Mode = ModeLight

	wb, err := New(opts, nil).ExtractWorkbook(path)
	require.NoError(t, err)
	data := wb.Sheets["Data"]
	assert.Empty(t, data.Images)
	assert.Empty(t, data.Charts)
	for key, cell := range data.Cells {
		assert.Nil(t, cell.Style, key)
		assert.NotNil(t, cell.Value, key)
	}
	assert.Len(t, data.Comments, 1)
}

func TestExtractSparsity(t *testing.T) {
	path := createTestWorkbook(t)

	wb, err := New(DefaultOptions(), nil).ExtractWorkbook(path)
	require.NoError(t, err)
	for name, sheet := range wb.Sheets {
		for key, cell := range sheet.Cells {
			if cell.Value == nil {
				assert.False(t, cell.Style.IsZero() && cell.NumberFormat == "General",
					"%s!%s is empty and unstyled", name, key)
			}
		}
	}
}

func TestExtractErrors(t *testing.T) {
	ex := New(DefaultOptions(), nil)

	_, err := ex.ExtractWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	notZip := filepath.Join(t.TempDir(), "plain.xlsx")
	require.NoError(t, os.WriteFile(notZip, []byte("name,value\na,1\n"), 0644))
	_, err = ex.ExtractWorkbook(notZip)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ListSheets(notZip)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	csv := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(csv, []byte("a,b\n"), 0644))
	_, err = ex.ExtractSheet(csv, "data")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestListSheets(t *testing.T) {
	names, err := ListSheets(createTestWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Notes"}, names)
}

func TestExtractEach(t *testing.T) {
	path := createTestWorkbook(t)

	var seen []string
	err := New(DefaultOptions(), nil).ExtractEach(path, func(name string, data *models.WorkbookData, err error) error {
		require.NoError(t, err)
		assert.Equal(t, []string{name}, data.Properties.SheetNames)
		seen = append(seen, name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Notes"}, seen)

	stop := errors.New("stop")
	err = New(DefaultOptions(), nil).ExtractEach(path, func(string, *models.WorkbookData, error) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
}

func TestExtractorReuse(t *testing.T) {
	ex := New(DefaultOptions(), nil)
	first, err := ex.ExtractWorkbook(createTestWorkbook(t))
	require.NoError(t, err)
	second, err := ex.ExtractWorkbook(createTestWorkbook(t))
	require.NoError(t, err)

	assert.Equal(t, len(first.Sheets["Data"].Images), len(second.Sheets["Data"].Images))
}

func TestExtractLogsSheets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	_, err := New(DefaultOptions(), zap.New(core)).ExtractWorkbook(createTestWorkbook(t))
	require.NoError(t, err)

	entries := logs.FilterMessage("extracting workbook").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["sheets"])
}

func TestExtractIgnoresInheritedStyles(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "left"))
	require.NoError(t, f.SetCellValue("Sheet1", "C3", "right"))
	fill, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetColStyle("Sheet1", "B", fill))
	require.NoError(t, f.SetRowStyle("Sheet1", 2, 2, fill))
	require.NoError(t, f.SetCellStyle("Sheet1", "C1", "C1", fill))

	path := filepath.Join(t.TempDir(), "styled.xlsx")
	require.NoError(t, f.SaveAs(path))

	wb, err := New(DefaultOptions(), nil).ExtractWorkbook(path)
	require.NoError(t, err)

	cells := wb.Sheets["Sheet1"].Cells
	assert.ElementsMatch(t, []string{"A1", "C1", "C3"}, cellKeys(cells))
	require.NotNil(t, cells["C1"].Style)
	assert.Nil(t, cells["C1"].Value)
}

// withOrphanMedia copies the package at path and adds a png to xl/media that
// no drawing references.
func withOrphanMedia(t *testing.T, path string) string {
	t.Helper()
	src, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer src.Close()

	target := filepath.Join(t.TempDir(), "orphan.xlsx")
	out, err := os.Create(target)
	require.NoError(t, err)
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, file := range src.File {
		w, err := zw.Create(file.Name)
		require.NoError(t, err)
		rc, err := file.Open()
		require.NoError(t, err)
		_, err = io.Copy(w, rc)
		rc.Close()
		require.NoError(t, err)
	}
	w, err := zw.Create("xl/media/orphan.png")
	require.NoError(t, err)
	_, err = w.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return target
}

func orphanWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	_, err := f.NewSheet("Two")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Two", "A1", "second"))

	path := filepath.Join(t.TempDir(), "plain.xlsx")
	require.NoError(t, f.SaveAs(path))
	return withOrphanMedia(t, path)
}

func TestMediaScanFallback(t *testing.T) {
	path := orphanWorkbook(t)
	core, logs := observer.New(zap.WarnLevel)
	ex := New(DefaultOptions(), zap.New(core))

	for i := 0; i < 2; i++ {
		wb, err := ex.ExtractWorkbook(path)
		require.NoError(t, err)

		first := wb.Sheets["Sheet1"].Images
		require.Len(t, first, 1)
		assert.Equal(t, "workbook_image_1.png", first[0].Filename)
		assert.Equal(t, "xl/media/orphan.png", first[0].Source)
		assert.Nil(t, first[0].Position)
		assert.NotEmpty(t, first[0].Data)

		assert.NotNil(t, wb.Sheets["Two"].Images)
		assert.Empty(t, wb.Sheets["Two"].Images)
	}
	assert.Equal(t, 2, logs.FilterMessage("images attached from media scan").Len())

	two, err := ex.ExtractSheet(path, "Two")
	require.NoError(t, err)
	assert.Len(t, two.Sheets["Two"].Images, 1)

	counts := map[string]int{}
	err = ex.ExtractEach(path, func(name string, data *models.WorkbookData, err error) error {
		require.NoError(t, err)
		counts[name] = len(data.Sheets[name].Images)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sheet1": 1, "Two": 0}, counts)
}

func TestMediaScanSkippedWhenPicturesAttached(t *testing.T) {
	wb, err := New(DefaultOptions(), nil).ExtractWorkbook(withOrphanMedia(t, createTestWorkbook(t)))
	require.NoError(t, err)

	assert.Len(t, wb.Sheets["Data"].Images, 1)
	assert.Empty(t, wb.Sheets["Notes"].Images)
}
