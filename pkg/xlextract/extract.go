package xlextract

import (
	"errors"
	"path/filepath"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/KBVsent/excel-extract/pkg/xlextract/parser"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Extractor builds sheet snapshots from workbooks. It holds no per-workbook
// state, so one Extractor can be reused across files.
type Extractor struct {
	opts   Options
	logger *zap.Logger
}

// New returns an Extractor. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{opts: opts, logger: logger}
}

// session is the context of one extraction call.
type session struct {
	wb       *Workbook
	date1904 bool

	// mediaScanned guards the archive-scan image fallback; it runs at most
	// once per call.
	mediaScanned bool
	// attached counts the pictures the object model exposes across all
	// sheets, -1 until computed.
	attached int
}

func (e *Extractor) newSession(wb *Workbook) *session {
	return &session{
		wb:       wb,
		date1904: parser.Date1904(wb.File),
		attached: -1,
	}
}

// ExtractWorkbook extracts every sheet of the workbook at path.
func (e *Extractor) ExtractWorkbook(path string) (*models.WorkbookData, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	s := e.newSession(wb)
	names := wb.SheetNames()
	e.logger.Info("extracting workbook", zap.String("path", path), zap.Int("sheets", len(names)))

	namedRanges, printAreas := parser.ExtractNamedRanges(wb.File)
	data := &models.WorkbookData{
		BookName: filepath.Base(path),
		Properties: models.WorkbookProperties{
			SheetNames:         names,
			ActiveSheet:        parser.ActiveSheetName(wb.File),
			SourceFile:         path,
			DocumentProperties: parser.ExtractDocumentProperties(wb.File),
			NamedRanges:        namedRanges,
			PrintAreas:         printAreas,
		},
		Sheets: make(map[string]*models.SheetSnapshot, len(names)),
	}

	for _, name := range names {
		snapshot, err := e.extractSheet(s, name)
		if err != nil {
			return nil, err
		}
		data.Sheets[name] = snapshot
	}
	return data, nil
}

// ExtractSheet extracts a single named sheet. The workbook properties of the
// result only describe that sheet.
func (e *Extractor) ExtractSheet(path, sheetName string) (*models.WorkbookData, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if err := wb.CheckSheet(sheetName); err != nil {
		return nil, err
	}

	s := e.newSession(wb)
	e.logger.Info("extracting sheet", zap.String("path", path), zap.String("sheet", sheetName))
	snapshot, err := e.extractSheet(s, sheetName)
	if err != nil {
		return nil, err
	}
	return singleSheet(path, sheetName, snapshot), nil
}

// ExtractEach extracts every sheet of the workbook separately, calling fn
// with a single-sheet result or the sheet's error. The workbook is opened
// once. Iteration stops when fn returns an error.
func (e *Extractor) ExtractEach(path string, fn func(name string, data *models.WorkbookData, err error) error) error {
	wb, err := Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	s := e.newSession(wb)
	for _, name := range wb.SheetNames() {
		e.logger.Info("extracting sheet", zap.String("path", path), zap.String("sheet", name))
		snapshot, err := e.extractSheet(s, name)
		if err != nil {
			if err := fn(name, nil, err); err != nil {
				return err
			}
			continue
		}
		if err := fn(name, singleSheet(path, name, snapshot), nil); err != nil {
			return err
		}
	}
	return nil
}

func singleSheet(path, name string, snapshot *models.SheetSnapshot) *models.WorkbookData {
	return &models.WorkbookData{
		BookName: filepath.Base(path),
		Properties: models.WorkbookProperties{
			SheetNames:  []string{name},
			ActiveSheet: name,
			SourceFile:  path,
		},
		Sheets: map[string]*models.SheetSnapshot{name: snapshot},
	}
}

// extractSheet builds the snapshot of one sheet. Cell failures abort; every
// other component degrades to an empty collection.
func (e *Extractor) extractSheet(s *session, name string) (*models.SheetSnapshot, error) {
	f := s.wb.File
	log := e.logger.With(zap.String("sheet", name))
	snapshot := models.NewSheetSnapshot(name)

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, NewExtractionError(name, "cells", err)
	}
	bounds := parser.SheetBounds(f, name, rows)
	if e.opts.MaxCells > 0 && bounds.Area() > e.opts.MaxCells {
		log.Warn("sheet dimension exceeds cell budget, visiting populated cells only",
			zap.Int("area", bounds.Area()), zap.Int("max_cells", e.opts.MaxCells))
	}

	ownStyles, err := s.wb.Archive.OwnStyledCells(name)
	if err != nil {
		log.Warn("worksheet part unreadable, using resolved cell styles", zap.Error(err))
		ownStyles = nil
	}
	cells, err := parser.ExtractCells(f, name, rows, bounds, parser.CellWalk{
		MaxCells:   e.opts.MaxCells,
		Date1904:   s.date1904,
		SkipStyles: !e.opts.ShouldIncludeStyles(),
		OwnStyles:  ownStyles,
	})
	if err != nil {
		return nil, NewExtractionError(name, "cells", err)
	}
	snapshot.Cells = cells
	snapshot.Properties = parser.ExtractSheetProperties(f, name, bounds)

	if merged, err := parser.ExtractMergedRanges(f, name); err != nil {
		log.Warn("merged ranges unavailable", zap.Error(err))
	} else {
		snapshot.MergedCells = merged
	}

	snapshot.Hyperlinks = parser.ExtractHyperlinks(f, s.wb.Archive, name)

	if comments, err := parser.ExtractComments(f, name); err != nil {
		log.Warn("comments unavailable", zap.Error(err))
	} else {
		snapshot.Comments = comments
	}

	if e.opts.ShouldIncludeImages() {
		snapshot.Images = e.extractImages(s, name, log)
	}

	if e.opts.ShouldIncludeCharts() {
		charts, err := s.wb.Archive.SheetCharts(name)
		if err != nil {
			log.Warn("charts unavailable", zap.Error(err))
		}
		if charts != nil {
			snapshot.Charts = charts
		}
	}

	log.Debug("sheet extracted",
		zap.Int("cells", len(snapshot.Cells)),
		zap.Int("merged", len(snapshot.MergedCells)),
		zap.Int("hyperlinks", len(snapshot.Hyperlinks)),
		zap.Int("comments", len(snapshot.Comments)),
		zap.Int("images", len(snapshot.Images)),
		zap.Int("charts", len(snapshot.Charts)))
	return snapshot, nil
}

// extractImages runs the attached-image strategy and, when the object model
// exposes no picture anywhere in the workbook, the one-shot media scan.
func (e *Extractor) extractImages(s *session, name string, log *zap.Logger) []models.ImageRecord {
	anchors, err := s.wb.Archive.SheetAnchors(name)
	if err != nil {
		logDrawingError(log, err)
		anchors = nil
	}

	images, err := parser.AttachedImages(s.wb.File, name, anchors)
	if err != nil {
		log.Warn("attached images unavailable", zap.Error(err))
		images = nil
	}
	if len(images) > 0 || s.mediaScanned || e.attachedTotal(s) > 0 {
		if images == nil {
			images = []models.ImageRecord{}
		}
		return images
	}

	s.mediaScanned = true
	wbAnchors, errs := s.wb.Archive.WorkbookAnchors()
	for _, err := range errs {
		logDrawingError(log, err)
	}
	scanned, err := parser.ScanMedia(s.wb.Archive, wbAnchors)
	if err != nil {
		log.Warn("media scan failed", zap.Error(err))
	}
	if len(scanned) == 0 {
		return []models.ImageRecord{}
	}
	log.Warn("images attached from media scan",
		zap.Error(&PartialExtractionWarning{SheetName: name, Reason: "workbook images cannot be attributed to a sheet"}),
		zap.Int("count", len(scanned)))
	return scanned
}

// attachedTotal counts the pictures the object model exposes in the workbook.
func (e *Extractor) attachedTotal(s *session) int {
	if s.attached >= 0 {
		return s.attached
	}
	s.attached = 0
	for _, name := range s.wb.SheetNames() {
		cells, err := s.wb.File.GetPictureCells(name)
		if err == nil {
			s.attached += len(cells)
		}
	}
	return s.attached
}

func logDrawingError(log *zap.Logger, err error) {
	var mde *parser.MalformedDrawingError
	if errors.As(err, &mde) {
		log.Warn("drawing positions unavailable", zap.String("part", mde.Part), zap.Error(mde.Err))
		return
	}
	log.Warn("drawing positions unavailable", zap.Error(err))
}
