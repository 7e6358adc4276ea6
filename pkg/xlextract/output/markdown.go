package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/xuri/excelize/v2"
)

// ToMarkdown renders the workbook as one Markdown document: a heading for the
// book, then one section per sheet in workbook order.
func ToMarkdown(wb *models.WorkbookData) string {
	d := &document{}
	d.add("# "+wb.BookName, "")
	for _, name := range wb.OrderedSheets() {
		d.sheet(name, wb.Sheets[name])
	}
	return d.String()
}

// SheetToMarkdown renders a single sheet under the book heading.
func SheetToMarkdown(bookName, name string, sheet *models.SheetSnapshot) string {
	d := &document{}
	d.add("# "+bookName, "")
	d.sheet(name, sheet)
	return d.String()
}

type document struct {
	lines []string
}

func (d *document) add(lines ...string) {
	d.lines = append(d.lines, lines...)
}

func (d *document) String() string {
	return strings.Join(d.lines, "\n")
}

// imageBlock is one image reference; label is empty for unpositioned images.
type imageBlock struct {
	label    string
	filename string
}

func (d *document) image(b imageBlock) {
	if b.label != "" {
		d.add(b.label, "")
	}
	d.add("![Image]("+b.filename+")", "")
}

// coord is a parsed cell coordinate, both parts 1-based.
type coord struct {
	key      string
	col, row int
}

func parseCoords(keys []string) []coord {
	coords := make([]coord, 0, len(keys))
	for _, key := range keys {
		col, row, err := excelize.CellNameToCoordinates(key)
		if err != nil {
			continue
		}
		coords = append(coords, coord{key: key, col: col, row: row})
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].row != coords[j].row {
			return coords[i].row < coords[j].row
		}
		return coords[i].col < coords[j].col
	})
	return coords
}

func (d *document) sheet(name string, sheet *models.SheetSnapshot) {
	d.add("## "+name, "")
	if sheet == nil {
		return
	}

	groups, loose := groupImages(sheet.Images)
	cellKeys := make([]string, 0, len(sheet.Cells))
	for key := range sheet.Cells {
		cellKeys = append(cellKeys, key)
	}
	coords := parseCoords(cellKeys)

	if len(coords) == 0 {
		for _, img := range sheet.Images {
			d.image(blockFor(img))
		}
	} else {
		d.table(sheet.Cells, coords, groups)
		for _, b := range loose {
			d.image(b)
		}
	}

	if len(sheet.Hyperlinks) > 0 {
		d.add("### Hyperlinks", "")
		for _, c := range parseCoords(keysOf(sheet.Hyperlinks)) {
			link := sheet.Hyperlinks[c.key]
			d.add(fmt.Sprintf("- **%s**: [%s](%s)", c.key, link.Display, link.URL))
		}
		d.add("")
	}

	if len(sheet.Comments) > 0 {
		d.add("### Comments", "")
		for _, c := range parseCoords(keysOf(sheet.Comments)) {
			comment := sheet.Comments[c.key]
			if comment.Author == "" {
				d.add(fmt.Sprintf("- **%s**: %s", c.key, flatten(comment.Text)))
				continue
			}
			d.add(fmt.Sprintf("- **%s** (%s): %s", c.key, comment.Author, flatten(comment.Text)))
		}
		d.add("")
	}
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// table writes the cell grid, interrupting it for the image groups that fall
// between data rows. Each group is written exactly once.
func (d *document) table(cells map[string]models.CellRecord, coords []coord, groups map[int][]imageBlock) {
	colSet := make(map[int]bool)
	rows := make(map[int]map[int]string)
	var rowNums []int
	for _, c := range coords {
		colSet[c.col] = true
		if rows[c.row] == nil {
			rows[c.row] = make(map[int]string)
			rowNums = append(rowNums, c.row)
		}
		rows[c.row][c.col] = FormatValue(cells[c.key].Value)
	}
	cols := make([]int, 0, len(colSet))
	for col := range colSet {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	letters := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, col := range cols {
		letters[i], _ = excelize.ColumnNumberToName(col)
		rule[i] = "---"
	}

	groupKeys := make([]int, 0, len(groups))
	for key := range groups {
		groupKeys = append(groupKeys, key)
	}
	sort.Ints(groupKeys)
	emitted := make(map[int]bool, len(groups))

	open := false
	closeTable := func() {
		if open {
			d.add("")
			open = false
		}
	}
	emit := func(key int) {
		if emitted[key] {
			return
		}
		emitted[key] = true
		closeTable()
		for _, b := range groups[key] {
			d.image(b)
		}
	}

	prev := 0
	for _, r := range rowNums {
		for _, key := range groupKeys {
			if key > prev && key <= r {
				emit(key)
			}
		}
		if !open {
			d.add("| "+strings.Join(letters, " | ")+" |", "|"+strings.Join(rule, "|")+"|")
			open = true
		}
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = rows[r][col]
		}
		d.add("| " + strings.Join(values, " | ") + " |")
		if _, ok := groups[r+1]; ok {
			emit(r + 1)
		}
		prev = r
	}
	closeTable()

	for _, key := range groupKeys {
		emit(key)
	}
}

// groupImages groups positioned images by display row. Images without a
// position are returned separately, in order.
func groupImages(images []models.ImageRecord) (map[int][]imageBlock, []imageBlock) {
	groups := make(map[int][]imageBlock)
	var loose []imageBlock
	for _, img := range images {
		b := blockFor(img)
		if img.Position == nil {
			loose = append(loose, b)
			continue
		}
		row := img.Position.DisplayRow()
		groups[row] = append(groups[row], b)
	}
	return groups, loose
}

func blockFor(img models.ImageRecord) imageBlock {
	b := imageBlock{filename: img.Filename}
	if p := img.Position; p != nil {
		b.label = fmt.Sprintf("**Image at %s to %s:**", cellName(p.FromCol, p.FromRow), cellName(p.ToCol, p.ToRow))
	}
	return b
}

// cellName formats 0-based grid coordinates as a cell reference.
func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "?"
	}
	return name
}

// FormatValue returns the Markdown table text of a cell value.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return flatten(strings.ReplaceAll(val, "|", `\|`))
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatFloat(val)
	case time.Time:
		return strings.TrimSuffix(val.String(), " +0000 UTC")
	default:
		return flatten(strings.ReplaceAll(fmt.Sprint(val), "|", `\|`))
	}
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// flatten collapses line breaks to single spaces.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
