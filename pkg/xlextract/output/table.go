package output

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/olekukonko/tablewriter"
)

// Grid cleaning modes of the simple table path.
const (
	CleanNone       = "none"
	CleanMinimal    = "minimal"
	CleanAuto       = "auto"
	CleanAggressive = "aggressive"
)

// SheetGrid is the formatted cell text of one sheet, row-major.
type SheetGrid struct {
	Name string
	Rows [][]string
}

// CleanGrid pads the grid to a rectangle and removes empty rows and columns
// according to mode. The aggressive mode also drops sparse rows.
func CleanGrid(rows [][]string, mode string) [][]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	grid := make([][]string, 0, len(rows))
	for _, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		grid = append(grid, padded)
	}
	if mode == CleanNone {
		return grid
	}

	grid = dropEmptyRows(grid)
	grid = dropEmptyColumns(grid)

	if mode == CleanAggressive && len(grid) > 0 {
		cols := len(grid[0])
		threshold := min(3, float64(cols)*0.3)
		kept := grid[:0]
		for _, row := range grid {
			if float64(filled(row)) >= threshold {
				kept = append(kept, row)
			}
		}
		grid = kept
	}
	return grid
}

func filled(row []string) int {
	n := 0
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func dropEmptyRows(grid [][]string) [][]string {
	kept := make([][]string, 0, len(grid))
	for _, row := range grid {
		if filled(row) > 0 {
			kept = append(kept, row)
		}
	}
	return kept
}

func dropEmptyColumns(grid [][]string) [][]string {
	if len(grid) == 0 {
		return grid
	}
	var keep []int
	for col := range grid[0] {
		for _, row := range grid {
			if strings.TrimSpace(row[col]) != "" {
				keep = append(keep, col)
				break
			}
		}
	}
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = make([]string, len(keep))
		for j, col := range keep {
			out[i][j] = row[col]
		}
	}
	return out
}

// TableMarkdown renders a cleaned grid as a Markdown pipe table. The first
// row becomes the header when none of its cells is empty; otherwise the
// header is the column index.
func TableMarkdown(grid [][]string) string {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return ""
	}
	header := grid[0]
	body := grid[1:]
	if filled(header) != len(header) {
		header = make([]string, len(grid[0]))
		for i := range header {
			header[i] = strconv.Itoa(i)
		}
		body = grid
	}

	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(escapeRow(header))
	for _, row := range body {
		table.Append(escapeRow(row))
	}
	table.Render()
	return sb.String()
}

func escapeRow(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = flatten(strings.ReplaceAll(v, "|", `\|`))
	}
	return out
}

// TablesToMarkdown renders every non-empty sheet grid as a "## sheet"
// section of one document.
func TablesToMarkdown(grids []SheetGrid, mode string) string {
	var sb strings.Builder
	for _, g := range grids {
		table := TableMarkdown(CleanGrid(g.Rows, mode))
		if table == "" {
			continue
		}
		sb.WriteString("## " + g.Name + "\n\n")
		sb.WriteString(table)
		sb.WriteString("\n")
	}
	return sb.String()
}

// SheetTableMarkdown renders one sheet grid as a standalone document, or ""
// when nothing remains after cleaning.
func SheetTableMarkdown(g SheetGrid, mode string) string {
	table := TableMarkdown(CleanGrid(g.Rows, mode))
	if table == "" {
		return ""
	}
	return "# " + g.Name + "\n\n" + table
}

// TableFileName derives a portable Markdown file name from a sheet name.
func TableFileName(sheet string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, sheet)
	safe = strings.ReplaceAll(strings.TrimSpace(safe), " ", "_")
	if safe == "" {
		safe = "sheet"
	}
	return safe + ".md"
}
