package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads every sheet of an xlsx workbook into a Table. The
// first non-empty row of a sheet is its header; sheets without at least
// one data row under the header are skipped. The source names the
// workbook in table ids and provenance fields.
func ReadWorkbook(source string, r io.Reader) ([]Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", source, err)
	}
	defer f.Close()

	var tables []Table
	for i, sheet := range f.GetSheetList() {
		raw, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		grid := cleanGrid(raw)
		if len(grid) < 2 {
			continue
		}

		id := fmt.Sprintf("%s#%s", source, sheet)
		tables = append(tables, New(id, source, i+1, grid[0], grid[1:]))
	}
	return tables, nil
}

// cleanGrid trims cells, drops rows with no content, and pads ragged
// rows to the header width. Excel readers omit trailing empty cells.
func cleanGrid(raw [][]string) [][]string {
	width := 0
	for _, row := range raw {
		if len(row) > width {
			width = len(row)
		}
	}

	var grid [][]string
	for _, row := range raw {
		cleaned := make([]string, width)
		empty := true
		for i, cell := range row {
			cleaned[i] = strings.Join(strings.Fields(cell), " ")
			if cleaned[i] != "" {
				empty = false
			}
		}
		if !empty {
			grid = append(grid, cleaned)
		}
	}
	return grid
}
