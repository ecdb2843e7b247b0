package workbook

import (
	"errors"
	"fmt"
	"os"

	"github.com/extrame/xls"
)

const (
	// legacyCharset is the charset handed to the BIFF decoder for
	// pre-Unicode workbooks.
	legacyCharset = "utf-8"

	// maxLegacyCols is the BIFF8 column limit.
	maxLegacyCols = 256
)

// errNoWorkbookStream is returned for compound files without a Workbook
// or Book stream.
var errNoWorkbookStream = errors.New("no workbook stream")

// ReadLegacy returns every row of the first sheet of a legacy .xls
// workbook, in order. Blank rows inside the sheet come back empty so row
// positions are preserved; trailing blank rows are dropped. Cell values
// are returned as their displayed text.
func ReadLegacy(path string) (rows [][]string, err error) {
	// The BIFF decoder panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("decode legacy workbook %s: %v", path, r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open legacy workbook %s: %w", path, err)
	}
	defer f.Close()

	wb, err := xls.OpenReader(f, legacyCharset)
	if err != nil {
		return nil, fmt.Errorf("open legacy workbook %s: %w", path, err)
	}
	if wb == nil {
		return nil, fmt.Errorf("open legacy workbook %s: %w", path, errNoWorkbookStream)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("open legacy workbook %s: %w", path, ErrNoSheet)
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, legacyRow(sheet, i))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// legacyRow returns the cells of row i up to the last non-empty one.
//
// WorkSheet.Row dereferences the row record without checking it exists,
// and the decoder stores no record for blank rows, so a missing row is
// recovered into nil. Row.LastCol is zero for rows holding cells but no
// ROW record, so every column is scanned.
func legacyRow(sheet *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := sheet.Row(i)
	width := 0
	cells = make([]string, maxLegacyCols)
	for j := range cells {
		cells[j] = row.Col(j)
		if cells[j] != "" {
			width = j + 1
		}
	}
	if width == 0 {
		return nil
	}
	return cells[:width]
}

// FromRows builds a new single-sheet workbook holding rows in order.
// Empty strings become empty cells.
func FromRows(sheet string, rows [][]string) (*Book, error) {
	b, err := New(sheet)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if v != "" {
				cells[j] = v
			}
		}
		if err := b.Append(cells); err != nil {
			b.Close()
			return nil, fmt.Errorf("copy row %d: %w", i+1, err)
		}
	}
	return b, nil
}
