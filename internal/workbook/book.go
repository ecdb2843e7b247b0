package workbook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates in a new file.
const defaultSheet = "Sheet1"

// ErrNoSheet is returned when a workbook has no sheet to append to.
var ErrNoSheet = errors.New("workbook has no sheets")

// Book is an in-memory .xlsx workbook with one append target sheet.
//
// Book is not safe for concurrent use.
type Book struct {
	file  *excelize.File
	sheet string
	next  int // 1-based row number of the next append
}

// New creates an empty workbook with a single sheet named sheet.
func New(sheet string) (*Book, error) {
	f := excelize.NewFile()
	if sheet != "" && sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet to %q: %w", sheet, err)
		}
	} else {
		sheet = defaultSheet
	}
	return &Book{file: f, sheet: sheet, next: 1}, nil
}

// Open reads the workbook at path and selects its active sheet as the
// append target. New rows go strictly after the last row holding data.
func Open(path string) (*Book, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			f.Close()
			return nil, fmt.Errorf("open workbook %s: %w", path, ErrNoSheet)
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}

	return &Book{file: f, sheet: sheet, next: len(rows) + 1}, nil
}

// Sheet returns the name of the append target sheet.
func (b *Book) Sheet() string {
	return b.sheet
}

// Len returns the number of rows on the target sheet, counting appended
// rows that have not been saved yet.
func (b *Book) Len() int {
	return b.next - 1
}

// Rows returns the target sheet's cell text, row by row. Trailing empty
// rows and cells are omitted.
func (b *Book) Rows() ([][]string, error) {
	rows, err := b.file.GetRows(b.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", b.sheet, err)
	}
	return rows, nil
}

// Append writes row as a new trailing row. Nil cells are left empty.
func (b *Book) Append(row []any) error {
	for i, v := range row {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, b.next)
		if err != nil {
			return fmt.Errorf("row %d col %d: %w", b.next, i+1, err)
		}
		if err := b.file.SetCellValue(b.sheet, cell, cellValue(v)); err != nil {
			return fmt.Errorf("set %s!%s: %w", b.sheet, cell, err)
		}
	}
	b.next++
	return nil
}

// AppendRows appends rows in order.
func (b *Book) AppendRows(rows [][]any) error {
	for _, row := range rows {
		if err := b.Append(row); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the workbook to path through a temporary file in the same
// directory that is then renamed over path. A reader never sees a
// half-written workbook, but concurrent savers still race: last rename wins.
func (b *Book) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*.xlsx")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save %s: %w", path, err)
	}

	if _, err := b.file.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Close releases resources held by the underlying file.
func (b *Book) Close() error {
	return b.file.Close()
}

// cellValue maps decoded JSON numbers onto native numeric cells.
func cellValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
