package ingest

import (
	"errors"
	"io/fs"
	"os"

	"github.com/roach88/bucketbook/internal/workbook"
)

// LegacyReader returns the rows of the first sheet of a legacy workbook.
type LegacyReader func(path string) ([][]string, error)

// TemplateLoader seeds new entity workbooks.
//
// The modern template is preferred. The legacy template is only read when
// the modern one is absent, and is upgraded in memory on every load; the
// file on disk is never rewritten.
type TemplateLoader struct {
	Modern      string // .xlsx template path
	Legacy      string // .xls template path
	LegacySheet string // sheet name for upgraded legacy templates

	// ReadLegacy defaults to workbook.ReadLegacy.
	ReadLegacy LegacyReader
}

// Load returns a fresh workbook seeded from the template.
func (l *TemplateLoader) Load() (*workbook.Book, error) {
	ok, err := exists(l.Modern)
	if err != nil {
		return nil, err
	}
	if ok {
		return workbook.Open(l.Modern)
	}

	ok, err = exists(l.Legacy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &TemplateError{Modern: l.Modern, Legacy: l.Legacy, Err: ErrTemplateNotFound}
	}

	read := l.ReadLegacy
	if read == nil {
		read = workbook.ReadLegacy
	}
	rows, err := read(l.Legacy)
	if err != nil {
		return nil, &TemplateError{Modern: l.Modern, Legacy: l.Legacy, Err: err}
	}
	book, err := workbook.FromRows(l.LegacySheet, rows)
	if err != nil {
		return nil, &TemplateError{Modern: l.Modern, Legacy: l.Legacy, Err: err}
	}
	return book, nil
}

// exists reports whether path names an existing file. Errors other than
// "not exist" are returned so a permission problem is not mistaken for a
// missing template.
func exists(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
