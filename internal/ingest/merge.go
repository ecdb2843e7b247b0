package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/bucketbook/internal/workbook"
)

// FileExt is the extension of every entity file.
const FileExt = ".xlsx"

// Merger appends bucket rows to entity workbooks in one directory.
type Merger struct {
	dir       string
	templates *TemplateLoader
	locks     *KeyLocks
}

// NewMerger returns a Merger writing to dir. With nil locks, concurrent
// merges into one key are not serialized.
func NewMerger(dir string, templates *TemplateLoader, locks *KeyLocks) *Merger {
	return &Merger{dir: dir, templates: templates, locks: locks}
}

// Dir returns the output directory.
func (m *Merger) Dir() string {
	return m.dir
}

// FileName returns the entity file name for key.
func FileName(key string) string {
	return key + FileExt
}

// Merge appends rows to the entity file for key, creating it from the
// template when absent, and returns the file name written. Existing rows
// are kept verbatim.
func (m *Merger) Merge(ctx context.Context, key string, rows [][]any) (string, error) {
	name := FileName(key)
	if err := ctx.Err(); err != nil {
		return "", &BucketError{Key: key, File: name, Err: err}
	}

	if m.locks != nil {
		unlock := m.locks.Lock(key)
		defer unlock()
	}

	if err := m.merge(filepath.Join(m.dir, name), rows); err != nil {
		return "", &BucketError{Key: key, File: name, Err: err}
	}
	return name, nil
}

func (m *Merger) merge(path string, rows [][]any) error {
	book, err := m.open(path)
	if err != nil {
		return err
	}
	defer book.Close()

	if err := book.AppendRows(rows); err != nil {
		return fmt.Errorf("append rows: %w", err)
	}
	return book.Save(path)
}

// open returns the existing entity workbook at path, or a new one seeded
// from the template.
func (m *Merger) open(path string) (*workbook.Book, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return workbook.Open(path)
	case errors.Is(err, fs.ErrNotExist):
		return m.templates.Load()
	default:
		return nil, err
	}
}
