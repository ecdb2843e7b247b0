package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateLoader_Modern(t *testing.T) {
	dir := t.TempDir()
	modern := filepath.Join(dir, "modelo.xlsx")
	writeTemplate(t, modern, []any{"Nome", "CNPJ"}, []any{"sub", "header"})

	l := &TemplateLoader{Modern: modern, Legacy: filepath.Join(dir, "modelo.xls")}
	book, err := l.Load()
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Nome", "CNPJ"}, {"sub", "header"}}, rows)
	assert.Equal(t, "Modelo", book.Sheet())
}

func TestTemplateLoader_ModernPreferredOverLegacy(t *testing.T) {
	dir := t.TempDir()
	modern := filepath.Join(dir, "modelo.xlsx")
	legacy := filepath.Join(dir, "modelo.xls")
	writeTemplate(t, modern, []any{"modern"})
	require.NoError(t, os.WriteFile(legacy, []byte("legacy"), 0o644))

	l := &TemplateLoader{
		Modern: modern,
		Legacy: legacy,
		ReadLegacy: func(string) ([][]string, error) {
			t.Fatal("legacy template must not be read when the modern one exists")
			return nil, nil
		},
	}
	book, err := l.Load()
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"modern"}}, rows)
}

func TestTemplateLoader_LegacyUpgrade(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "modelo.xls")
	original := []byte("legacy bytes")
	require.NoError(t, os.WriteFile(legacy, original, 0o644))

	legacyRows := [][]string{
		{"Codigo", "Nome Unidade", "CNPJ"},
		{"1", "second", "row"},
		{"z", "y", "x"},
	}
	var readPath string
	l := &TemplateLoader{
		Modern:      filepath.Join(dir, "modelo.xlsx"),
		Legacy:      legacy,
		LegacySheet: "Modelo 1",
		ReadLegacy: func(path string) ([][]string, error) {
			readPath = path
			return legacyRows, nil
		},
	}

	book, err := l.Load()
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, legacy, readPath)
	assert.Equal(t, "Modelo 1", book.Sheet())
	assert.Equal(t, len(legacyRows), book.Len())

	rows, err := book.Rows()
	require.NoError(t, err)
	assert.Equal(t, legacyRows, rows)

	onDisk, err := os.ReadFile(legacy)
	require.NoError(t, err)
	assert.Equal(t, original, onDisk)
	_, err = os.Stat(filepath.Join(dir, "modelo.xlsx"))
	assert.True(t, os.IsNotExist(err), "upgrade must stay in memory")
}

func TestTemplateLoader_NotFound(t *testing.T) {
	dir := t.TempDir()
	l := &TemplateLoader{
		Modern: filepath.Join(dir, "modelo.xlsx"),
		Legacy: filepath.Join(dir, "modelo.xls"),
	}

	book, err := l.Load()
	assert.Nil(t, book)
	require.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "modelo.xlsx")
	assert.Contains(t, err.Error(), "modelo.xls")

	var te *TemplateError
	assert.ErrorAs(t, err, &te)
}

func TestTemplateLoader_LegacyConversionFailure(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "modelo.xls")
	require.NoError(t, os.WriteFile(legacy, []byte("x"), 0o644))

	cause := errors.New("bad BIFF record")
	l := &TemplateLoader{
		Modern:     filepath.Join(dir, "modelo.xlsx"),
		Legacy:     legacy,
		ReadLegacy: func(string) ([][]string, error) { return nil, cause },
	}

	_, err := l.Load()
	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "convert legacy template")
	assert.Contains(t, err.Error(), "bad BIFF record")
}

func TestTemplateLoader_DefaultLegacyReaderRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "modelo.xls")
	require.NoError(t, os.WriteFile(legacy, []byte("not an ole2 compound file"), 0o644))

	l := &TemplateLoader{Modern: filepath.Join(dir, "modelo.xlsx"), Legacy: legacy}
	_, err := l.Load()

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, legacy, te.Legacy)
}

func TestTemplateLoader_EachLoadIsFresh(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.templates.Load()
	require.NoError(t, err)
	defer first.Close()
	require.NoError(t, first.Append([]any{"scratch"}))

	second, err := env.templates.Load()
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, 1, second.Len())
}

func TestTemplateLoader_LegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "modelo.xls")
	copyFile(t, filepath.Join("testdata", "modelo.xls"), legacy)

	l := &TemplateLoader{
		Modern:      filepath.Join(dir, "modelo.xlsx"),
		Legacy:      legacy,
		LegacySheet: "Modelo 1",
	}
	book, err := l.Load()
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, "Modelo 1", book.Sheet())
	assert.Equal(t, 3, book.Len())

	rows, err := book.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nome", "Documento", "Razão Social", "2024"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, []string{"Total", "", "42"}, rows[2])
}

func TestMerge_ColdStartFromLegacyFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	legacy := filepath.Join(dir, "modelo.xls")
	copyFile(t, filepath.Join("testdata", "modelo.xls"), legacy)

	m := NewMerger(out, &TemplateLoader{
		Modern:      filepath.Join(dir, "modelo.xlsx"),
		Legacy:      legacy,
		LegacySheet: "Modelo 1",
	}, nil)

	for _, key := range []string{"A", "B"} {
		file, err := m.Merge(context.Background(), key, [][]any{{key, "row"}})
		require.NoError(t, err)

		rows := readRows(t, filepath.Join(out, file))
		require.Len(t, rows, 4)
		assert.Equal(t, "Nome", rows[0][0])
		assert.Equal(t, []string{key, "row"}, rows[3])
	}
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}
