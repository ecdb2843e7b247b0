package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bucketbook/internal/ident"
	"github.com/roach88/bucketbook/internal/workbook"
)

const (
	colName = 1
	colCNPJ = 38
	colCPF  = 109
	width   = 114
)

func makeRow(cells map[int]any) []any {
	row := make([]any, width)
	for i, v := range cells {
		row[i] = v
	}
	return row
}

func testKeyFunc(t *testing.T) KeyFunc {
	t.Helper()
	b, err := ident.NewBuilder(ident.DefaultSchema(), 0)
	require.NoError(t, err)
	return b.Key
}

// writeTemplate writes a modern template holding header rows.
func writeTemplate(t *testing.T, path string, header ...[]any) {
	t.Helper()
	b, err := workbook.New("Modelo")
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.AppendRows(header))
	require.NoError(t, b.Save(path))
}

// readRows returns the rows of the workbook at path.
func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	b, err := workbook.Open(path)
	require.NoError(t, err)
	defer b.Close()
	rows, err := b.Rows()
	require.NoError(t, err)
	return rows
}

// testEnv is an output directory plus a template directory.
type testEnv struct {
	out       string
	templates *TemplateLoader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(out, 0o755))

	modern := filepath.Join(root, "modelo.xlsx")
	writeTemplate(t, modern, []any{"Header"})

	return &testEnv{
		out: out,
		templates: &TemplateLoader{
			Modern:      modern,
			Legacy:      filepath.Join(root, "modelo.xls"),
			LegacySheet: "Modelo 1",
		},
	}
}
