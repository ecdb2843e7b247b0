package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bucketbook/internal/workbook"
)

// env is a scratch workspace with a config file and a modern template.
type env struct {
	dir    string
	out    string
	config string
}

// newEnv writes a config pointing every path into a temp dir. extra is
// appended verbatim to the YAML.
func newEnv(t *testing.T, extra ...string) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		dir:    dir,
		out:    filepath.Join(dir, "out"),
		config: filepath.Join(dir, "bucketbook.yaml"),
	}

	tmpl, err := workbook.New("Modelo")
	require.NoError(t, err)
	require.NoError(t, tmpl.Append([]any{"Header"}))
	require.NoError(t, tmpl.Save(filepath.Join(dir, "modelo.xlsx")))
	require.NoError(t, tmpl.Close())

	cfg := fmt.Sprintf(`template_xlsx: %s
template_xls: %s
output_dir: %s
upload_dir: %s
`,
		filepath.Join(dir, "modelo.xlsx"),
		filepath.Join(dir, "modelo.xls"),
		e.out,
		filepath.Join(dir, "uploads"),
	)
	cfg += strings.Join(extra, "\n")
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
	return e
}

// writePayload writes body to a file in the env and returns its path.
func (e *env) writePayload(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(e.dir, "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs the root command with args and captures stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// acmeRow is a row whose bucket key is 12345000199_Acme_Ltd.
func acmeRow() string {
	return row(map[int]string{1: `"Acme Ltd"`, 38: `"12345000199"`})
}

// row renders a JSON array of 114 cells with the given literal values.
func row(cells map[int]string) string {
	parts := make([]string, 114)
	for i := range parts {
		parts[i] = "null"
	}
	for i, v := range cells {
		parts[i] = v
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// enableJournal appends a journal path to the env's config.
func (e *env) enableJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(e.dir, "journal.db")
	f, err := os.OpenFile(e.config, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = fmt.Fprintf(f, "journal: %s\n", path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}
