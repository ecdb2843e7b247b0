package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Text(t *testing.T) {
	cno := row(map[int]string{1: `"Obra Central"`, 113: `"512345678901"`, 109: `"12345678909"`})
	stdout, _, err := execute(t, "["+acmeRow()+","+cno+",[]]", "key", "-")
	require.NoError(t, err)
	assert.Equal(t,
		"1\t12345000199_Acme_Ltd\n2\tCNO_512345678901_Obra_Central\n3\tSEM_DOC_SemNome\n",
		stdout)
}

func TestKey_JSON(t *testing.T) {
	stdout, _, err := execute(t, "["+acmeRow()+"]", "--format", "json", "key", "-")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   []keyLine `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []keyLine{{Row: 1, Key: "12345000199_Acme_Ltd", File: "12345000199_Acme_Ltd.xlsx"}}, resp.Data)
}

func TestKey_WritesNothing(t *testing.T) {
	e := newEnv(t)
	payload := e.writePayload(t, "["+acmeRow()+"]")

	_, _, err := execute(t, "", "--config", e.config, "key", payload)
	require.NoError(t, err)

	_, err = os.Stat(e.out)
	assert.True(t, os.IsNotExist(err), "key must not create the output directory")
}

func TestKey_Empty(t *testing.T) {
	stdout, _, err := execute(t, "[]", "key", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E004]")
}

func TestKey_VerboseGoesToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "["+acmeRow()+"]", "--verbose", "--format", "json", "key", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "payload -: 1 rows, max key length 100")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}
