// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refine-normas/pkg/types"
)

const cliNorma = `{
  "identificador": "Ordenanza de movilidad",
  "infracciones": [
    {
      "articulo": "12",
      "descripcion": "Estacionar sobre la acera.\n\n*Nota: Salvo carga y descarga. Responsable: Conductor o Titular*"
    },
    {
      "articulo": "13",
      "descripcion": "Circular sin casco."
    }
  ]
}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIFlow(t *testing.T) {
	tmpDir := t.TempDir()
	normas := filepath.Join(tmpDir, "normas")
	require.NoError(t, os.MkdirAll(normas, 0o755))
	docPath := filepath.Join(normas, "movilidad.json")
	require.NoError(t, os.WriteFile(docPath, []byte(cliNorma), 0o644))
	db := filepath.Join(tmpDir, "refine.db")

	out, err := execute(t, "refine", "dir", normas, "--ledger", db)
	require.NoError(t, err)
	assert.Contains(t, out, "refined:   movilidad.json (2 records, 1 extracted)")
	assert.Contains(t, out, "refined: 1, unchanged: 0, failed: 0 (total: 1)")

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"descripcion": "Estacionar sobre la acera."`)
	assert.Contains(t, string(data), `"nota": "Salvo carga y descarga"`)
	assert.Contains(t, string(data), `"fecha_actualizacion": "`+types.DirectoryDate+`"`)

	out, err = execute(t, "ledger", "report", "--db", db, "--json")
	require.NoError(t, err)
	var records []types.AnnotationRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Titular", "Conductor"}, records[0].Responsables)
	assert.Equal(t, "12", records[0].Article)

	exportPath := filepath.Join(tmpDir, "out.yaml")
	out, err = execute(t, "ledger", "export", "--db", db, "--format", "yaml", "--out", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported to "+exportPath)
	assert.FileExists(t, exportPath)

	out, err = execute(t, "refine", "file", docPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "refined:   movilidad.json")
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "Refinement complete.")

	after, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(after), "dry run leaves the file alone")
}

func TestRefineFileMalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rota.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"infracciones": [`), 0o644))

	_, err := execute(t, "refine", "file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed document")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "refine-normas dev\n", out)
}

func TestFormatReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatReport(&buf, nil, false))
	assert.Equal(t, "No records found.\n", buf.String())

	buf.Reset()
	require.NoError(t, formatReport(&buf, nil, true))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, formatReport(&buf, []types.AnnotationRecord{{
		File: "rdl.json", Index: 3, Article: "76", Note: "Aclaración",
		Responsables: []string{"Conductor", "Titular"}, Extracted: true,
	}}, false))
	assert.Contains(t, buf.String(), "rdl.json")
	assert.Contains(t, buf.String(), "Conductor, Titular")
	assert.Contains(t, buf.String(), "1 records")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "corto", n: 10, want: "corto"},
		{in: "exactamente", n: 11, want: "exactamente"},
		{in: "Aclaración importante", n: 10, want: "Aclarac..."},
		{in: "dos\nlíneas", n: 20, want: "dos líneas"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n))
	}
}
