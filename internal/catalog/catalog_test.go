package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wim-web/novadb/internal/dberrors"
	"github.com/wim-web/novadb/internal/schema"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ValidDocument(t *testing.T) {
	path := writeCatalog(t, `{"schemas":[{"table":{"name":"t","columns":[
		{"name":"i","types":"int"},
		{"name":"s","types":"text"}
	]}}]}`)

	cat, err := Load(path)
	require.NoError(t, err)

	s, err := cat.Schema("t")
	require.NoError(t, err)
	require.Equal(t, "t", s.Table)
	require.Len(t, s.Columns, 2)
	require.Equal(t, schema.Int, s.Columns[0].Type)
	require.Equal(t, schema.Text, s.Columns[1].Type)
}

func TestSchema_UnknownTable_IsCatalogMiss(t *testing.T) {
	path := writeCatalog(t, `{"schemas":[]}`)
	cat, err := Load(path)
	require.NoError(t, err)

	_, err = cat.Schema("nope")
	require.ErrorIs(t, err, dberrors.ErrCatalogMiss)
}

func TestLoad_UnknownColumnType_Rejected(t *testing.T) {
	path := writeCatalog(t, `{"schemas":[{"table":{"name":"t","columns":[
		{"name":"i","types":"blob"}
	]}}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_DuplicateColumn_Rejected(t *testing.T) {
	path := writeCatalog(t, `{"schemas":[{"table":{"name":"t","columns":[
		{"name":"i","types":"int"},
		{"name":"i","types":"text"}
	]}}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile_IsIOError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, dberrors.ErrIO)
}
