package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wim-web/novadb/internal/bufferpool"
	"github.com/wim-web/novadb/internal/catalog"
	"github.com/wim-web/novadb/internal/diskmanager"
	"github.com/wim-web/novadb/internal/executor"
	"github.com/wim-web/novadb/internal/schema"
)

func newTestEngine(t *testing.T, poolSize int) *Engine {
	t.Helper()

	s := schema.Schema{
		Table: "t",
		Columns: []schema.Column{
			{Name: "i", Type: schema.Int},
			{Name: "s", Type: schema.Text},
		},
	}
	cat := catalog.NewForTest(map[string]schema.Schema{"t": s})

	dm, err := diskmanager.New(t.TempDir())
	require.NoError(t, err)

	bp, err := bufferpool.New(dm, poolSize, cat.Schema)
	require.NoError(t, err)

	return &Engine{Catalog: cat, BP: bp, Exec: executor.New(bp, cat)}
}

func TestEngine_InsertThenSelect(t *testing.T) {
	e := newTestEngine(t, 4)

	result, exit, err := e.Execute("insert into t ( i=12 s='executor' );")
	require.NoError(t, err)
	require.False(t, exit)
	require.Equal(t, "ok", result)

	result, exit, err = e.Execute("select * from t;")
	require.NoError(t, err)
	require.False(t, exit)
	require.Equal(t, `{i:12, s:"executor"}`+"\n"+"total: 1", result)
}

func TestEngine_SelectEmptyTable(t *testing.T) {
	e := newTestEngine(t, 4)

	result, _, err := e.Execute("select * from t;")
	require.NoError(t, err)
	require.Equal(t, "total: 0", result)
}

func TestEngine_Exit_FlushesAndSignalsExit(t *testing.T) {
	e := newTestEngine(t, 4)

	require.NoError(t, e.Exec.Insert("t", map[string]any{"i": int32(1), "s": "x"}))

	result, exit, err := e.Execute("exit;")
	require.NoError(t, err)
	require.True(t, exit)
	require.Equal(t, "exit", result)
}

func TestEngine_ParseError_Surfaced(t *testing.T) {
	e := newTestEngine(t, 4)

	_, exit, err := e.Execute("update t;")
	require.Error(t, err)
	require.False(t, exit)
}

func TestEngine_CatalogMiss_Surfaced(t *testing.T) {
	e := newTestEngine(t, 4)

	_, _, err := e.Execute("select * from nope;")
	require.Error(t, err)
}
