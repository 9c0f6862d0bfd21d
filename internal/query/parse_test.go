package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wim-web/novadb/internal/dberrors"
)

func TestParse_Select(t *testing.T) {
	stmt, err := Parse("select * from users;")
	require.NoError(t, err)
	sel, ok := stmt.(*SelectStmt)
	require.True(t, ok)
	require.Equal(t, "users", sel.Table)
}

func TestParse_Insert_IntAndText(t *testing.T) {
	stmt, err := Parse("insert into t ( i=12 s='executor' );")
	require.NoError(t, err)
	ins, ok := stmt.(*InsertStmt)
	require.True(t, ok)
	require.Equal(t, "t", ins.Table)
	require.Equal(t, int32(12), ins.Attrs["i"])
	require.Equal(t, "executor", ins.Attrs["s"])
}

func TestParse_Insert_TextWithSpaces(t *testing.T) {
	stmt, err := Parse("insert into t ( i=1 s='hello world' );")
	require.NoError(t, err)
	ins := stmt.(*InsertStmt)
	require.Equal(t, "hello world", ins.Attrs["s"])
}

func TestParse_Exit(t *testing.T) {
	stmt, err := Parse("exit;")
	require.NoError(t, err)
	_, ok := stmt.(*ExitStmt)
	require.True(t, ok)
}

func TestParse_MissingTerminator_IsParseError(t *testing.T) {
	_, err := Parse("select * from users")
	require.ErrorIs(t, err, dberrors.ErrParse)
}

func TestParse_UnknownVerb_IsParseError(t *testing.T) {
	_, err := Parse("update users;")
	require.ErrorIs(t, err, dberrors.ErrParse)
}

func TestParse_MalformedSelect_IsParseError(t *testing.T) {
	_, err := Parse("select from users;")
	require.ErrorIs(t, err, dberrors.ErrParse)
}

func TestParse_InsertDuplicateColumn_IsParseError(t *testing.T) {
	_, err := Parse("insert into t ( i=1 i=2 );")
	require.ErrorIs(t, err, dberrors.ErrParse)
}

func TestParse_InsertMalformedTextLiteral_IsParseError(t *testing.T) {
	_, err := Parse("insert into t ( s='unterminated );")
	require.ErrorIs(t, err, dberrors.ErrParse)
}

func TestParse_InsertMalformedIntLiteral_IsParseError(t *testing.T) {
	_, err := Parse("insert into t ( i=notanumber );")
	require.ErrorIs(t, err, dberrors.ErrParse)
}

func TestParse_Empty_IsParseError(t *testing.T) {
	_, err := Parse(";")
	require.ErrorIs(t, err, dberrors.ErrParse)

	_, err = Parse("")
	require.ErrorIs(t, err, dberrors.ErrParse)
}
