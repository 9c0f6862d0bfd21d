package page

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wim-web/novadb/internal/schema"
)

func testSchema() schema.Schema {
	return schema.Schema{
		Table: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Int},
			{Name: "name", Type: schema.Text},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	s := testSchema()
	p := New(7)
	AddTuple(p, Tuple{Values: []any{int32(1), "alice"}})
	AddTuple(p, Tuple{Values: []any{int32(2), "bob"}})

	buf, err := Encode(p, s)
	require.NoError(t, err)
	require.Len(t, buf, Size)

	got, err := Decode(buf, 7, s)
	require.NoError(t, err)
	require.Equal(t, ID(7), got.ID)
	require.Len(t, got.Tuples, 2)
	require.Equal(t, []any{int32(1), "alice"}, got.Tuples[0].Values)
	require.False(t, got.Tuples[0].Deleted)
	require.Equal(t, []any{int32(2), "bob"}, got.Tuples[1].Values)
}

func TestEncodeDecode_DeletedFlag(t *testing.T) {
	s := testSchema()
	p := New(0)
	AddTuple(p, Tuple{Deleted: true, Values: []any{int32(9), "x"}})

	buf, err := Encode(p, s)
	require.NoError(t, err)

	got, err := Decode(buf, 0, s)
	require.NoError(t, err)
	require.True(t, got.Tuples[0].Deleted)
}

func TestText_MaxLengthBoundary(t *testing.T) {
	s := testSchema()
	p := New(0)
	text := strings.Repeat("x", schema.TextMaxLen)
	AddTuple(p, Tuple{Values: []any{int32(1), text}})

	buf, err := Encode(p, s)
	require.NoError(t, err)

	got, err := Decode(buf, 0, s)
	require.NoError(t, err)
	require.Equal(t, text, got.Tuples[0].Values[1])
}

func TestText_OverMaxLengthRejected(t *testing.T) {
	s := testSchema()
	p := New(0)
	AddTuple(p, Tuple{Values: []any{int32(1), strings.Repeat("x", schema.TextMaxLen+1)}})

	_, err := Encode(p, s)
	require.Error(t, err)
}

func TestCapacity_And_CanAddTuple(t *testing.T) {
	s := testSchema()
	cap := Capacity(s)
	require.Greater(t, cap, 0)

	p := New(0)
	for i := 0; i < cap; i++ {
		require.True(t, CanAddTuple(p, s))
		AddTuple(p, Tuple{Values: []any{int32(i), "x"}})
	}
	require.False(t, CanAddTuple(p, s))
}

func TestDecode_WrongLength(t *testing.T) {
	_, err := Decode(make([]byte, 10), 0, testSchema())
	require.Error(t, err)
}
