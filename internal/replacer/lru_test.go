package replacer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRU_VictimIsLeastRecentlyUnpinned(t *testing.T) {
	l := NewLRU()
	l.Unpin(1)
	l.Unpin(2)
	l.Unpin(3)

	id, ok := l.Victim()
	require.True(t, ok)
	require.Equal(t, 1, id)
}

func TestLRU_Pin_RemovesFromVictimPool(t *testing.T) {
	l := NewLRU()
	l.Unpin(1)
	l.Unpin(2)
	l.Pin(1)

	id, ok := l.Victim()
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestLRU_Unpin_RefreshesExistingID(t *testing.T) {
	l := NewLRU()
	l.Unpin(1)
	l.Unpin(2)
	l.Unpin(1) // refresh: 1 moves to the most-recently-used end

	id, ok := l.Victim()
	require.True(t, ok)
	require.Equal(t, 2, id)

	id, ok = l.Victim()
	require.True(t, ok)
	require.Equal(t, 1, id)
}

func TestLRU_Victim_EmptyReturnsFalse(t *testing.T) {
	l := NewLRU()
	_, ok := l.Victim()
	require.False(t, ok)
}

func TestLRU_Pin_UnknownID_IsNoop(t *testing.T) {
	l := NewLRU()
	l.Pin(42) // must not panic
	l.Unpin(1)

	id, ok := l.Victim()
	require.True(t, ok)
	require.Equal(t, 1, id)
}
