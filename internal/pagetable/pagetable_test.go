package pagetable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wim-web/novadb/internal/page"
)

func TestPutGetRemove(t *testing.T) {
	pt := New(4)
	k := Key{Table: "users", PageID: 3}

	_, ok := pt.Get(k)
	require.False(t, ok)

	pt.Put(k, 2)
	frameID, ok := pt.Get(k)
	require.True(t, ok)
	require.Equal(t, 2, frameID)

	pt.Remove(k)
	_, ok = pt.Get(k)
	require.False(t, ok)
}

func TestMove_NilOldKey(t *testing.T) {
	pt := New(4)
	newKey := Key{Table: "users", PageID: 1}

	pt.Move(nil, newKey, 5)

	frameID, ok := pt.Get(newKey)
	require.True(t, ok)
	require.Equal(t, 5, frameID)
}

func TestMove_SameShard(t *testing.T) {
	pt := New(1) // a single shard forces SameShard to always be true
	oldKey := Key{Table: "users", PageID: 1}
	newKey := Key{Table: "users", PageID: 2}
	require.True(t, pt.SameShard(oldKey, newKey))

	pt.Put(oldKey, 9)
	pt.Move(&oldKey, newKey, 9)

	_, ok := pt.Get(oldKey)
	require.False(t, ok)
	frameID, ok := pt.Get(newKey)
	require.True(t, ok)
	require.Equal(t, 9, frameID)
}

func TestMove_CrossShard(t *testing.T) {
	pt := New(64)
	var oldKey, newKey Key
	found := false
	for i := page.ID(0); i < 1000 && !found; i++ {
		a := Key{Table: "t", PageID: i}
		b := Key{Table: "t", PageID: i + 500}
		if !pt.SameShard(a, b) {
			oldKey, newKey = a, b
			found = true
		}
	}
	require.True(t, found, "expected to find two keys landing on different shards")

	pt.Put(oldKey, 11)
	pt.Move(&oldKey, newKey, 11)

	_, ok := pt.Get(oldKey)
	require.False(t, ok)
	frameID, ok := pt.Get(newKey)
	require.True(t, ok)
	require.Equal(t, 11, frameID)
}
