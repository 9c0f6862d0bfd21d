// Package pagetable implements the sharded (table, PageID) -> FrameID
// lookup the buffer pool manager consults on every fetch.
package pagetable

import (
	"hash/fnv"
	"sync"

	"github.com/wim-web/novadb/internal/page"
)

// Key identifies one page across all tables.
type Key struct {
	Table  string
	PageID page.ID
}

type shard struct {
	mu sync.RWMutex
	m  map[Key]int
}

// PageTable is a fixed-bucket-count, independently-locked associative map.
// Bucket count equals pool_size per the component design.
type PageTable struct {
	shards []*shard
}

// New returns a PageTable with numShards independently-locked buckets.
// numShards must be positive.
func New(numShards int) *PageTable {
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{m: make(map[Key]int)}
	}
	return &PageTable{shards: shards}
}

func (pt *PageTable) indexOf(k Key) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k.Table))
	_, _ = h.Write([]byte{0})
	var b [4]byte
	b[0] = byte(k.PageID >> 24)
	b[1] = byte(k.PageID >> 16)
	b[2] = byte(k.PageID >> 8)
	b[3] = byte(k.PageID)
	_, _ = h.Write(b[:])
	return int(h.Sum64() % uint64(len(pt.shards)))
}

// SameShard reports whether k1 and k2 hash to the same shard, letting the
// manager take one lock instead of two during a Load remap.
func (pt *PageTable) SameShard(k1, k2 Key) bool {
	return pt.indexOf(k1) == pt.indexOf(k2)
}

// Get returns the FrameID bound to k, if resident.
func (pt *PageTable) Get(k Key) (int, bool) {
	s := pt.shards[pt.indexOf(k)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.m[k]
	return f, ok
}

// Put binds k to frameID, replacing any existing binding for k.
func (pt *PageTable) Put(k Key, frameID int) {
	s := pt.shards[pt.indexOf(k)]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = frameID
}

// Remove unbinds k, if present.
func (pt *PageTable) Remove(k Key) {
	s := pt.shards[pt.indexOf(k)]
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, k)
}

// Move atomically removes oldKey (if non-nil, i.e. the victim frame was
// ever bound to a page) and inserts newKey -> frameID. When oldKey and
// newKey share a shard, one lock is taken; otherwise both shard locks are
// taken in ascending shard-index order to prevent deadlock against a
// concurrent Move going the other way.
func (pt *PageTable) Move(oldKey *Key, newKey Key, frameID int) {
	newIdx := pt.indexOf(newKey)

	if oldKey == nil {
		s := pt.shards[newIdx]
		s.mu.Lock()
		s.m[newKey] = frameID
		s.mu.Unlock()
		return
	}

	oldIdx := pt.indexOf(*oldKey)
	if oldIdx == newIdx {
		s := pt.shards[oldIdx]
		s.mu.Lock()
		delete(s.m, *oldKey)
		s.m[newKey] = frameID
		s.mu.Unlock()
		return
	}

	lo, hi := oldIdx, newIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	pt.shards[lo].mu.Lock()
	defer pt.shards[lo].mu.Unlock()
	pt.shards[hi].mu.Lock()
	defer pt.shards[hi].mu.Unlock()

	delete(pt.shards[oldIdx].m, *oldKey)
	pt.shards[newIdx].m[newKey] = frameID
}
