package replacer

import (
	"container/list"
	"sync"
)

// LRU is the required strict-LRU victim policy: a bounded set of
// unpinned, resident frame ids, ordered by recency of their last Unpin.
// The bookkeeping is the pack's own container/list-backed eviction-cache
// shape (pkg/cache.LRUManager in the teacher), inlined here and narrowed
// to exactly the pin/unpin/victim vocabulary this engine's Replacer
// interface needs, with elems giving O(1) removal by frame id.
type LRU struct {
	mu    sync.Mutex
	order *list.List
	elems map[int]*list.Element
}

// NewLRU returns an empty LRU. Capacity is bounded implicitly: the manager
// never unpins more distinct ids than pool_size.
func NewLRU() *LRU {
	return &LRU{
		order: list.New(),
		elems: make(map[int]*list.Element),
	}
}

// Unpin inserts id at the most-recently-used end, refreshing it if already present.
func (l *LRU) Unpin(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.elems[id]; ok {
		l.order.MoveToFront(e)
		return
	}
	l.elems[id] = l.order.PushFront(id)
}

// Pin removes id from the set, if present.
func (l *LRU) Pin(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.elems[id]; ok {
		l.order.Remove(e)
		delete(l.elems, id)
	}
}

// Victim removes and returns the least-recently-unpinned id.
func (l *LRU) Victim() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	back := l.order.Back()
	if back == nil {
		return 0, false
	}
	id := back.Value.(int)
	l.order.Remove(back)
	delete(l.elems, id)
	return id, true
}
