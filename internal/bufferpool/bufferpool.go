// Package bufferpool implements the fixed-capacity buffer pool manager:
// frame descriptors, the pin/victim protocol, and write-back of dirty
// frames, orchestrated on top of diskmanager, pagetable, and replacer.
package bufferpool

import (
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/wim-web/novadb/internal/dberrors"
	"github.com/wim-web/novadb/internal/diskmanager"
	"github.com/wim-web/novadb/internal/page"
	"github.com/wim-web/novadb/internal/pagetable"
	"github.com/wim-web/novadb/internal/replacer"
	"github.com/wim-web/novadb/internal/schema"
)

const logPrefix = "bufferpool: "

// SchemaLookup resolves a table name to its schema; the catalog satisfies this.
type SchemaLookup func(table string) (schema.Schema, error)

// frameSlot is one pool slot: its descriptor fields plus the decoded page
// it currently holds. mu is a plain mutex owned by this slot alone (there
// is no pool-wide lock); it guards pinCount, dirty, key and the pageData
// pointer, and is not held while a caller reads or mutates Handle.Page.
type frameSlot struct {
	mu       sync.Mutex
	id       int
	pinCount int
	dirty    bool
	key      *pagetable.Key
	pageData *page.Page
}

// Handle is a pinned reference to a resident, decoded page. Callers read
// or mutate Handle.Page, call Manager.MarkDirty if they wrote, and must
// eventually call Manager.UnpinBuffer.
type Handle struct {
	FrameID int
	Page    *page.Page
}

// Manager is the buffer pool manager: the orchestrator of fetch/new/unpin/flush.
type Manager struct {
	disk   *diskmanager.Manager
	table  *pagetable.PageTable
	repl   replacer.Replacer
	frames []*frameSlot
	schema SchemaLookup
	logger *slog.Logger
}

// New allocates poolSize frames, descriptors, a page table with poolSize
// shards, and seeds the replacer with every frame id so the first poolSize
// fetches are misses that never stall. poolSize == 0 is rejected.
func New(disk *diskmanager.Manager, poolSize int, lookup SchemaLookup) (*Manager, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf(logPrefix+"pool_size must be > 0, got %d", poolSize)
	}

	frames := make([]*frameSlot, poolSize)
	repl := replacer.NewLRU()
	for i := range frames {
		frames[i] = &frameSlot{id: i}
		repl.Unpin(i)
	}

	return &Manager{
		disk:   disk,
		table:  pagetable.New(poolSize),
		repl:   repl,
		frames: frames,
		schema: lookup,
		logger: slog.Default().With("component", "bufferpool"),
	}, nil
}

// FetchBuffer pins and returns the page (table, id), loading it from disk
// on a miss. Deliberately does NOT call replacer.Pin on a hit (§9): once a
// frame has ever been unpinned its id can still be sitting in the LRU while
// pinned again, which Load's victim loop below must account for.
func (m *Manager) FetchBuffer(table string, id page.ID) (*Handle, error) {
	key := pagetable.Key{Table: table, PageID: id}

	if frameID, ok := m.table.Get(key); ok {
		f := m.frames[frameID]
		f.mu.Lock()
		f.pinCount++
		pg := f.pageData
		f.mu.Unlock()
		return &Handle{FrameID: frameID, Page: pg}, nil
	}

	return m.load(key, nil)
}

// NewBuffer allocates a fresh page on disk and returns it pinned and resident.
func (m *Manager) NewBuffer(table string) (*Handle, error) {
	s, err := m.schema(table)
	if err != nil {
		return nil, err
	}
	p, err := m.disk.AllocatePage(table, s)
	if err != nil {
		return nil, err
	}
	key := pagetable.Key{Table: table, PageID: p.ID}
	return m.load(key, p)
}

// load is the shared fetch-miss / new-buffer subroutine. When freshPage is
// non-nil (the new_buffer path) the already-allocated empty page is
// installed directly, without a redundant disk read.
//
// The new page is read in (or already in hand) BEFORE any victim is
// touched, so a disk read failure leaves every descriptor, frame, and page
// table entry untouched — a stricter reading of "IOError does not corrupt
// in-memory state" than the component design's listed step order, which
// writes back/remaps before reading the incoming page.
func (m *Manager) load(newKey pagetable.Key, freshPage *page.Page) (*Handle, error) {
	newPage := freshPage
	if newPage == nil {
		s, err := m.schema(newKey.Table)
		if err != nil {
			return nil, err
		}
		p, err := m.disk.Read(newKey.Table, newKey.PageID, s)
		if err != nil {
			return nil, fmt.Errorf(logPrefix+"load %s/%d: %w", newKey.Table, newKey.PageID, err)
		}
		newPage = p
	}

	for {
		victimID, ok := m.repl.Victim()
		if !ok {
			return nil, fmt.Errorf(logPrefix+"%w", dberrors.ErrNoFreeFrame)
		}

		f := m.frames[victimID]
		f.mu.Lock()
		if f.pinCount != 0 {
			// A concurrent hit pinned this frame without telling the
			// replacer (FetchBuffer never calls Pin). Discard and retry.
			f.mu.Unlock()
			continue
		}

		var oldKey *pagetable.Key
		if f.key != nil {
			oldKey = f.key
			if f.dirty {
				oldSchema, err := m.schema(f.key.Table)
				if err != nil {
					f.mu.Unlock()
					m.repl.Unpin(victimID)
					return nil, err
				}
				if err := m.disk.Write(f.key.Table, f.pageData, oldSchema); err != nil {
					f.mu.Unlock()
					m.repl.Unpin(victimID)
					return nil, fmt.Errorf(logPrefix+"evict write-back: %w", err)
				}
				m.logger.Debug("wrote back dirty victim", "table", f.key.Table, "page_id", f.key.PageID)
			}
		}

		m.table.Move(oldKey, newKey, victimID)

		f.dirty = false
		f.pinCount = 1
		f.key = &newKey
		f.pageData = newPage
		f.mu.Unlock()

		return &Handle{FrameID: victimID, Page: newPage}, nil
	}
}

// MarkDirty sets frame frameID's dirty bit. Idempotent.
func (m *Manager) MarkDirty(frameID int) {
	f := m.frames[frameID]
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
}

// UnpinBuffer decrements the pin count of (table, id)'s frame, if resident,
// moving it into the replacer once the count reaches zero. A pin-count
// underflow is a programmer error and panics (§7 ProgrammerError).
func (m *Manager) UnpinBuffer(table string, id page.ID) error {
	key := pagetable.Key{Table: table, PageID: id}
	frameID, ok := m.table.Get(key)
	if !ok {
		return nil // defensive no-op: not resident
	}

	f := m.frames[frameID]
	f.mu.Lock()
	if f.pinCount == 0 {
		f.mu.Unlock()
		panic(fmt.Sprintf(logPrefix+"pin count underflow on frame %d", frameID))
	}
	f.pinCount--
	reachedZero := f.pinCount == 0
	f.mu.Unlock()

	if reachedZero {
		m.repl.Unpin(frameID)
	}
	return nil
}

// FlushBuffer writes (table, id)'s frame to disk if resident, without
// changing its pin state or dirty bit.
func (m *Manager) FlushBuffer(table string, id page.ID) error {
	key := pagetable.Key{Table: table, PageID: id}
	frameID, ok := m.table.Get(key)
	if !ok {
		return nil
	}

	f := m.frames[frameID]
	f.mu.Lock()
	pg := f.pageData
	f.mu.Unlock()

	s, err := m.schema(table)
	if err != nil {
		return err
	}
	return m.disk.Write(table, pg, s)
}

// FlushAll writes every dirty frame to disk. Called on clean shutdown;
// does not clear dirty bits. Per-frame failures are aggregated with
// multierr instead of short-circuiting, so one bad table's I/O error does
// not hide a sibling table's.
func (m *Manager) FlushAll() error {
	var errs error
	for _, f := range m.frames {
		f.mu.Lock()
		dirty := f.dirty
		key := f.key
		pg := f.pageData
		f.mu.Unlock()

		if !dirty || key == nil {
			continue
		}
		s, err := m.schema(key.Table)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf(logPrefix+"flush_all %s: %w", key.Table, err))
			continue
		}
		if err := m.disk.Write(key.Table, pg, s); err != nil {
			errs = multierr.Append(errs, fmt.Errorf(logPrefix+"flush_all %s/%d: %w", key.Table, key.PageID, err))
		}
	}
	return errs
}

// LastPageID delegates to the disk manager.
func (m *Manager) LastPageID(table string) (page.ID, bool, error) {
	return m.disk.LastPageID(table)
}
