// Package diskmanager owns one append-only file per table and performs
// page-granularity read/write/allocate against it.
package diskmanager

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/wim-web/novadb/internal/dberrors"
	"github.com/wim-web/novadb/internal/page"
	"github.com/wim-web/novadb/internal/schema"
)

const logPrefix = "diskmanager: "

// tableFile is one table's open file handle, independently locked so
// concurrent access to distinct tables never contends (§5).
type tableFile struct {
	mu   sync.RWMutex
	f    *os.File
	size int64
}

// Manager owns a base directory; each table maps to base/<table>.
type Manager struct {
	basePath string

	mu     sync.Mutex // guards files, not file contents
	files  map[string]*tableFile
	logger *slog.Logger
}

// New returns a Manager rooted at basePath, creating the directory if needed.
func New(basePath string) (*Manager, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf(logPrefix+"create base dir %q: %w: %w", basePath, dberrors.ErrIO, err)
	}
	return &Manager{
		basePath: basePath,
		files:    make(map[string]*tableFile),
		logger:   slog.Default().With("component", "diskmanager"),
	}, nil
}

func (m *Manager) open(table string) (*tableFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tf, ok := m.files[table]; ok {
		return tf, nil
	}

	path := filepath.Join(m.basePath, table)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf(logPrefix+"open table %q: %w: %w", table, dberrors.ErrIO, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf(logPrefix+"stat table %q: %w: %w", table, dberrors.ErrIO, err)
	}

	tf := &tableFile{f: f, size: info.Size()}
	m.files[table] = tf
	m.logger.Debug("opened table file", "table", table, "size", tf.size)
	return tf, nil
}

// Read seeks to page_id*Size, reads exactly Size bytes, and decodes them
// against schema s. Fails with dberrors.ErrIO on a short read or missing file.
func (m *Manager) Read(table string, id page.ID, s schema.Schema) (*page.Page, error) {
	tf, err := m.open(table)
	if err != nil {
		return nil, err
	}

	tf.mu.RLock()
	defer tf.mu.RUnlock()

	buf := make([]byte, page.Size)
	n, err := tf.f.ReadAt(buf, id.Offset())
	if err != nil && !(err == io.EOF && n == page.Size) {
		return nil, fmt.Errorf(logPrefix+"read table %q page %d: %w: %w", table, id, dberrors.ErrIO, err)
	}

	p, err := page.Decode(buf, id, s)
	if err != nil {
		return nil, fmt.Errorf(logPrefix+"decode table %q page %d: %w", table, id, err)
	}
	return p, nil
}

// Write encodes p per s and writes exactly Size bytes at p.ID's offset.
func (m *Manager) Write(table string, p *page.Page, s schema.Schema) error {
	tf, err := m.open(table)
	if err != nil {
		return err
	}

	buf, err := page.Encode(p, s)
	if err != nil {
		return fmt.Errorf(logPrefix+"encode table %q page %d: %w", table, p.ID, err)
	}

	tf.mu.Lock()
	defer tf.mu.Unlock()

	if _, err := tf.f.WriteAt(buf, p.ID.Offset()); err != nil {
		return fmt.Errorf(logPrefix+"write table %q page %d: %w: %w", table, p.ID, dberrors.ErrIO, err)
	}
	if end := p.ID.Offset() + page.Size; end > tf.size {
		tf.size = end
	}
	return nil
}

// AllocatePage extends table's file by one empty page and returns it.
// The new page's id equals the file's page count before the call.
func (m *Manager) AllocatePage(table string, s schema.Schema) (*page.Page, error) {
	tf, err := m.open(table)
	if err != nil {
		return nil, err
	}

	tf.mu.Lock()
	newID := page.ID(tf.size / page.Size)
	tf.mu.Unlock()

	p := page.New(newID)
	if err := m.Write(table, p, s); err != nil {
		return nil, fmt.Errorf(logPrefix+"allocate table %q page %d: %w", table, newID, err)
	}
	m.logger.Debug("allocated page", "table", table, "page_id", newID)
	return p, nil
}

// LastPageID returns the highest allocated page id for table, or ok=false
// if the table's file is empty (never written).
func (m *Manager) LastPageID(table string) (id page.ID, ok bool, err error) {
	tf, err := m.open(table)
	if err != nil {
		return 0, false, err
	}

	tf.mu.RLock()
	defer tf.mu.RUnlock()

	if tf.size == 0 {
		return 0, false, nil
	}
	return page.ID(tf.size/page.Size - 1), true, nil
}

// Close closes every open table file. Intended for clean shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for table, tf := range m.files {
		if err := tf.f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf(logPrefix+"close table %q: %w: %w", table, dberrors.ErrIO, err)
		}
	}
	return firstErr
}
