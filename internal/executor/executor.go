// Package executor implements the two operations the request handler uses
// against the buffer pool: insert and scan.
package executor

import (
	"fmt"

	"github.com/wim-web/novadb/internal/bufferpool"
	"github.com/wim-web/novadb/internal/catalog"
	"github.com/wim-web/novadb/internal/dberrors"
	"github.com/wim-web/novadb/internal/page"
	"github.com/wim-web/novadb/internal/schema"
)

// Executor adapts raw attribute maps onto the buffer pool's pin/fetch/new protocol.
type Executor struct {
	bp  *bufferpool.Manager
	cat *catalog.Catalog
}

// New returns an Executor backed by bp and cat.
func New(bp *bufferpool.Manager, cat *catalog.Catalog) *Executor {
	return &Executor{bp: bp, cat: cat}
}

// Insert appends one row to table. attrs must supply exactly table's
// columns, each typed per its schema column (int32 for an Int column,
// string for a Text column up to 255 bytes).
func (e *Executor) Insert(table string, attrs map[string]any) error {
	s, err := e.cat.Schema(table)
	if err != nil {
		return err
	}

	values, err := bindValues(table, s, attrs)
	if err != nil {
		return err
	}

	h, err := e.writableBuffer(table, s)
	if err != nil {
		return err
	}

	if !page.CanAddTuple(h.Page, s) {
		if err := e.bp.UnpinBuffer(table, h.Page.ID); err != nil {
			return err
		}
		h, err = e.bp.NewBuffer(table)
		if err != nil {
			return err
		}
	}

	page.AddTuple(h.Page, page.Tuple{Values: values})
	e.bp.MarkDirty(h.FrameID)
	return e.bp.UnpinBuffer(table, h.Page.ID)
}

// writableBuffer returns the table's last page, or a brand-new one if the
// table has never been written to.
func (e *Executor) writableBuffer(table string, s schema.Schema) (*bufferpool.Handle, error) {
	lastID, ok, err := e.bp.LastPageID(table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return e.bp.NewBuffer(table)
	}
	return e.bp.FetchBuffer(table, lastID)
}

// Scan returns every non-deleted row of table as an attribute map, ordered
// by page id then insertion order within the page.
func (e *Executor) Scan(table string) ([]map[string]any, error) {
	s, err := e.cat.Schema(table)
	if err != nil {
		return nil, err
	}

	lastID, ok, err := e.bp.LastPageID(table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var rows []map[string]any
	for id := page.ID(0); id <= lastID; id++ {
		h, err := e.bp.FetchBuffer(table, id)
		if err != nil {
			return nil, err
		}
		for _, t := range h.Page.Tuples {
			if t.Deleted {
				continue
			}
			row := make(map[string]any, len(s.Columns))
			for i, col := range s.Columns {
				row[col.Name] = t.Values[i]
			}
			rows = append(rows, row)
		}
		if err := e.bp.UnpinBuffer(table, id); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func bindValues(table string, s schema.Schema, attrs map[string]any) ([]any, error) {
	if len(attrs) != len(s.Columns) {
		return nil, fmt.Errorf("executor: insert into %q: %w: expected %d columns, got %d",
			table, dberrors.ErrParse, len(s.Columns), len(attrs))
	}

	values := make([]any, len(s.Columns))
	for i, col := range s.Columns {
		v, ok := attrs[col.Name]
		if !ok {
			return nil, fmt.Errorf("executor: insert into %q: %w: missing column %q", table, dberrors.ErrParse, col.Name)
		}
		switch col.Type {
		case schema.Int:
			n, ok := v.(int32)
			if !ok {
				return nil, fmt.Errorf("executor: insert into %q: %w: column %q expects int, got %T",
					table, dberrors.ErrParse, col.Name, v)
			}
			values[i] = n
		case schema.Text:
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("executor: insert into %q: %w: column %q expects text, got %T",
					table, dberrors.ErrParse, col.Name, v)
			}
			if len(str) > schema.TextMaxLen {
				return nil, fmt.Errorf("executor: insert into %q: %w: column %q text exceeds %d bytes",
					table, dberrors.ErrParse, col.Name, schema.TextMaxLen)
			}
			values[i] = str
		default:
			return nil, fmt.Errorf("executor: insert into %q: unknown column type for %q", table, col.Name)
		}
	}
	return values, nil
}
