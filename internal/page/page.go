// Package page implements the fixed-width page and tuple codec: the
// on-disk byte layout for one 4096-byte page and the tuples packed into it.
package page

import (
	"encoding/binary"
	"fmt"

	"github.com/wim-web/novadb/internal/schema"
)

const (
	// Size is the fixed byte size of every page, on disk and in memory.
	Size = 4096
	// HeaderSize is the page header: tuple_count (u32 BE) + 28 reserved bytes.
	HeaderSize = 32
)

// ID is a page's position within its table's file, in units of Size bytes.
type ID uint32

// Offset returns this page's byte offset within its table's file.
func (id ID) Offset() int64 { return int64(id) * Size }

// Tuple is one decoded row: the deleted flag plus ordered column values.
// Values[i] holds an int32 for an Int column or a string for a Text column,
// mirroring schema.Columns[i].Type.
type Tuple struct {
	Deleted bool
	Values  []any
}

// Page is the decoded in-memory form of one page: its id and the tuples
// currently stored in it, in insertion order.
type Page struct {
	ID     ID
	Tuples []Tuple
}

// New returns an empty page bound to id, ready to be written or added to.
func New(id ID) *Page {
	return &Page{ID: id}
}

// Capacity returns how many tuples of schema s fit in one page.
func Capacity(s schema.Schema) int {
	ts := s.TupleSize()
	if ts <= 0 {
		return 0
	}
	return (Size - HeaderSize) / ts
}

// CanAddTuple reports whether one more tuple of schema s fits in p.
func CanAddTuple(p *Page, s schema.Schema) bool {
	ts := s.TupleSize()
	return HeaderSize+(len(p.Tuples)+1)*ts <= Size
}

// AddTuple appends t to p. Callers must have checked CanAddTuple first.
func AddTuple(p *Page, t Tuple) {
	p.Tuples = append(p.Tuples, t)
}

// Encode serializes p into exactly Size bytes per s's column layout:
// big-endian tuple_count header, tuples in insertion order, zero padding.
func Encode(p *Page, s schema.Schema) ([]byte, error) {
	buf := make([]byte, Size)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(p.Tuples)))
	// buf[4:32] already zero (reserved).

	ts := s.TupleSize()
	off := HeaderSize
	for i, t := range p.Tuples {
		if off+ts > Size {
			return nil, fmt.Errorf("page: tuple %d overflows page %d", i, p.ID)
		}
		if err := encodeTuple(buf[off:off+ts], t, s); err != nil {
			return nil, fmt.Errorf("page: encode tuple %d: %w", i, err)
		}
		off += ts
	}
	return buf, nil
}

// Decode reads tuple_count tuples of schema s out of buf, which must be
// exactly Size bytes. Bytes past the last tuple are ignored.
func Decode(buf []byte, id ID, s schema.Schema) (*Page, error) {
	if len(buf) != Size {
		return nil, fmt.Errorf("page: decode: want %d bytes, got %d", Size, len(buf))
	}
	count := binary.BigEndian.Uint32(buf[0:4])
	ts := s.TupleSize()

	p := &Page{ID: id}
	off := HeaderSize
	for i := uint32(0); i < count; i++ {
		if off+ts > Size {
			return nil, fmt.Errorf("page: decode: tuple_count %d overflows page bounds", count)
		}
		t, err := decodeTuple(buf[off:off+ts], s)
		if err != nil {
			return nil, fmt.Errorf("page: decode tuple %d: %w", i, err)
		}
		p.Tuples = append(p.Tuples, t)
		off += ts
	}
	return p, nil
}

func encodeTuple(buf []byte, t Tuple, s schema.Schema) error {
	if len(t.Values) != len(s.Columns) {
		return fmt.Errorf("want %d values, got %d", len(s.Columns), len(t.Values))
	}
	if t.Deleted {
		buf[0] = 1
	}
	// buf[1:8] already zero (reserved).

	off := schema.TupleHeaderWidth
	for i, col := range s.Columns {
		w := col.Width()
		if err := encodeValue(buf[off:off+w], col, t.Values[i]); err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
		off += w
	}
	return nil
}

func decodeTuple(buf []byte, s schema.Schema) (Tuple, error) {
	t := Tuple{Deleted: buf[0] != 0}
	t.Values = make([]any, len(s.Columns))

	off := schema.TupleHeaderWidth
	for i, col := range s.Columns {
		w := col.Width()
		v, err := decodeValue(buf[off:off+w], col)
		if err != nil {
			return Tuple{}, fmt.Errorf("column %q: %w", col.Name, err)
		}
		t.Values[i] = v
		off += w
	}
	return t, nil
}

func encodeValue(buf []byte, col schema.Column, v any) error {
	switch col.Type {
	case schema.Int:
		n, ok := v.(int32)
		if !ok {
			return fmt.Errorf("want int32, got %T", v)
		}
		binary.BigEndian.PutUint32(buf, uint32(n))
		return nil
	case schema.Text:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		if len(s) > schema.TextMaxLen {
			return fmt.Errorf("text value of length %d exceeds max %d", len(s), schema.TextMaxLen)
		}
		buf[0] = byte(len(s))
		// Payload bytes past len(s) stay zero (fresh slice).
		copy(buf[1:1+len(s)], s)
		return nil
	default:
		return fmt.Errorf("unknown column type %v", col.Type)
	}
}

func decodeValue(buf []byte, col schema.Column) (any, error) {
	switch col.Type {
	case schema.Int:
		return int32(binary.BigEndian.Uint32(buf)), nil
	case schema.Text:
		l := int(buf[0])
		if l > schema.TextMaxLen {
			return nil, fmt.Errorf("corrupt text length %d", l)
		}
		return string(buf[1 : 1+l]), nil
	default:
		return nil, fmt.Errorf("unknown column type %v", col.Type)
	}
}
