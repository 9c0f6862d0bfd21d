// Package schema describes table shapes: column names, types, and the
// fixed-width byte layout those types imply on disk.
package schema

import "fmt"

// ColumnType enumerates the two column kinds this engine supports.
type ColumnType uint8

const (
	Int ColumnType = iota
	Text
)

func (t ColumnType) String() string {
	switch t {
	case Int:
		return "int"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// ParseColumnType maps the catalog's JSON type string onto a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "int":
		return Int, nil
	case "text":
		return Text, nil
	default:
		return 0, fmt.Errorf("schema: unknown column type %q", s)
	}
}

// Sizes of a column's encoded body, excluding the tuple header.
const (
	IntWidth      = 4
	TextLenWidth  = 1
	TextMaxLen    = 255
	TextBodyWidth = TextLenWidth + TextMaxLen
)

// Column is one ordered field of a table.
type Column struct {
	Name string
	Type ColumnType
}

// Width returns the encoded body width of this column's type.
func (c Column) Width() int {
	switch c.Type {
	case Int:
		return IntWidth
	case Text:
		return TextBodyWidth
	default:
		return 0
	}
}

// Schema is the ordered, named column list of one table.
type Schema struct {
	Table   string
	Columns []Column
}

// TupleHeaderWidth is the 8-byte deleted-flag-plus-reserved tuple header.
const TupleHeaderWidth = 8

// TupleSize returns 8 + sum(column widths), the fixed per-tuple byte count.
func (s Schema) TupleSize() int {
	n := TupleHeaderWidth
	for _, c := range s.Columns {
		n += c.Width()
	}
	return n
}

// ColumnIndex returns the position of name in s.Columns, or -1.
func (s Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks column-name uniqueness, the shape §3 requires of a catalog entry.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("schema: duplicate column %q in table %q", c.Name, s.Table)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
