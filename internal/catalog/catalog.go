// Package catalog loads the table/column schema document at startup and
// answers schema lookups by table name.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wim-web/novadb/internal/dberrors"
	"github.com/wim-web/novadb/internal/schema"
)

// jsonDoc mirrors the on-disk catalog shape: {schemas:[{table:{name, columns:[{name,types}]}}]}.
type jsonDoc struct {
	Schemas []jsonEntry `json:"schemas"`
}

type jsonEntry struct {
	Table jsonTable `json:"table"`
}

type jsonTable struct {
	Name    string       `json:"name"`
	Columns []jsonColumn `json:"columns"`
}

type jsonColumn struct {
	Name  string `json:"name"`
	Types string `json:"types"`
}

// Catalog is the in-memory, O(1)-by-name table schema registry.
type Catalog struct {
	tables map[string]schema.Schema
}

// NewForTest returns a Catalog backed directly by tables, bypassing the
// JSON document. Exported for use by other packages' tests that need a
// schema lookup without writing a catalog file.
func NewForTest(tables map[string]schema.Schema) *Catalog {
	return &Catalog{tables: tables}
}

// Load reads and parses the catalog document at path.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w: %w", path, dberrors.ErrIO, err)
	}

	var doc jsonDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", path, err)
	}

	tables := make(map[string]schema.Schema, len(doc.Schemas))
	for _, entry := range doc.Schemas {
		s := schema.Schema{Table: entry.Table.Name}
		for _, c := range entry.Table.Columns {
			ct, err := schema.ParseColumnType(c.Types)
			if err != nil {
				return nil, fmt.Errorf("catalog: table %q column %q: %w", entry.Table.Name, c.Name, err)
			}
			s.Columns = append(s.Columns, schema.Column{Name: c.Name, Type: ct})
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		tables[s.Table] = s
	}

	return &Catalog{tables: tables}, nil
}

// Schema returns table's schema, or a wrapped dberrors.ErrCatalogMiss.
func (c *Catalog) Schema(table string) (schema.Schema, error) {
	s, ok := c.tables[table]
	if !ok {
		return schema.Schema{}, fmt.Errorf("catalog: table %q: %w", table, dberrors.ErrCatalogMiss)
	}
	return s, nil
}

// Tables returns every known table name, in no particular order.
func (c *Catalog) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}
