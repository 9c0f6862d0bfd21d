// Package wire implements the external request surface: a minimal
// HTTP/1.1 front end plus the engine that turns one query string into a
// response body.
package wire

import (
	"fmt"
	"strings"

	"github.com/wim-web/novadb/internal/bufferpool"
	"github.com/wim-web/novadb/internal/catalog"
	"github.com/wim-web/novadb/internal/executor"
	"github.com/wim-web/novadb/internal/query"
	"github.com/wim-web/novadb/internal/schema"
)

// Engine binds the catalog, buffer pool, and executor into the single
// verb the wire protocol exposes: execute one query, get one response.
type Engine struct {
	Catalog *catalog.Catalog
	BP      *bufferpool.Manager
	Exec    *executor.Executor
}

// Execute parses and runs one terminated query. exit reports whether the
// caller should shut the server down (the "exit;" statement); err, when
// non-nil, is the taxonomy error (§7) to surface verbatim as the body.
func (e *Engine) Execute(q string) (result string, exit bool, err error) {
	stmt, err := query.Parse(q)
	if err != nil {
		return "", false, err
	}

	switch st := stmt.(type) {
	case *query.SelectStmt:
		rows, err := e.Exec.Scan(st.Table)
		if err != nil {
			return "", false, err
		}
		s, err := e.Catalog.Schema(st.Table)
		if err != nil {
			return "", false, err
		}
		return formatRows(s, rows), false, nil

	case *query.InsertStmt:
		if err := e.Exec.Insert(st.Table, st.Attrs); err != nil {
			return "", false, err
		}
		return "ok", false, nil

	case *query.ExitStmt:
		if err := e.BP.FlushAll(); err != nil {
			return "", true, err
		}
		return "exit", true, nil

	default:
		return "", false, fmt.Errorf("wire: unhandled statement type %T", stmt)
	}
}

// formatRows renders scan results as "{col:val, ...}" lines followed by
// "total: <n>", per §6's query grammar.
func formatRows(s schema.Schema, rows []map[string]any) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(formatRow(s, row))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "total: %d", len(rows))
	return b.String()
}

func formatRow(s schema.Schema, row map[string]any) string {
	parts := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		v := row[col.Name]
		switch col.Type {
		case schema.Int:
			parts[i] = fmt.Sprintf("%s:%d", col.Name, v.(int32))
		case schema.Text:
			parts[i] = fmt.Sprintf("%s:%q", col.Name, v.(string))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
