package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wim-web/novadb/internal/dberrors"
)

// Parse parses a single statement. Policy mirrors the pack's own parser
// entrypoint: the statement MUST end with ';', trimmed before dispatch.
func Parse(q string) (Statement, error) {
	s := strings.TrimSpace(q)
	if s == "" {
		return nil, parseErrf("empty statement")
	}
	if !strings.HasSuffix(s, ";") {
		return nil, parseErrf("missing ';' terminator")
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return nil, parseErrf("empty statement")
	}

	toks := tokenize(s)
	if len(toks) == 0 {
		return nil, parseErrf("empty statement")
	}

	switch toks[0] {
	case "select":
		return parseSelect(toks)
	case "insert":
		return parseInsert(toks)
	case "exit":
		return parseExit(toks)
	default:
		return nil, parseErrf("unknown verb %q", toks[0])
	}
}

func parseSelect(toks []string) (Statement, error) {
	if len(toks) != 4 || toks[1] != "*" || toks[2] != "from" {
		return nil, parseErrf("malformed select: want 'select * from <table>'")
	}
	return &SelectStmt{Table: toks[3]}, nil
}

func parseExit(toks []string) (Statement, error) {
	if len(toks) != 1 {
		return nil, parseErrf("malformed exit: want 'exit'")
	}
	return &ExitStmt{}, nil
}

func parseInsert(toks []string) (Statement, error) {
	if len(toks) < 4 || toks[1] != "into" {
		return nil, parseErrf("malformed insert: want 'insert into <table> ( ... )'")
	}
	table := toks[2]
	rest := toks[3:]
	if len(rest) < 2 || rest[0] != "(" || rest[len(rest)-1] != ")" {
		return nil, parseErrf("malformed insert: expected '( col=val ... )'")
	}

	attrs := make(map[string]any)
	for _, pair := range rest[1 : len(rest)-1] {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, parseErrf("malformed attribute %q", pair)
		}
		key, valStr := kv[0], kv[1]
		if _, dup := attrs[key]; dup {
			return nil, parseErrf("column %q appears more than once", key)
		}

		if strings.HasPrefix(valStr, "'") {
			if len(valStr) < 2 || !strings.HasSuffix(valStr, "'") {
				return nil, parseErrf("malformed text literal %q", valStr)
			}
			attrs[key] = valStr[1 : len(valStr)-1]
			continue
		}

		n, err := strconv.ParseInt(valStr, 10, 32)
		if err != nil {
			return nil, parseErrf("malformed int literal %q", valStr)
		}
		attrs[key] = int32(n)
	}

	return &InsertStmt{Table: table, Attrs: attrs}, nil
}

// tokenize splits on whitespace, treating a single-quoted span as one token
// even when it contains spaces.
func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
			cur.WriteRune(r)
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

func parseErrf(format string, args ...any) error {
	return fmt.Errorf("query: %w: "+format, append([]any{dberrors.ErrParse}, args...)...)
}
