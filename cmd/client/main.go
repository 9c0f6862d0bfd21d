// Command client is a REPL for the novadb wire protocol.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

// ---- HTTP client ----

// Client talks the raw wire protocol: one POST per statement, status
// always 200, body is the pre-formatted result or a single-line error.
type Client struct {
	addr string
	http *http.Client
}

func Dial(addr string, timeout time.Duration) *Client {
	return &Client{addr: addr, http: &http.Client{Timeout: timeout}}
}

func (c *Client) Exec(stmt string) (string, error) {
	resp, err := c.http.Post("http://"+c.addr+"/", "text/plain", strings.NewReader(stmt))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(body), "\n"), nil
}

// ---- statement accumulation ----

// stmtBuilder assembles a possibly multi-line statement, tracking quote
// state incrementally across Feed calls rather than rescanning the whole
// buffer on every keystroke: a single-quoted span may itself contain the
// newline the REPL just read, so the parity of quotes has to survive
// across lines.
type stmtBuilder struct {
	parts   []string
	inQuote bool
}

// Feed appends one line of input and reports whether the accumulated text
// now ends a statement (an unquoted ';' was seen somewhere in line).
func (b *stmtBuilder) Feed(line string) (done bool) {
	b.parts = append(b.parts, line)
	for _, r := range line {
		switch r {
		case '\'':
			b.inQuote = !b.inQuote
		case ';':
			if !b.inQuote {
				done = true
			}
		}
	}
	return done
}

func (b *stmtBuilder) Pending() bool { return len(b.parts) > 0 }

// Take returns the assembled statement and resets the builder.
func (b *stmtBuilder) Take() string {
	s := strings.TrimSpace(strings.Join(b.parts, " "))
	b.parts = nil
	b.inQuote = false
	return s
}

func (b *stmtBuilder) Reset() {
	b.parts = nil
	b.inQuote = false
}

// squash collapses a (possibly multi-line) statement into one history
// line: every run of whitespace becomes a single space.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ---- history file ----

// history is an append-only log of executed statements, one per line,
// kept both on disk and as an in-memory tail for \history.
type history struct {
	path string
	log  []string
}

func openHistory(path string, maxLines int) *history {
	h := &history{path: path}
	if path == "" {
		return h
	}

	f, err := os.Open(path)
	if err != nil {
		return h
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			h.log = append(h.log, line)
		}
	}
	if maxLines > 0 && len(h.log) > maxLines {
		h.log = h.log[len(h.log)-maxLines:]
	}
	return h
}

func (h *history) Record(stmt string) {
	stmt = squash(strings.TrimSpace(stmt))
	if stmt == "" {
		return
	}
	h.log = append(h.log, stmt)

	if h.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	_, _ = fmt.Fprintln(f, stmt)
}

// Tail prints the last n entries, numbered from the start of the log.
func (h *history) Tail(n int) {
	start := 0
	if n > 0 && n < len(h.log) {
		start = len(h.log) - n
	}
	for i := start; i < len(h.log); i++ {
		fmt.Printf("%5d  %s\n", i+1, h.log[i])
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novadb_history"
	}
	return filepath.Join(home, ".novadb_history")
}

// ---- REPL ----

// repl owns one interactive session: the wire client, the on-disk
// history, and the statement currently being assembled.
type repl struct {
	cli  *Client
	hist *history
	rl   *readline.Instance
	buf  stmtBuilder
}

// metaCommands maps a \-prefixed (or bare "quit") input line to its
// handler. A handler returning true ends the session.
var metaCommands = map[string]func(*repl) bool{
	"\\q": func(*repl) bool { return true },
	"quit": func(*repl) bool { return true },
	"\\history": func(r *repl) bool {
		r.hist.Tail(50)
		return false
	},
	"\\help": func(*repl) bool {
		fmt.Println(`meta commands:
  \q | quit               quit the client (does not stop the server)
  \history                print history
  \help                   show help

statements end with ';'; multiline input is supported.
"exit;" is a real statement: it flushes the server's buffer pool and
shuts the server down.`)
		return false
	},
}

// isMeta reports whether line should be dispatched through metaCommands.
// "exit" never matches — that is a real wire statement, not a client-side
// command.
func isMeta(line string) bool {
	return strings.HasPrefix(line, "\\") || line == "quit"
}

func (r *repl) dispatchMeta(line string) (exit bool) {
	handler, ok := metaCommands[line]
	if !ok {
		fmt.Printf("unknown command: %s\n", line)
		return false
	}
	return handler(r)
}

// handleLine feeds one line of input into the pending statement and, once
// complete, executes it. Reports whether the session should end.
func (r *repl) handleLine(line string) (exit bool) {
	if !r.buf.Feed(line) {
		r.rl.SetPrompt("...> ")
		return false
	}

	stmt := r.buf.Take()
	r.rl.SetPrompt("novadb> ")

	r.hist.Record(stmt)
	_ = r.rl.SaveHistory(squash(stmt))

	result, err := r.cli.Exec(stmt)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return false
	}
	fmt.Println(result)
	return stmt == "exit;"
}

func (r *repl) run() {
	fmt.Printf("connected to %s\n", r.cli.addr)
	fmt.Println("type \\help for help")

	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			if r.buf.Pending() {
				r.buf.Reset()
				r.rl.SetPrompt("novadb> ")
				continue
			}
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isMeta(line) {
			if r.dispatchMeta(line) {
				return
			}
			continue
		}

		if r.handleLine(line) {
			return
		}
	}
}

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:8080", "server address")
		timeout  = flag.Duration("timeout", 3*time.Second, "request timeout")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		histMax  = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShot  = flag.String("c", "", "execute one statement and exit (must end with ';')")
	)
	flag.Parse()

	cli := Dial(*addr, *timeout)

	if strings.TrimSpace(*oneShot) != "" {
		result, err := cli.Exec(*oneShot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(result)
		return
	}

	hist := openHistory(*histPath, *histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "novadb> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range hist.log {
		_ = rl.SaveHistory(line)
	}

	(&repl{cli: cli, hist: hist, rl: rl}).run()
}
