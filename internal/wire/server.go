package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.uber.org/atomic"
)

// Run serves the wire protocol on addr until ctx is cancelled (SIGINT/SIGTERM,
// per the pack's signal.NotifyContext convention) or a client sends "exit;".
// A minimal net/http server gives the raw HTTP/1.1 framing §6 calls for
// without hand-rolling request-line/header parsing.
func Run(ctx context.Context, addr string, eng *Engine) error {
	logger := slog.Default().With("component", "wire")
	var reqID atomic.Uint64
	exitRequested := make(chan struct{}, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		id := reqID.Inc()
		body, readErr := io.ReadAll(r.Body)

		// Status is always 200 (§6); the body carries either the result or the error.
		w.WriteHeader(http.StatusOK)
		if readErr != nil {
			fmt.Fprintln(w, readErr.Error())
			return
		}

		result, exit, err := eng.Execute(string(body))
		if err != nil {
			logger.Debug("request failed", "id", id, "err", err)
			fmt.Fprintln(w, err.Error())
			return
		}
		fmt.Fprintln(w, result)

		if exit {
			logger.Info("exit requested", "id", id)
			select {
			case exitRequested <- struct{}{}:
			default:
			}
		}
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	flushOnStop := false
	select {
	case <-ctx.Done():
		// "exit;" already flushed inside Engine.Execute; a signal has not.
		flushOnStop = true
	case <-exitRequested:
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("wire: serve: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("wire: shutdown: %w", err)
	}
	if flushOnStop {
		if err := eng.BP.FlushAll(); err != nil {
			return fmt.Errorf("wire: flush on shutdown: %w", err)
		}
	}
	return nil
}
