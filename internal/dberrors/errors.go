// Package dberrors defines the engine's error taxonomy as sentinel values
// so callers can classify failures with errors.Is regardless of which
// component wrapped them.
package dberrors

import "errors"

var (
	// ErrIO marks an underlying file read/write/open/seek failure.
	ErrIO = errors.New("ioerror")
	// ErrCatalogMiss marks a reference to an unknown table.
	ErrCatalogMiss = errors.New("catalog miss")
	// ErrParse marks a malformed query.
	ErrParse = errors.New("parse error")
	// ErrNoFreeFrame marks a buffer pool with every frame pinned.
	ErrNoFreeFrame = errors.New("no free frame")
)
