package rodb

import "errors"

// Domain errors for the rodb package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, rodb.ErrNotOpen) {
//	    // handle closed-handle case
//	}
//
// Errors that carry an engine message wrap the sentinel, so the SQLite
// diagnostic text passes through verbatim.
var (
	// ErrOpenFailed is returned when the database file cannot be opened
	// read-only: missing file, not a SQLite database, or a permission error.
	ErrOpenFailed = errors.New("rodb: open failed")

	// ErrNotOpen is returned when a query is attempted on a closed handle.
	ErrNotOpen = errors.New("rodb: database not open")

	// ErrPrepare is returned when SQL text fails to compile.
	ErrPrepare = errors.New("rodb: prepare failed")

	// ErrExecution is returned when stepping a prepared statement fails,
	// including write attempts rejected by the read-only guard.
	ErrExecution = errors.New("rodb: execution failed")
)
