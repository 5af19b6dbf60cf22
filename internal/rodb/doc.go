// Package rodb provides strictly read-only access to a SQLite database file.
//
// This package manages:
//   - Opening a database in read-only mode with a fixed read-tuning profile
//   - Parameterised query execution with text-only results
//   - Handle lifecycle (idempotent close, no leaked connections)
//
// All statement execution against one handle is serialised through an
// internal mutex: the underlying connection is never touched by two
// goroutines at once, and Close waits behind any in-flight query.
//
// Results are plain values. Every column name and cell is copied out of the
// driver before a Result is returned, so results can be handed to other
// goroutines freely. NULL and non-text cells are coerced to their text
// representation; NULL becomes the empty string.
//
// Usage:
//
//	db, err := rodb.Open(rodb.Config{Path: "catalogue.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	res, err := db.Query(ctx, "SELECT name FROM parts WHERE kind = ?", []string{"bolt"})
//
// Tuning Profile:
//
// Open applies a fixed set of pragmas aimed at read throughput: journaling
// and sync durability off, a 64,000-page cache, 256 MiB of memory-mapped
// I/O, in-memory temp storage, and query_only as a session-level guard.
// Pragma failures are best-effort and never fail Open.
package rodb
