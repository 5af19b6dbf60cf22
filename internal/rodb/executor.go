package rodb

import (
	"context"
	"database/sql"
	"fmt"
)

// Query prepares and runs one SQL statement to completion.
//
// Parameters are bound positionally to placeholders 1..N as text values.
// No type inference is performed, so numeric or boolean parameters must be
// pre-stringified by the caller. Binding fewer parameters than the
// statement has placeholders is an error, never a silent NULL.
//
// Column names are captured once the statement is prepared; rows are
// accumulated in engine order. Every cell is copied into owned memory
// before the statement is released, so the returned Result is safe to hand
// to another goroutine.
//
// The call holds the handle mutex for its full duration: at most one
// statement executes against the connection at any instant, for both this
// synchronous path and the dispatcher's workers.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - sqlText: SQL with ? placeholders
//   - params: Text parameter values bound in order (may be nil)
//
// Returns:
//   - *Result: Columns and rows on success (never nil on nil error)
//   - error: ErrNotOpen, ErrPrepare, or ErrExecution wrapping the engine message
func (db *DB) Query(ctx context.Context, sqlText string, params []string) (*Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.db == nil {
		return nil, ErrNotOpen
	}

	stmt, err := db.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrepare, err)
	}
	defer stmt.Close() //nolint:errcheck // Statement released on every exit path

	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	defer rows.Close() //nolint:errcheck // Rows released on every exit path

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}

	result := &Result{
		Columns: columns,
		Values:  [][]string{},
	}

	// Scan targets; sql.NullString coerces numeric cells to their text
	// representation and maps NULL to empty string.
	cells := make([]sql.NullString, len(columns))
	dests := make([]any, len(columns))
	for i := range cells {
		dests[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecution, err)
		}
		row := make([]string, len(columns))
		for i, cell := range cells {
			if cell.Valid {
				row[i] = cell.String
			}
		}
		result.Values = append(result.Values, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}

	return result, nil
}
