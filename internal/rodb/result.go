package rodb

// Result holds the tabular outcome of one query.
//
// Columns are in statement order and Values preserves the engine's row
// order. Every row has exactly len(Columns) cells. All cells are text;
// NULL cells are the empty string.
//
// A Result owns all of its memory; nothing points back into driver or
// statement state, so it is safe to move across goroutines after a single
// ownership handoff.
type Result struct {
	Columns []string
	Values  [][]string
}

// RowCount returns the number of rows in the result.
func (r *Result) RowCount() int {
	return len(r.Values)
}

// Empty reports whether the result contains no rows.
func (r *Result) Empty() bool {
	return len(r.Values) == 0
}
