package rodb

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestQuery_Literal verifies the canonical literal query.
func TestQuery_Literal(t *testing.T) {
	db := openFixture(t)

	result, err := db.Query(context.Background(), "SELECT 1", nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	want := &Result{
		Columns: []string{"1"},
		Values:  [][]string{{"1"}},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("Query() result mismatch (-want +got):\n%s", diff)
	}
}

// TestQuery_TableShape verifies row and cell shape invariants on a known table.
func TestQuery_TableShape(t *testing.T) {
	db := openFixture(t)

	result, err := db.Query(context.Background(), "SELECT id, name, kind, note FROM parts ORDER BY id", nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if result.RowCount() != 3 {
		t.Fatalf("RowCount() = %d, want 3", result.RowCount())
	}
	for i, row := range result.Values {
		if len(row) != len(result.Columns) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(result.Columns))
		}
	}

	want := &Result{
		Columns: []string{"id", "name", "kind", "note"},
		Values: [][]string{
			{"1", "bolt", "fastener", ""},
			{"2", "washer", "fastener", "m8"},
			{"3", "bearing", "rotary", ""},
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("Query() result mismatch (-want +got):\n%s", diff)
	}
}

// TestQuery_NullBecomesEmptyString verifies NULL coercion.
func TestQuery_NullBecomesEmptyString(t *testing.T) {
	db := openFixture(t)

	result, err := db.Query(context.Background(), "SELECT NULL AS n", nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if got := result.Values[0][0]; got != "" {
		t.Errorf("NULL cell = %q, want empty string", got)
	}
}

// TestQuery_ParameterBinding verifies positional text binding.
func TestQuery_ParameterBinding(t *testing.T) {
	db := openFixture(t)

	t.Run("single parameter", func(t *testing.T) {
		result, err := db.Query(context.Background(), "SELECT ? AS x", []string{"abc"})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}

		want := &Result{
			Columns: []string{"x"},
			Values:  [][]string{{"abc"}},
		}
		if diff := cmp.Diff(want, result); diff != "" {
			t.Errorf("Query() result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("filters rows", func(t *testing.T) {
		result, err := db.Query(context.Background(),
			"SELECT name FROM parts WHERE kind = ? ORDER BY id", []string{"fastener"})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}

		want := [][]string{{"bolt"}, {"washer"}}
		if diff := cmp.Diff(want, result.Values); diff != "" {
			t.Errorf("Query() values mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing parameter errors", func(t *testing.T) {
		// Fewer parameters than placeholders is an error, never a silent NULL.
		_, err := db.Query(context.Background(), "SELECT ? AS x", nil)
		if err == nil {
			t.Fatal("Query() with missing parameter should fail")
		}
	})
}

// TestQuery_PrepareError verifies malformed SQL reporting.
func TestQuery_PrepareError(t *testing.T) {
	db := openFixture(t)

	_, err := db.Query(context.Background(), "SELEK 1", nil)
	if !errors.Is(err, ErrPrepare) {
		t.Errorf("Query() error = %v, want ErrPrepare", err)
	}

	_, err = db.Query(context.Background(), "SELECT missing_col FROM parts", nil)
	if !errors.Is(err, ErrPrepare) {
		t.Errorf("Query() error = %v, want ErrPrepare", err)
	}
}

// TestQuery_WriteRejection verifies the read-only guard rejects every
// mutating statement class.
func TestQuery_WriteRejection(t *testing.T) {
	db := openFixture(t)

	stmts := []struct {
		name string
		sql  string
	}{
		{name: "insert", sql: "INSERT INTO parts (name, kind) VALUES ('nut', 'fastener')"},
		{name: "update", sql: "UPDATE parts SET kind = 'other'"},
		{name: "delete", sql: "DELETE FROM parts"},
		{name: "ddl", sql: "CREATE TABLE extra (id INTEGER)"},
	}

	for _, tt := range stmts {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Query(context.Background(), tt.sql, nil)
			if !errors.Is(err, ErrExecution) {
				// Write rejection is a runtime refusal, not a syntax error.
				t.Errorf("Query(%q) error = %v, want ErrExecution", tt.sql, err)
			}
		})
	}

	// Nothing was actually written.
	result, err := db.Query(context.Background(), "SELECT COUNT(*) FROM parts", nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got := result.Values[0][0]; got != "3" {
		t.Errorf("row count after rejected writes = %s, want 3", got)
	}
}

// TestQuery_ResultOwnsMemory verifies a result stays intact after the
// handle is closed.
func TestQuery_ResultOwnsMemory(t *testing.T) {
	db := openFixture(t)

	result, err := db.Query(context.Background(), "SELECT name FROM parts ORDER BY id", nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := [][]string{{"bolt"}, {"washer"}, {"bearing"}}
	if diff := cmp.Diff(want, result.Values); diff != "" {
		t.Errorf("result changed after Close() (-want +got):\n%s", diff)
	}
}
