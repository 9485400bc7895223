package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeCSV writes content to a temp CSV file and returns its path.
func writeCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestRead tests CSV loading and row normalization.
func TestRead(t *testing.T) {
	t.Parallel()

	t.Run("reads header and rows", func(t *testing.T) {
		t.Parallel()

		tbl, err := Read(writeCSV(t, "id,latitude,longitude\n1,48.85,2.35\n2,,\n"))
		if err != nil {
			t.Fatal(err)
		}
		if len(tbl.Header) != 3 {
			t.Errorf("expected 3 columns, got %d", len(tbl.Header))
		}
		if len(tbl.Rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(tbl.Rows))
		}
		if tbl.Rows[0][1] != "48.85" {
			t.Errorf("expected latitude 48.85, got %q", tbl.Rows[0][1])
		}
	})

	t.Run("pads short rows and truncates long rows", func(t *testing.T) {
		t.Parallel()

		tbl, err := Read(writeCSV(t, "a,b,c\n1\n1,2,3,4\n"))
		if err != nil {
			t.Fatal(err)
		}
		for i, row := range tbl.Rows {
			if len(row) != 3 {
				t.Errorf("row %d: expected width 3, got %d", i, len(row))
			}
		}
		if tbl.Rows[0][1] != "" {
			t.Errorf("expected padded empty cell, got %q", tbl.Rows[0][1])
		}
	})

	t.Run("empty file returns ErrEmptyTable", func(t *testing.T) {
		t.Parallel()

		_, err := Read(writeCSV(t, ""))
		if !errors.Is(err, ErrEmptyTable) {
			t.Errorf("expected ErrEmptyTable, got %v", err)
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := Read(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

// TestColumnOps tests column lookup, dropping, and appending.
func TestColumnOps(t *testing.T) {
	t.Parallel()

	t.Run("ColumnIndex finds columns", func(t *testing.T) {
		t.Parallel()

		tbl, err := Read(writeCSV(t, "id,latitude,longitude\n1,48.85,2.35\n"))
		if err != nil {
			t.Fatal(err)
		}
		if got := tbl.ColumnIndex("longitude"); got != 2 {
			t.Errorf("expected index 2, got %d", got)
		}
		if got := tbl.ColumnIndex("nope"); got != -1 {
			t.Errorf("expected -1, got %d", got)
		}
	})

	t.Run("DropColumns removes stale columns and cells", func(t *testing.T) {
		t.Parallel()

		tbl, err := Read(writeCSV(t, "id,level0_id,latitude,level0_name\n1,FR,48.85,France\n"))
		if err != nil {
			t.Fatal(err)
		}

		tbl.DropColumns("level0_id", "level0_name", "not_there")

		if len(tbl.Header) != 2 || tbl.Header[0] != "id" || tbl.Header[1] != "latitude" {
			t.Errorf("unexpected header after drop: %v", tbl.Header)
		}
		if len(tbl.Rows[0]) != 2 || tbl.Rows[0][1] != "48.85" {
			t.Errorf("unexpected row after drop: %v", tbl.Rows[0])
		}
	})

	t.Run("AppendColumns grows every row", func(t *testing.T) {
		t.Parallel()

		tbl, err := Read(writeCSV(t, "id\n1\n2\n"))
		if err != nil {
			t.Fatal(err)
		}

		start := tbl.AppendColumns("x", "y")
		if start != 1 {
			t.Errorf("expected first new column at 1, got %d", start)
		}
		for i, row := range tbl.Rows {
			if len(row) != 3 || row[1] != "" || row[2] != "" {
				t.Errorf("row %d: expected two empty new cells, got %v", i, row)
			}
		}
	})
}

// TestWrite tests the atomic round trip.
func TestWrite(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "id,latitude\n1,48.85\n")
	tbl, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	tbl.AppendColumns("level0_id")
	tbl.Rows[0][2] = "FR"

	if err := tbl.Write(); err != nil {
		t.Fatal(err)
	}

	again, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Rows[0][2] != "FR" {
		t.Errorf("expected persisted FR cell, got %q", again.Rows[0][2])
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the table file in the directory, found %d entries", len(entries))
	}
}
