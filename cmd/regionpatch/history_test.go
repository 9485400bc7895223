package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/epifield/regionpatch/internal/database"
	"github.com/epifield/regionpatch/internal/model"
)

// seedHistoryDB creates a temp run database with one recorded run.
func seedHistoryDB(t *testing.T) *database.RunDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	run := &model.RunReport{
		StartedAt:   time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Duration:    time.Minute,
		Vintages:    []int{2024, 2016},
		MaxDistance: 50_000,
		Files: []*model.FileReport{
			{
				Path:         "data/sites.csv",
				Rows:         100,
				CoordRows:    90,
				LevelMatched: [model.LevelCount]int{90, 88, 85, 80},
			},
			{
				Path:  "data/broken.csv",
				Error: "missing coordinate columns",
			},
		},
	}
	if _, err := db.SaveRunReport(context.Background(), run); err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}

	return db
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"limit", "files", "file", "json"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})
}

// TestPrintRuns tests the run listing output.
func TestPrintRuns(t *testing.T) {
	t.Parallel()

	t.Run("prints run summary", func(t *testing.T) {
		t.Parallel()

		db := seedHistoryDB(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := printRuns(context.Background(), cmd, db, 10, false, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "2026-08-30 09:00:00") {
			t.Errorf("expected run start time, got %q", output)
		}
		if !strings.Contains(output, "matched: 80/90 rows (88.9%)") {
			t.Errorf("expected match summary, got %q", output)
		}
		if !strings.Contains(output, "(1 failed)") {
			t.Errorf("expected failed-file count, got %q", output)
		}
	})

	t.Run("includes per-file lines with files flag", func(t *testing.T) {
		t.Parallel()

		db := seedHistoryDB(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := printRuns(context.Background(), cmd, db, 10, true, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "data/sites.csv: 80/90 rows matched") {
			t.Errorf("expected per-file line, got %q", output)
		}
		if !strings.Contains(output, "data/broken.csv: FAILED") {
			t.Errorf("expected failed-file line, got %q", output)
		}
	})

	t.Run("json output is machine readable", func(t *testing.T) {
		t.Parallel()

		db := seedHistoryDB(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := printRuns(context.Background(), cmd, db, 10, false, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"Vintages": "2024,2016"`) {
			t.Errorf("expected JSON vintages field, got %q", buf.String())
		}
	})
}

// TestPrintFileHistory tests the per-path history output.
func TestPrintFileHistory(t *testing.T) {
	t.Parallel()

	t.Run("prints history for known path", func(t *testing.T) {
		t.Parallel()

		db := seedHistoryDB(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := printFileHistory(context.Background(), cmd, db, "data/sites.csv", 10, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "History for data/sites.csv") {
			t.Errorf("expected history heading, got %q", output)
		}
		if !strings.Contains(output, "80/90 rows matched") {
			t.Errorf("expected match line, got %q", output)
		}
	})

	t.Run("reports unknown path", func(t *testing.T) {
		t.Parallel()

		db := seedHistoryDB(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := printFileHistory(context.Background(), cmd, db, "data/unknown.csv", 10, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No recorded runs for data/unknown.csv") {
			t.Errorf("expected no-history message, got %q", buf.String())
		}
	})
}
