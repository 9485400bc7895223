package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyTable is returned when a CSV file has no header row.
var ErrEmptyTable = errors.New("table has no header row")

// Table is an in-memory CSV table with named columns.
type Table struct {
	// Path is where the table was read from and is written back to.
	Path string

	// Header holds the column names in file order.
	Header []string

	// Rows holds the data rows. Every row has exactly len(Header) cells.
	Rows [][]string
}

// Read loads the CSV table at path. Rows shorter than the header are
// padded with empty cells and longer rows are truncated, so downstream
// column splicing never has to deal with ragged input.
func Read(path string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided table path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // Normalized below against the header.

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		rows = append(rows, row)
	}

	return &Table{Path: path, Header: header, Rows: rows}, nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// DropColumns removes the named columns wherever present. Unknown names
// are ignored, which makes repeated patch runs idempotent rather than
// additive.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	keep := make([]int, 0, len(t.Header))
	for i, h := range t.Header {
		if _, ok := drop[h]; !ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Header) {
		return
	}

	header := make([]string, len(keep))
	for i, src := range keep {
		header[i] = t.Header[src]
	}
	t.Header = header

	for ri, row := range t.Rows {
		next := make([]string, len(keep))
		for i, src := range keep {
			next[i] = row[src]
		}
		t.Rows[ri] = next
	}
}

// AppendColumns adds empty columns with the given names and returns the
// index of the first new column. Every row grows by len(names) empty cells.
func (t *Table) AppendColumns(names ...string) int {
	start := len(t.Header)
	t.Header = append(t.Header, names...)
	for ri, row := range t.Rows {
		t.Rows[ri] = append(row, make([]string, len(names))...)
	}
	return start
}

// Write saves the table back to its path. The CSV is written to a
// temporary file in the same directory and renamed into place, so a
// failed write never truncates the original data.
func (t *Table) Write() error {
	dir := filepath.Dir(t.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(t.Path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary table file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // No-op after successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Header); err != nil {
		_ = tmp.Close() //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to write table header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		_ = tmp.Close() //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to write table rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close() //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to flush table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}

	if err := os.Rename(tmp.Name(), t.Path); err != nil {
		return fmt.Errorf("failed to replace table: %w", err)
	}
	return nil
}
