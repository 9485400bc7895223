package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/epifield/regionpatch/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display: one line per file plus a
// totals section, plain ASCII so it pipes cleanly to files and tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables per-level match counts in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables per-level detail in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report as plain text.
func (w *SimpleWriter) Write(run *model.RunReport) (int, error) {
	var b strings.Builder

	b.WriteString("Region Patch Report\n")
	b.WriteString("===================\n\n")
	fmt.Fprintf(&b, "Started:      %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration:     %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Vintages:     %s\n", formatVintages(run.Vintages))
	fmt.Fprintf(&b, "Max distance: %.0f km\n\n", run.MaxDistance/1000)

	b.WriteString("Files\n")
	b.WriteString("-----\n")
	for _, f := range run.Files {
		if f.Failed() {
			fmt.Fprintf(&b, "  %-40s FAILED: %s\n", filepath.Base(f.Path), f.Error)
			continue
		}
		fmt.Fprintf(&b, "  %-40s %d/%d rows matched (%.1f%%)\n",
			filepath.Base(f.Path), f.Matched(), f.CoordRows, f.MatchRate()*100)
		if w.verbose {
			for level, matched := range f.LevelMatched {
				fmt.Fprintf(&b, "      level %d: %d matched\n", level, matched)
			}
		}
	}

	b.WriteString("\nTotals\n")
	b.WriteString("------\n")
	fmt.Fprintf(&b, "  Files:           %d (%d failed)\n", len(run.Files), run.FailedFiles())
	fmt.Fprintf(&b, "  Rows:            %d\n", run.TotalRows())
	fmt.Fprintf(&b, "  With coordinates: %d\n", run.TotalCoordRows())
	fmt.Fprintf(&b, "  Matched (finest): %d\n", run.TotalMatched())

	return w.output.Write([]byte(b.String()))
}

// formatVintages renders the vintage list as "2024 (primary), 2016".
func formatVintages(vintages []int) string {
	parts := make([]string, len(vintages))
	for i, v := range vintages {
		if i == 0 {
			parts[i] = fmt.Sprintf("%d (primary)", v)
		} else {
			parts[i] = fmt.Sprintf("%d", v)
		}
	}
	return strings.Join(parts, ", ")
}
