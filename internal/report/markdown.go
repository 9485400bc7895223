package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/epifield/regionpatch/internal/model"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables and GitHub-flavored output.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Region Patch Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Duration.Round(time.Millisecond).String()},
			{"Vintages", formatVintages(run.Vintages)},
			{"Max distance", fmt.Sprintf("%.0f km", run.MaxDistance/1000)},
			{"Files", strconv.Itoa(len(run.Files))},
			{"Failed files", strconv.Itoa(run.FailedFiles())},
		},
	})
	md.PlainText("")

	md.H2("Files")
	rows := make([][]string, 0, len(run.Files))
	for _, f := range run.Files {
		if f.Failed() {
			rows = append(rows, []string{
				"`" + filepath.Base(f.Path) + "`", "-", "-", "-", f.Error,
			})
			continue
		}
		rows = append(rows, []string{
			"`" + filepath.Base(f.Path) + "`",
			strconv.Itoa(f.Rows),
			strconv.Itoa(f.CoordRows),
			fmt.Sprintf("%d (%.1f%%)", f.Matched(), f.MatchRate()*100),
			"",
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Rows", "With coordinates", "Matched (finest)", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Totals")
	md.Table(markdown.TableSet{
		Header: []string{"Rows", "With coordinates", "Matched (finest)"},
		Rows: [][]string{{
			strconv.Itoa(run.TotalRows()),
			strconv.Itoa(run.TotalCoordRows()),
			strconv.Itoa(run.TotalMatched()),
		}},
	})

	return len(md.String()), md.Build()
}
