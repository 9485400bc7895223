package report

import (
	"io"

	"github.com/epifield/regionpatch/internal/model"
)

// Writer defines the interface for run-report output.
// Implementations write the same statistics in different formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.RunReport) (int, error)
}

// baseWriter holds the shared output destination.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter over the given destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
