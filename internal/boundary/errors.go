package boundary

import (
	"errors"
	"fmt"
)

// Sentinel errors for boundary acquisition and parsing.
var (
	// ErrEmptyCollection is returned when a boundary file parses
	// cleanly but contains no usable region features. An empty level
	// cannot resolve anything, so it is treated like a parse failure.
	ErrEmptyCollection = errors.New("boundary collection contains no regions")

	// ErrMissingID is returned when a feature lacks the configured
	// identifier property. A file with unidentifiable regions cannot be
	// partially trusted.
	ErrMissingID = errors.New("feature is missing the region identifier property")

	// ErrUnsupportedGeometry is returned when a feature's geometry is
	// neither a polygon nor a multi-polygon.
	ErrUnsupportedGeometry = errors.New("feature geometry is not a polygon or multi-polygon")
)

// AcquisitionError describes a failed boundary download: an I/O error, a
// non-success HTTP status, or a storage failure while persisting the file.
// It is fatal for the level being built.
type AcquisitionError struct {
	// Vintage and Level identify the boundary file that failed.
	Vintage int
	Level   int

	// URL is the address of the attempted download.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire boundaries (vintage %d, level %d) from %s: %v",
		e.Vintage, e.Level, e.URL, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// ParseError describes a structurally invalid boundary file.
// It is fatal for the level being built: a corrupt file cannot be
// partially trusted.
type ParseError struct {
	// Path is the local path of the file that failed to parse.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse boundary file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *ParseError) Unwrap() error {
	return e.Err
}
