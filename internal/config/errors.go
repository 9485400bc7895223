package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. They are
// package-level sentinel errors so callers can use errors.Is() for
// programmatic handling while still getting readable messages.
var (
	// ErrNoBaseURL is returned when the boundary source base URL is empty.
	ErrNoBaseURL = errors.New("no boundary source: base URL must not be empty")

	// ErrNoVintages is returned when the vintage list is empty.
	// Without at least one vintage there is no boundary data to merge.
	ErrNoVintages = errors.New("no vintages: provide at least one dataset release year")

	// ErrDuplicateVintage is returned when the same vintage year appears
	// twice. The merge precedence is positional, so duplicates are
	// almost certainly a configuration mistake.
	ErrDuplicateVintage = errors.New("duplicate vintage: each release year may appear once")

	// ErrInvalidMaxDistance is returned when the maximum resolution
	// distance is not positive. A zero bound would leave every point
	// unresolved.
	ErrInvalidMaxDistance = errors.New("invalid max distance: must be positive")

	// ErrInvalidFetchTimeout is returned when the fetch timeout is not
	// positive. A zero timeout would fail every download immediately.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidConcurrency is returned when the file concurrency is not
	// positive. Zero concurrency would mean no files are patched.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRateLimit is returned when the download rate limit is
	// not positive.
	ErrInvalidRateLimit = errors.New("invalid rate limit: requests per second must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
