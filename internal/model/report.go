package model

import "time"

// FileReport holds the patch statistics for one input table.
//
// The match counts are an observability signal, not a correctness gate:
// a low match rate usually means the table covers points outside the
// boundary datasets' extent, not that patching failed.
type FileReport struct {
	// Path is the input table path.
	Path string `json:"path"`

	// Rows is the total number of data rows in the table.
	Rows int `json:"rows"`

	// CoordRows is the number of rows that carried both coordinates.
	CoordRows int `json:"coord_rows"`

	// LevelMatched counts, per level, the coordinate-bearing rows that
	// resolved to a region at that level.
	LevelMatched [LevelCount]int `json:"level_matched"`

	// Duration is the wall-clock time spent patching this file.
	Duration time.Duration `json:"duration"`

	// Error holds the failure message when the file could not be
	// patched. A failed file does not abort the rest of the run.
	Error string `json:"error,omitempty"`
}

// Failed reports whether patching this file failed.
func (f *FileReport) Failed() bool {
	return f.Error != ""
}

// Matched returns the number of coordinate rows resolved at the finest
// level, which is the headline match figure.
func (f *FileReport) Matched() int {
	return f.LevelMatched[LevelCount-1]
}

// MatchRate returns the fraction of coordinate-bearing rows resolved at
// the finest level, in [0, 1]. It returns 0 when no row had coordinates.
func (f *FileReport) MatchRate() float64 {
	if f.CoordRows == 0 {
		return 0
	}
	return float64(f.Matched()) / float64(f.CoordRows)
}

// RunReport aggregates the statistics of one patch run across all files.
type RunReport struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run, including
	// boundary loading and index construction.
	Duration time.Duration `json:"duration"`

	// Vintages is the ordered vintage list the run resolved against,
	// primary first.
	Vintages []int `json:"vintages"`

	// MaxDistance is the maximum resolution distance in metres.
	MaxDistance float64 `json:"max_distance_m"`

	// Files holds one report per input table, in input order.
	Files []*FileReport `json:"files"`
}

// TotalRows returns the total data rows across all successfully patched files.
func (r *RunReport) TotalRows() int {
	var n int
	for _, f := range r.Files {
		n += f.Rows
	}
	return n
}

// TotalCoordRows returns the total coordinate-bearing rows across all files.
func (r *RunReport) TotalCoordRows() int {
	var n int
	for _, f := range r.Files {
		n += f.CoordRows
	}
	return n
}

// TotalMatched returns the total rows resolved at the finest level.
func (r *RunReport) TotalMatched() int {
	var n int
	for _, f := range r.Files {
		n += f.Matched()
	}
	return n
}

// FailedFiles returns the number of files that could not be patched.
func (r *RunReport) FailedFiles() int {
	var n int
	for _, f := range r.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}
