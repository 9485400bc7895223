package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// LevelCount is the number of nested granularity levels, numbered 0
// (coarsest, country) through 3 (finest, small region).
const LevelCount = 4

// Region is one administrative region boundary loaded from a vintage of
// the boundary dataset. Regions are immutable once loaded.
type Region struct {
	// ID uniquely identifies the region within a merged boundary set
	// for one level (e.g. "FR", "FR10").
	ID string

	// Name is the display name of the region. Names are not unique;
	// a level-2 region may share its name with its level-3 child.
	Name string

	// Geometry is the region boundary in geographic coordinates
	// (longitude/latitude degrees), either an orb.Polygon or an
	// orb.MultiPolygon.
	Geometry orb.Geometry

	// Vintage is the dataset release year the region was loaded from.
	Vintage int
}

// BoundarySet is the merged collection of regions for exactly one
// granularity level, combined across vintages with primary-first
// precedence. No two regions in a set share an ID.
type BoundarySet struct {
	// Level is the granularity level (0..3) this set covers.
	Level int

	// Regions holds the merged regions in merge order: all primary
	// vintage regions first, then fallback additions.
	Regions []Region

	// FallbackCounts records how many regions each non-primary vintage
	// contributed, keyed by vintage year. Used for logging and reports.
	FallbackCounts map[int]int

	ids map[string]struct{}
}

// NewBoundarySet creates an empty boundary set for the given level.
func NewBoundarySet(level int) *BoundarySet {
	return &BoundarySet{
		Level:          level,
		FallbackCounts: make(map[int]int),
		ids:            make(map[string]struct{}),
	}
}

// Contains reports whether a region with the given ID is already present.
func (s *BoundarySet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add appends a region to the set. It returns false without modifying the
// set if a region with the same ID is already present, which is the only
// collision signal during multi-vintage merging.
func (s *BoundarySet) Add(r Region) bool {
	if s.Contains(r.ID) {
		return false
	}
	s.ids[r.ID] = struct{}{}
	s.Regions = append(s.Regions, r)
	return true
}

// Len returns the number of regions in the set.
func (s *BoundarySet) Len() int {
	return len(s.Regions)
}

// String returns a short description for logging.
func (s *BoundarySet) String() string {
	return fmt.Sprintf("level %d: %d regions", s.Level, len(s.Regions))
}

// LevelIDColumn returns the output column name carrying the region ID for
// the given level (e.g. "level0_id").
func LevelIDColumn(level int) string {
	return fmt.Sprintf("level%d_id", level)
}

// LevelNameColumn returns the output column name carrying the region name
// for the given level (e.g. "level0_name").
func LevelNameColumn(level int) string {
	return fmt.Sprintf("level%d_name", level)
}

// RegionColumns returns all eight output column names in level order:
// level0_id, level0_name, ..., level3_id, level3_name.
func RegionColumns() []string {
	cols := make([]string, 0, 2*LevelCount)
	for level := 0; level < LevelCount; level++ {
		cols = append(cols, LevelIDColumn(level), LevelNameColumn(level))
	}
	return cols
}
