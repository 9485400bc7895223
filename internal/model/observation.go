package model

// Coordinate is a geographic point observation in degrees.
type Coordinate struct {
	// Lat is the latitude in decimal degrees, positive north.
	Lat float64

	// Lon is the longitude in decimal degrees, positive east.
	Lon float64
}

// ResolutionResult is the region assignment for one observation at one
// granularity level: either an (ID, Name) pair, or empty strings when the
// point lies beyond the maximum resolution distance from every region.
// An unresolved point is a normal outcome, not an error.
type ResolutionResult struct {
	ID   string
	Name string
}

// Resolved reports whether the observation was assigned to a region.
func (r ResolutionResult) Resolved() bool {
	return r.ID != ""
}
