package geo

import (
	"github.com/paulmach/orb"

	"github.com/epifield/regionpatch/internal/model"
)

// Resolver assigns point observations to their nearest region at one
// granularity level. Each level's resolver is wholly independent; there
// is no cross-level containment check, so a point's level-3 assignment is
// not guaranteed to nest inside its level-0 assignment. That is a known
// approximation the simplified boundary data does not reliably support.
type Resolver struct {
	index *Index
}

// NewResolver creates a Resolver over the given index.
func NewResolver(index *Index) *Resolver {
	return &Resolver{index: index}
}

// Level returns the granularity level this resolver covers.
func (r *Resolver) Level() int {
	return r.index.Level()
}

// Resolve projects the observation into the index's plane and returns the
// nearest region within the search radius, or the zero ResolutionResult
// when no region is in range. Resolution is deterministic: the same point
// against the same index always yields the same result.
func (r *Resolver) Resolve(c model.Coordinate) model.ResolutionResult {
	pt := ToLAEA(orb.Point{c.Lon, c.Lat})

	id, name, _, ok := r.index.Nearest(pt)
	if !ok {
		return model.ResolutionResult{}
	}
	return model.ResolutionResult{ID: id, Name: name}
}

// ResolveMany resolves a batch of observations, preserving input order.
func (r *Resolver) ResolveMany(coords []model.Coordinate) []model.ResolutionResult {
	results := make([]model.ResolutionResult, len(coords))
	for i, c := range coords {
		results[i] = r.Resolve(c)
	}
	return results
}
