package geo

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"github.com/epifield/regionpatch/internal/model"
)

// entry is one projected polygon in the R-tree, pointing back at its
// region. Multi-polygon regions insert one entry per polygon so bounding
// boxes stay tight (a country with overseas islands would otherwise cover
// the whole continent).
type entry struct {
	id      string
	name    string
	polygon orb.Polygon
	rect    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is a read-only nearest-polygon index over one boundary set.
// It is built once per level and safe for concurrent queries after
// construction.
type Index struct {
	tree        *rtreego.Rtree
	level       int
	maxDistance float64
	regions     int
}

// BuildIndex projects every region of the set into the EPSG:3035 plane
// and indexes the polygons by bounding box. maxDistance is the search
// radius in metres beyond which queries return no match.
func BuildIndex(set *model.BoundarySet, maxDistance float64) (*Index, error) {
	tree := rtreego.NewTree(2, 25, 50)

	for _, r := range set.Regions {
		// Clone first: project mutates the geometry in place, and
		// regions are immutable once loaded.
		projected := project.Geometry(orb.Clone(r.Geometry), ToLAEA)

		switch g := projected.(type) {
		case orb.Polygon:
			e, err := newEntry(r.ID, r.Name, g)
			if err != nil {
				return nil, err
			}
			tree.Insert(e)
		case orb.MultiPolygon:
			for _, poly := range g {
				e, err := newEntry(r.ID, r.Name, poly)
				if err != nil {
					return nil, err
				}
				tree.Insert(e)
			}
		}
	}

	return &Index{
		tree:        tree,
		level:       set.Level,
		maxDistance: maxDistance,
		regions:     set.Len(),
	}, nil
}

// newEntry builds an R-tree entry from a projected polygon.
func newEntry(id, name string, poly orb.Polygon) (*entry, error) {
	b := poly.Bound()

	// rtreego requires strictly positive side lengths; degenerate
	// polygons get a hair of extent.
	const minExtent = 1e-6
	dx := math.Max(b.Max[0]-b.Min[0], minExtent)
	dy := math.Max(b.Max[1]-b.Min[1], minExtent)

	rect, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{dx, dy})
	if err != nil {
		return nil, err
	}

	return &entry{id: id, name: name, polygon: poly, rect: rect}, nil
}

// Level returns the granularity level the index covers.
func (idx *Index) Level() int {
	return idx.level
}

// Regions returns the number of indexed regions.
func (idx *Index) Regions() int {
	return idx.regions
}

// MaxDistance returns the search radius in metres.
func (idx *Index) MaxDistance() float64 {
	return idx.maxDistance
}

// Nearest returns the region whose polygon is closest to the projected
// query point, with the planar distance in metres, provided that distance
// is within the search radius. ok is false when no polygon is in range.
//
// Candidate polygons are collected through the R-tree with a window of
// half-side maxDistance: Euclidean distance dominates Chebyshev distance,
// so every polygon within range intersects the window. Candidates are
// then refined by exact point-to-polygon distance. At exactly equal
// distances the region with the lexicographically smaller identifier
// wins, making results reproducible regardless of tree order.
func (idx *Index) Nearest(pt orb.Point) (id, name string, distance float64, ok bool) {
	window, err := rtreego.NewRect(
		rtreego.Point{pt[0] - idx.maxDistance, pt[1] - idx.maxDistance},
		[]float64{2 * idx.maxDistance, 2 * idx.maxDistance},
	)
	if err != nil {
		return "", "", 0, false
	}

	best := math.Inf(1)
	var bestEntry *entry

	for _, candidate := range idx.tree.SearchIntersect(window) {
		e := candidate.(*entry)
		d := polygonDistance(e.polygon, pt)
		if d > idx.maxDistance {
			continue
		}
		if d < best || (d == best && e.id < bestEntry.id) {
			best = d
			bestEntry = e
		}
	}

	if bestEntry == nil {
		return "", "", 0, false
	}
	return bestEntry.id, bestEntry.name, best, true
}

// polygonDistance returns the planar distance from pt to the polygon:
// zero when the point is inside, otherwise the distance to the boundary.
func polygonDistance(poly orb.Polygon, pt orb.Point) float64 {
	if planar.PolygonContains(poly, pt) {
		return 0
	}
	return planar.DistanceFrom(poly, pt)
}
