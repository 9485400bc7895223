package geo

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/epifield/regionpatch/internal/model"
)

// squareAround returns a degree-sized square polygon centered on (lon, lat).
func squareAround(lon, lat, halfSide float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{lon - halfSide, lat - halfSide},
		{lon + halfSide, lat - halfSide},
		{lon + halfSide, lat + halfSide},
		{lon - halfSide, lat + halfSide},
		{lon - halfSide, lat - halfSide},
	}}
}

// testSet builds a level-0 boundary set with France and Germany squares.
func testSet(t *testing.T) *model.BoundarySet {
	t.Helper()

	set := model.NewBoundarySet(0)
	set.Add(model.Region{ID: "FR", Name: "France", Geometry: squareAround(2.3, 48.8, 0.5), Vintage: 2024})
	set.Add(model.Region{ID: "DE", Name: "Deutschland", Geometry: squareAround(10.0, 51.0, 0.5), Vintage: 2024})
	return set
}

// TestIndexNearest tests nearest-polygon queries with the distance bound.
func TestIndexNearest(t *testing.T) {
	t.Parallel()

	idx, err := BuildIndex(testSet(t), 50_000)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("point inside a polygon matches at distance zero", func(t *testing.T) {
		t.Parallel()

		id, name, dist, ok := idx.Nearest(ToLAEA(orb.Point{2.35, 48.85}))
		if !ok {
			t.Fatal("expected a match")
		}
		if id != "FR" || name != "France" {
			t.Errorf("expected FR/France, got %s/%s", id, name)
		}
		if dist != 0 {
			t.Errorf("expected distance 0 inside polygon, got %v", dist)
		}
	})

	t.Run("point on the boundary matches at distance zero", func(t *testing.T) {
		t.Parallel()

		// Left edge of the FR square, mid-height.
		_, _, dist, ok := idx.Nearest(ToLAEA(orb.Point{1.8, 48.8}))
		if !ok {
			t.Fatal("expected a match")
		}
		if dist != 0 {
			t.Errorf("expected distance 0 on boundary, got %v", dist)
		}
	})

	t.Run("point slightly outside matches within the bound", func(t *testing.T) {
		t.Parallel()

		// ~15 km west of the FR square's left edge.
		id, _, dist, ok := idx.Nearest(ToLAEA(orb.Point{1.6, 48.8}))
		if !ok {
			t.Fatal("expected a coastal-style near match")
		}
		if id != "FR" {
			t.Errorf("expected FR, got %s", id)
		}
		if dist <= 0 || dist > 50_000 {
			t.Errorf("expected distance in (0, 50km], got %v", dist)
		}
	})

	t.Run("far point is unresolved", func(t *testing.T) {
		t.Parallel()

		// Mid-Atlantic, far beyond 50 km from every polygon.
		if _, _, _, ok := idx.Nearest(ToLAEA(orb.Point{-30, 48.8})); ok {
			t.Error("expected no match beyond the distance bound")
		}
	})

	t.Run("never returns a region beyond the bound", func(t *testing.T) {
		t.Parallel()

		points := []orb.Point{
			{2.35, 48.85}, {1.6, 48.8}, {10.0, 51.0}, {6.0, 50.0}, {-30, 48.8},
		}
		for _, p := range points {
			if _, _, dist, ok := idx.Nearest(ToLAEA(p)); ok && dist > idx.MaxDistance() {
				t.Errorf("point %v matched at %vm, beyond the %vm bound", p, dist, idx.MaxDistance())
			}
		}
	})
}

// TestIndexTieBreak tests the deterministic lexicographic tie-break.
func TestIndexTieBreak(t *testing.T) {
	t.Parallel()

	// Two coincident polygons: any interior point is equidistant (zero)
	// from both, so the lexicographically smaller identifier must win.
	set := model.NewBoundarySet(0)
	set.Add(model.Region{ID: "AB", Name: "Second", Geometry: squareAround(2.3, 48.8, 0.5)})
	set.Add(model.Region{ID: "AA", Name: "First", Geometry: squareAround(2.3, 48.8, 0.5)})

	idx, err := BuildIndex(set, 50_000)
	if err != nil {
		t.Fatal(err)
	}

	for range 5 {
		id, _, _, ok := idx.Nearest(ToLAEA(orb.Point{2.3, 48.8}))
		if !ok {
			t.Fatal("expected a match")
		}
		if id != "AA" {
			t.Errorf("expected lexicographically smaller AA, got %s", id)
		}
	}
}

// TestBuildIndexMultiPolygon tests that multi-polygon regions resolve from
// any of their parts.
func TestBuildIndexMultiPolygon(t *testing.T) {
	t.Parallel()

	set := model.NewBoundarySet(0)
	set.Add(model.Region{
		ID:   "DK",
		Name: "Danmark",
		Geometry: orb.MultiPolygon{
			squareAround(9.5, 56.0, 0.4),
			squareAround(12.0, 55.5, 0.4),
		},
	})

	idx, err := BuildIndex(set, 50_000)
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range []orb.Point{{9.5, 56.0}, {12.0, 55.5}} {
		id, _, dist, ok := idx.Nearest(ToLAEA(p))
		if !ok || id != "DK" || dist != 0 {
			t.Errorf("expected DK at distance 0 for %v, got %s/%v/%v", p, id, dist, ok)
		}
	}
}
