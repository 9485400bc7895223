package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// haversine returns the spherical ground distance in metres.
func haversine(a, b orb.Point) float64 {
	const r = 6371008.8 // mean Earth radius

	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * r * math.Asin(math.Sqrt(h))
}

// TestToLAEA tests the EPSG:3035 forward projection.
func TestToLAEA(t *testing.T) {
	t.Parallel()

	t.Run("projection origin maps to the false origin", func(t *testing.T) {
		t.Parallel()

		got := ToLAEA(orb.Point{laeaOriginLon, laeaOriginLat})

		if math.Abs(got[0]-laeaFalseEasting) > 1e-6 {
			t.Errorf("expected easting %v, got %v", laeaFalseEasting, got[0])
		}
		if math.Abs(got[1]-laeaFalseNorthing) > 1e-6 {
			t.Errorf("expected northing %v, got %v", laeaFalseNorthing, got[1])
		}
	})

	t.Run("matches the published EPSG:3035 worked example", func(t *testing.T) {
		t.Parallel()

		// 50N 5E -> E 3962799.45, N 2999718.85 (EPSG dataset example
		// for ETRS89-extended / LAEA Europe).
		got := ToLAEA(orb.Point{5, 50})

		if math.Abs(got[0]-3962799.45) > 1 {
			t.Errorf("expected easting 3962799.45, got %.2f", got[0])
		}
		if math.Abs(got[1]-2999718.85) > 1 {
			t.Errorf("expected northing 2999718.85, got %.2f", got[1])
		}
	})

	t.Run("planar distance approximates ground distance", func(t *testing.T) {
		t.Parallel()

		pairs := []struct {
			name string
			a, b orb.Point
		}{
			{name: "short hop near origin", a: orb.Point{10, 52}, b: orb.Point{10.1, 52.05}},
			{name: "Paris to Brussels", a: orb.Point{2.35, 48.86}, b: orb.Point{4.35, 50.85}},
			{name: "Lisbon to Madrid", a: orb.Point{-9.14, 38.72}, b: orb.Point{-3.70, 40.42}},
		}

		for _, tt := range pairs {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				pa, pb := ToLAEA(tt.a), ToLAEA(tt.b)
				planar := math.Hypot(pb[0]-pa[0], pb[1]-pa[1])
				ground := haversine(tt.a, tt.b)

				if rel := math.Abs(planar-ground) / ground; rel > 0.01 {
					t.Errorf("planar %.0fm vs ground %.0fm: relative error %.4f exceeds 1%%",
						planar, ground, rel)
				}
			})
		}
	})

	t.Run("east of origin means larger easting", func(t *testing.T) {
		t.Parallel()

		west := ToLAEA(orb.Point{5, 50})
		east := ToLAEA(orb.Point{15, 50})
		if east[0] <= west[0] {
			t.Errorf("expected easting to grow eastward, got %v <= %v", east[0], west[0])
		}
	})
}
