package boundary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// stubFetcher serves pre-written files keyed by (vintage, level).
type stubFetcher struct {
	paths map[string]string
}

func (s *stubFetcher) Fetch(_ context.Context, vintage, level int) (string, error) {
	key := fmt.Sprintf("%d/%d", vintage, level)
	path, ok := s.paths[key]
	if !ok {
		return "", &AcquisitionError{Vintage: vintage, Level: level, Err: errors.New("no such fixture")}
	}
	return path, nil
}

// writeVintageFile writes a feature collection with the given id/name pairs.
func writeVintageFile(t *testing.T, dir string, name string, regions map[string]string) string {
	t.Helper()

	features := ""
	for id, displayName := range regions {
		if features != "" {
			features += ","
		}
		features += fmt.Sprintf(`{
			"type": "Feature",
			"properties": {"NUTS_ID": %q, "NUTS_NAME": %q},
			"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
		}`, id, displayName)
	}
	content := fmt.Sprintf(`{"type": "FeatureCollection", "features": [%s]}`, features)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestMergerBuildSet tests multi-vintage merging with primary precedence.
func TestMergerBuildSet(t *testing.T) {
	t.Parallel()

	t.Run("fallback adds only unseen identifiers", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		primary := writeVintageFile(t, dir, "2024.geojson", map[string]string{
			"FR": "France",
			"DE": "Deutschland",
		})
		fallback := writeVintageFile(t, dir, "2016.geojson", map[string]string{
			"FR":     "France (2016)",
			"UK-LON": "London",
		})

		m := NewMerger(
			&stubFetcher{paths: map[string]string{"2024/0": primary, "2016/0": fallback}},
			NewLoader("NUTS_ID", "NUTS_NAME"),
		)

		set, err := m.BuildSet(context.Background(), 0, []int{2024, 2016})
		if err != nil {
			t.Fatalf("expected build to succeed, got %v", err)
		}

		if set.Len() != 3 {
			t.Fatalf("expected 3 merged regions, got %d", set.Len())
		}
		if !set.Contains("UK-LON") {
			t.Error("expected fallback region UK-LON to be present")
		}
		if set.FallbackCounts[2016] != 1 {
			t.Errorf("expected 1 fallback contribution from 2016, got %d", set.FallbackCounts[2016])
		}

		// Primary vintage wins for identifiers present in both.
		for _, r := range set.Regions {
			if r.ID == "FR" {
				if r.Vintage != 2024 || r.Name != "France" {
					t.Errorf("expected FR from 2024 primary, got vintage %d name %q", r.Vintage, r.Name)
				}
			}
			if r.ID == "UK-LON" && r.Vintage != 2016 {
				t.Errorf("expected UK-LON from 2016 fallback, got vintage %d", r.Vintage)
			}
		}
	})

	t.Run("fetch failure aborts the level", func(t *testing.T) {
		t.Parallel()

		m := NewMerger(&stubFetcher{paths: map[string]string{}}, NewLoader("NUTS_ID", "NUTS_NAME"))

		_, err := m.BuildSet(context.Background(), 1, []int{2024})

		var acqErr *AcquisitionError
		if !errors.As(err, &acqErr) {
			t.Fatalf("expected AcquisitionError, got %v", err)
		}
	})

	t.Run("parse failure aborts the level", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		corrupt := filepath.Join(dir, "corrupt.geojson")
		if err := os.WriteFile(corrupt, []byte("not geojson"), 0600); err != nil {
			t.Fatal(err)
		}

		m := NewMerger(
			&stubFetcher{paths: map[string]string{"2024/2": corrupt}},
			NewLoader("NUTS_ID", "NUTS_NAME"),
		)

		_, err := m.BuildSet(context.Background(), 2, []int{2024})

		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %v", err)
		}
	})
}
