package boundary

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/epifield/regionpatch/internal/model"
)

// Loader parses boundary GeoJSON files into Region values.
// Only the identifier, name, and geometry are retained; all other feature
// attributes are discarded.
type Loader struct {
	// idProperty is the feature property carrying the region identifier.
	idProperty string

	// nameProperty is the feature property carrying the display name.
	nameProperty string
}

// NewLoader creates a Loader reading the given feature properties.
func NewLoader(idProperty, nameProperty string) *Loader {
	return &Loader{
		idProperty:   idProperty,
		nameProperty: nameProperty,
	}
}

// Load parses the boundary file at path, tagging every region with the
// given vintage. Structurally invalid input returns a *ParseError:
// a corrupt boundary file cannot be partially trusted.
func (l *Loader) Load(path string, vintage int) ([]model.Region, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from our own cache
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if len(fc.Features) == 0 {
		return nil, &ParseError{Path: path, Err: ErrEmptyCollection}
	}

	regions := make([]model.Region, 0, len(fc.Features))
	for _, feature := range fc.Features {
		id := feature.Properties.MustString(l.idProperty, "")
		if id == "" {
			return nil, &ParseError{Path: path, Err: ErrMissingID}
		}

		switch feature.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, &ParseError{Path: path, Err: ErrUnsupportedGeometry}
		}

		regions = append(regions, model.Region{
			ID:       id,
			Name:     feature.Properties.MustString(l.nameProperty, ""),
			Geometry: feature.Geometry,
			Vintage:  vintage,
		})
	}

	return regions, nil
}
