// Package feature models the map features the classifier and picker operate on.
//
// A [Feature] wraps a GeoJSON feature and exposes its numeric properties as
// attributes. Features are identified by pointer: the same *Feature is handed
// to style callbacks, hit tests and the highlight controller for the whole
// lifetime of a session. A [Layer] groups features under explicit metadata
// ([Meta]) describing what the layer shows and which attribute drives its
// colors.
package feature

import (
	"encoding/json"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Attributes exposes named numeric values. A false second return means the
// attribute is absent (missing key, JSON null, non-numeric or NaN).
type Attributes interface {
	Get(name string) (float64, bool)
}

// Attrs is a plain map implementation of Attributes.
type Attrs map[string]float64

// Get implements Attributes.
func (a Attrs) Get(name string) (float64, bool) {
	v, ok := a[name]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Feature is a GeoJSON feature with reference-stable identity.
type Feature struct {
	geo     *geojson.Feature
	removed bool
}

// New wraps a GeoJSON feature. A nil Properties map is replaced with an empty one.
func New(g *geojson.Feature) *Feature {
	if g.Properties == nil {
		g.Properties = geojson.Properties{}
	}
	return &Feature{geo: g}
}

// NewPolygon builds a feature from a polygon and attribute values.
func NewPolygon(p orb.Polygon, attrs Attrs) *Feature {
	g := geojson.NewFeature(p)
	for k, v := range attrs {
		g.Properties[k] = v
	}
	return New(g)
}

// Get implements Attributes.
func (f *Feature) Get(name string) (float64, bool) {
	switch v := f.geo.Properties[name].(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), !math.IsNaN(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil && !math.IsNaN(n)
	}
	return 0, false
}

// ID returns the GeoJSON feature id, if any.
func (f *Feature) ID() any { return f.geo.ID }

// Geometry returns the feature geometry.
func (f *Feature) Geometry() orb.Geometry { return f.geo.Geometry }

// Bound returns the bounding box of the geometry.
func (f *Feature) Bound() orb.Bound {
	if f.geo.Geometry == nil {
		return orb.Bound{}
	}
	return f.geo.Geometry.Bound()
}

// Properties returns a copy of the feature properties.
func (f *Feature) Properties() geojson.Properties { return f.geo.Properties.Clone() }

// GeoJSON returns the underlying GeoJSON feature. Callers must not mutate it.
func (f *Feature) GeoJSON() *geojson.Feature { return f.geo }

// Removed reports whether the feature has been removed from its layer.
func (f *Feature) Removed() bool { return f.removed }
