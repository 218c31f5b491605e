package feature

import (
	"math"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Kind tags what a layer displays.
type Kind string

const (
	// KindStats is a zonal statistics layer (hexagons with mean values).
	// Only stats layers are classified and pickable.
	KindStats Kind = "stats"
	// KindComposite is a raster composite overlay.
	KindComposite Kind = "composite"
	// KindBase is a basemap or reference layer.
	KindBase Kind = "base"
)

// ParseKind parses a layer kind; the empty string is KindBase.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindStats, KindComposite, KindBase:
		return k, nil
	case "":
		return KindBase, nil
	}
	return "", errors.New(errors.ErrCodeInvalidLayer, "unknown layer kind %q", s)
}

// Meta is the explicit per-layer metadata carried alongside a layer, e.g.
// {Kind: stats, Attribute: "s_mean_21", Table: "lst"}.
type Meta struct {
	Kind      Kind
	Attribute string // attribute key classified for display
	Table     string // breakpoint table name
	Year      int    // acquisition year, 0 if unknown
}

// IsStats reports whether the layer carries zonal statistics.
func (m Meta) IsStats() bool { return m.Kind == KindStats }

// Layer is a named, ordered set of features.
// Later features are drawn above earlier ones.
type Layer struct {
	Name    string
	Meta    Meta
	Visible bool
	ZIndex  int

	features []*Feature
}

// NewLayer builds a visible layer from a GeoJSON feature collection.
// The collection's features are wrapped, not copied.
func NewLayer(name string, meta Meta, fc *geojson.FeatureCollection) *Layer {
	l := &Layer{Name: name, Meta: meta, Visible: true}
	if fc != nil {
		l.features = make([]*Feature, 0, len(fc.Features))
		for _, g := range fc.Features {
			l.features = append(l.features, New(g))
		}
	}
	return l
}

// Validate checks name and metadata consistency.
func (l *Layer) Validate() error {
	if err := errors.ValidateName("layer", l.Name); err != nil {
		return err
	}
	if !l.Meta.IsStats() {
		return nil
	}
	if err := errors.ValidateAttributeKey(l.Meta.Attribute); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidLayer, err, "layer %q", l.Name)
	}
	if l.Meta.Table == "" {
		return errors.New(errors.ErrCodeInvalidLayer, "stats layer %q needs a table", l.Name)
	}
	return nil
}

// Features returns the layer's features in draw order.
func (l *Layer) Features() []*Feature { return append([]*Feature(nil), l.features...) }

// Len returns the number of features.
func (l *Layer) Len() int { return len(l.features) }

// Add appends a feature on top of the layer.
func (l *Layer) Add(f *Feature) {
	f.removed = false
	l.features = append(l.features, f)
}

// Remove detaches f from the layer and marks it removed.
// It reports whether f belonged to the layer.
func (l *Layer) Remove(f *Feature) bool {
	for i, g := range l.features {
		if g == f {
			l.features = append(l.features[:i], l.features[i+1:]...)
			f.removed = true
			return true
		}
	}
	return false
}

// Contains reports whether f currently belongs to the layer.
func (l *Layer) Contains(f *Feature) bool {
	for _, g := range l.features {
		if g == f {
			return true
		}
	}
	return false
}

// Values returns the present values of attr across the layer, skipping
// missing ones.
func (l *Layer) Values(attr string) []float64 {
	out := make([]float64, 0, len(l.features))
	for _, f := range l.features {
		if v, ok := f.Get(attr); ok && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Collection returns the layer as a GeoJSON feature collection.
func (l *Layer) Collection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range l.features {
		fc.Append(f.geo)
	}
	return fc
}
