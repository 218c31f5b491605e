package pick

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/feature"
)

// Hit is a feature found under a pixel, with the layer it was drawn in.
type Hit struct {
	Feature *feature.Feature
	Layer   *feature.Layer
}

// Query finds the features under a pixel. Implementations return hits
// topmost first and only from layers accepted by filter.
type Query interface {
	FeaturesAtPixel(px Pixel, filter LayerFilter) []Hit
}

// Canvas is an in-memory stack of layers drawn into a viewport.
//
// Layers are stacked by ZIndex, ties broken by the order they were added;
// within a layer later features are drawn above earlier ones. A Canvas is
// not safe for concurrent mutation.
type Canvas struct {
	viewport Viewport
	layers   []*feature.Layer
}

// NewCanvas returns an empty canvas over vp.
func NewCanvas(vp Viewport) (*Canvas, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	return &Canvas{viewport: vp}, nil
}

// Viewport returns the canvas viewport.
func (c *Canvas) Viewport() Viewport { return c.viewport }

// AddLayer stacks l onto the canvas. Layer names must be unique.
func (c *Canvas) AddLayer(l *feature.Layer) error {
	if _, ok := c.Layer(l.Name); ok {
		return errors.New(errors.ErrCodeInvalidLayer, "duplicate layer %q", l.Name)
	}
	c.layers = append(c.layers, l)
	return nil
}

// Layer returns the layer named name.
func (c *Canvas) Layer(name string) (*feature.Layer, bool) {
	for _, l := range c.layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Layers returns the layers bottom to top.
func (c *Canvas) Layers() []*feature.Layer {
	out := slices.Clone(c.layers)
	slices.SortStableFunc(out, func(a, b *feature.Layer) int { return a.ZIndex - b.ZIndex })
	return out
}

// FeaturesAtPixel implements Query.
func (c *Canvas) FeaturesAtPixel(px Pixel, filter LayerFilter) []Hit {
	if !c.viewport.Contains(px) {
		return nil
	}
	if filter == nil {
		filter = AllLayers()
	}
	pt := c.viewport.ToPoint(px)

	layers := c.Layers()
	var hits []Hit
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if !filter(l) {
			continue
		}
		fs := l.Features()
		for j := len(fs) - 1; j >= 0; j-- {
			if covers(fs[j], pt) {
				hits = append(hits, Hit{Feature: fs[j], Layer: l})
			}
		}
	}
	return hits
}

// covers reports whether f's areal geometry contains pt. Points and lines
// have no area and are never hit.
func covers(f *feature.Feature, pt orb.Point) bool {
	if !f.Bound().Contains(pt) {
		return false
	}
	switch g := f.Geometry().(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	case orb.Bound:
		return true
	case orb.Collection:
		for _, sub := range g {
			if p, ok := sub.(orb.Polygon); ok && planar.PolygonContains(p, pt) {
				return true
			}
		}
	}
	return false
}
