package style

import (
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/thermogrid/pkg/feature"
)

// Sheet holds the styles currently applied to the features of one session.
//
// Styles are computed lazily from the registered layer callbacks and then
// remembered, so repeated lookups of the same feature return the same *Spec
// until [Sheet.SetStyle] replaces it. Features that have been removed from
// their layer have no style: [Sheet.Style] and [Sheet.SetStyle] both report
// false for them.
//
// A Sheet is not safe for concurrent use; callers serialize access per
// session.
type Sheet struct {
	layers []*sheetLayer
	owner  map[*feature.Feature]*sheetLayer
	specs  map[*feature.Feature]*Spec
}

type sheetLayer struct {
	layer *feature.Layer
	fn    Func
}

// NewSheet returns an empty sheet.
func NewSheet() *Sheet {
	return &Sheet{
		owner: make(map[*feature.Feature]*sheetLayer),
		specs: make(map[*feature.Feature]*Spec),
	}
}

// AddLayer registers a layer and the callback that styles its features.
// Registering the same layer again replaces its callback and drops the
// remembered styles of its features.
func (s *Sheet) AddLayer(l *feature.Layer, fn Func) {
	for _, sl := range s.layers {
		if sl.layer == l {
			sl.fn = fn
			s.forget(sl)
			return
		}
	}
	s.layers = append(s.layers, &sheetLayer{layer: l, fn: fn})
}

func (s *Sheet) forget(sl *sheetLayer) {
	for f, o := range s.owner {
		if o == sl {
			delete(s.owner, f)
			delete(s.specs, f)
		}
	}
}

func (s *Sheet) lookup(f *feature.Feature) *sheetLayer {
	if sl, ok := s.owner[f]; ok && sl.layer.Contains(f) {
		return sl
	}
	for _, sl := range s.layers {
		if sl.layer.Contains(f) {
			s.owner[f] = sl
			return sl
		}
	}
	return nil
}

// Style returns the style currently applied to f.
func (s *Sheet) Style(f *feature.Feature) (*Spec, bool) {
	if f == nil || f.Removed() {
		return nil, false
	}
	if spec, ok := s.specs[f]; ok {
		return spec, true
	}
	sl := s.lookup(f)
	if sl == nil {
		return nil, false
	}
	spec := sl.fn(f)
	s.specs[f] = spec
	return spec, true
}

// SetStyle applies spec to f. It reports false, and does nothing, when f has
// been removed or belongs to no registered layer.
func (s *Sheet) SetStyle(f *feature.Feature, spec *Spec) bool {
	if f == nil || f.Removed() || s.lookup(f) == nil {
		return false
	}
	s.specs[f] = spec
	return true
}

// Styled returns l's features as a collection whose properties carry the
// current styles in simplestyle form (fill, fill-opacity, stroke,
// stroke-opacity, stroke-width) plus "highlighted" and "z-index".
// The source features are not modified.
func (s *Sheet) Styled(l *feature.Layer) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range l.Features() {
		src := f.GeoJSON()
		out := geojson.NewFeature(src.Geometry)
		out.ID = src.ID
		out.Properties = src.Properties.Clone()
		if spec, ok := s.Style(f); ok {
			spec.annotate(out.Properties)
		}
		fc.Append(out)
	}
	return fc
}

func (s *Spec) annotate(p geojson.Properties) {
	p["fill"] = s.Fill.OpaqueHex()
	p["fill-opacity"] = s.Fill.Alpha
	p["stroke"] = s.Stroke.OpaqueHex()
	p["stroke-opacity"] = s.Stroke.Alpha
	p["stroke-width"] = s.StrokeWidth
	p["highlighted"] = s.Highlighted
	p["z-index"] = s.ZIndex
}
