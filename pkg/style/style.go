// Package style computes display styles for map features.
//
// A [Func] is the host-facing style callback: given a feature's attributes it
// returns the [Spec] to draw it with. [ForLayer] builds such a callback from a
// layer's explicit metadata and a breakpoint table. A [Sheet] remembers the
// style currently applied to each feature of a session, so the highlight
// controller can swap a feature's style and later put the saved one back.
package style

import (
	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/feature"
)

// Spec describes how a feature is drawn.
type Spec struct {
	Fill        classify.Color
	Stroke      classify.Color
	StrokeWidth float64
	ZIndex      int
	Highlighted bool
}

// Clone returns a copy of s.
func (s *Spec) Clone() *Spec {
	c := *s
	return &c
}

// Equal reports whether two specs draw identically.
func (s *Spec) Equal(o *Spec) bool {
	if s == nil || o == nil {
		return s == o
	}
	return *s == *o
}

// Func is a style callback evaluated per feature.
type Func func(feature.Attributes) *Spec

// Default colors for outlines.
var (
	DefaultStroke   = classify.RGBA(51, 51, 51, 0.8)
	HighlightStroke = classify.RGBA(0, 255, 255, 1)
)

// Base is the spec a layer starts from before classification.
var Base = Spec{
	Fill:        classify.RGBA(255, 255, 255, 0),
	Stroke:      DefaultStroke,
	StrokeWidth: 0.5,
}

// Static returns a Func that always yields a copy of s.
func Static(s Spec) Func {
	return func(feature.Attributes) *Spec {
		c := s
		return &c
	}
}

// ForLayer returns the style callback for a layer.
//
// Stats layers take their fill from table, classifying the attribute named in
// meta. Missing attributes use the table's missing color. Other layers, and
// stats layers without a table, draw with base unchanged.
func ForLayer(meta feature.Meta, table *classify.Table, base Spec) Func {
	if !meta.IsStats() || table == nil {
		return Static(base)
	}
	attr := meta.Attribute
	return func(a feature.Attributes) *Spec {
		s := base
		s.Fill = table.Classify(a.Get(attr))
		return &s
	}
}

// Emphasize returns the highlighted variant of s. s is not modified.
func Emphasize(s *Spec) *Spec {
	h := s.Clone()
	h.Highlighted = true
	h.Stroke = HighlightStroke
	h.StrokeWidth = max(s.StrokeWidth*2, 3)
	h.ZIndex = s.ZIndex + 1
	return h
}
