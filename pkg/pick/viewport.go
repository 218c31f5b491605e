package pick

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Pixel is a position in screen space, origin top-left.
type Pixel struct {
	X, Y float64
}

// Viewport maps a Width x Height pixel screen onto Bound.
type Viewport struct {
	Bound  orb.Bound
	Width  int
	Height int
}

// Validate checks that the viewport has a positive size and a finite,
// non-degenerate bound.
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidViewport, "viewport size must be positive, got %dx%d", v.Width, v.Height)
	}
	for _, c := range []float64{v.Bound.Min.X(), v.Bound.Min.Y(), v.Bound.Max.X(), v.Bound.Max.Y()} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New(errors.ErrCodeInvalidViewport, "viewport bound is not finite")
		}
	}
	if v.Bound.Max.X() <= v.Bound.Min.X() || v.Bound.Max.Y() <= v.Bound.Min.Y() {
		return errors.New(errors.ErrCodeInvalidViewport, "viewport bound is empty: %v", v.Bound)
	}
	return nil
}

// ToPoint returns the map coordinate under px.
func (v Viewport) ToPoint(px Pixel) orb.Point {
	return orb.Point{
		v.Bound.Min.X() + px.X/float64(v.Width)*v.spanX(),
		v.Bound.Max.Y() - px.Y/float64(v.Height)*v.spanY(),
	}
}

// ToPixel returns the pixel position of p. It is the inverse of ToPoint.
func (v Viewport) ToPixel(p orb.Point) Pixel {
	return Pixel{
		X: (p.X() - v.Bound.Min.X()) / v.spanX() * float64(v.Width),
		Y: (v.Bound.Max.Y() - p.Y()) / v.spanY() * float64(v.Height),
	}
}

func (v Viewport) spanX() float64 { return v.Bound.Max.X() - v.Bound.Min.X() }
func (v Viewport) spanY() float64 { return v.Bound.Max.Y() - v.Bound.Min.Y() }

// Contains reports whether px lies on screen.
func (v Viewport) Contains(px Pixel) bool {
	return px.X >= 0 && px.Y >= 0 && px.X <= float64(v.Width) && px.Y <= float64(v.Height)
}
