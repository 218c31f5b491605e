package classify

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Color is an RGB color with an alpha channel in [0,1].
// Colors are comparable values; two colors are equal when all channels match.
type Color struct {
	RGB   colorful.Color
	Alpha float64
}

// DefaultMissing is the color used for features whose attribute is absent:
// a translucent grey that reads as "no data" on top of a basemap.
var DefaultMissing = RGBA(158, 158, 158, 0.6)

// RGBA builds a color from 8-bit channels and an alpha in [0,1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{
		RGB:   colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255},
		Alpha: clampUnit(a),
	}
}

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r, g, b)" and
// "rgba(r, g, b, a)".
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseFunc(s)
	}
	return Color{}, errors.New(errors.ErrCodeInvalidColor, "unsupported color %q", s)
}

// MustParseColor is like ParseColor but panics on error.
// It is intended for package-level palette definitions.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(s string) (Color, error) {
	alpha := 1.0
	switch len(s) {
	case 4, 7:
	case 9:
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid alpha in %q", s)
		}
		alpha = float64(a) / 255
		s = s[:7]
	default:
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "invalid hex color %q", s)
	}
	rgb, err := colorful.Hex(s)
	if err != nil {
		return Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid hex color %q", s)
	}
	return Color{RGB: rgb, Alpha: alpha}, nil
}

func parseFunc(s string) (Color, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if end < open {
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "unterminated color %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "expected 3 or 4 channels in %q", s)
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid channel in %q", s)
		}
		ch[i] = uint8(v)
	}

	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, errors.New(errors.ErrCodeInvalidColor, "invalid alpha in %q", s)
		}
		alpha = a
	}
	return RGBA(ch[0], ch[1], ch[2], alpha), nil
}

// Hex renders the color as "#rrggbb", or "#rrggbbaa" when it is translucent.
func (c Color) Hex() string {
	h := c.OpaqueHex()
	if c.Alpha >= 1 {
		return h
	}
	return fmt.Sprintf("%s%02x", h, uint8(math.Round(clampUnit(c.Alpha)*255)))
}

// OpaqueHex renders the color as "#rrggbb", ignoring alpha.
func (c Color) OpaqueHex() string { return c.RGB.Clamped().Hex() }

// CSS renders the color as "rgba(r, g, b, a)", the form map style callbacks expect.
func (c Color) CSS() string {
	r, g, b := c.RGB.Clamped().RGB255()
	a := math.Round(clampUnit(c.Alpha)*1000) / 1000
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(a, 'f', -1, 64))
}

// String implements fmt.Stringer.
func (c Color) String() string { return c.Hex() }

// IsZero reports whether c is the zero value (fully transparent black).
func (c Color) IsZero() bool { return c == Color{} }

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.Alpha = clampUnit(a)
	return c
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
