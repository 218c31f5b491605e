package classify

import (
	"sort"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Ramp returns n colors blended from `from` to `to` in CIE-L*a*b* space,
// alpha interpolated linearly. n == 1 yields [from].
func Ramp(from, to Color, n int) []Color {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []Color{from}
	}
	out := make([]Color, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		out[i] = Color{
			RGB:   from.RGB.BlendLab(to.RGB, t).Clamped(),
			Alpha: from.Alpha + (to.Alpha-from.Alpha)*t,
		}
	}
	return out
}

// palettes holds the built-in sequential color schemes, low to high.
var palettes = map[string][]string{
	"heat":     {"#ffffb2", "#fecc5c", "#fd8d3c", "#f03b20", "#bd0026"},
	"viridis":  {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"blues":    {"#eff3ff", "#bdd7e7", "#6baed6", "#3182bd", "#08519c"},
	"coolwarm": {"#3b4cc0", "#8db0fe", "#dddddd", "#f49a7b", "#b40426"},
}

// PaletteNames lists the built-in palettes in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Palette resamples a built-in palette to n colors.
func Palette(name string, n int) ([]Color, error) {
	stops, ok := palettes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColor, "unknown palette %q", name)
	}
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "palette size must be positive, got %d", n)
	}
	anchors := make([]Color, len(stops))
	for i, s := range stops {
		anchors[i] = MustParseColor(s)
	}
	if n == 1 {
		return anchors[:1], nil
	}

	out := make([]Color, n)
	segments := float64(len(anchors) - 1)
	for i := range out {
		pos := float64(i) / float64(n-1) * segments
		seg := int(pos)
		if seg >= len(anchors)-1 {
			out[i] = anchors[len(anchors)-1]
			continue
		}
		out[i] = Color{
			RGB:   anchors[seg].RGB.BlendLab(anchors[seg+1].RGB, pos-float64(seg)).Clamped(),
			Alpha: 1,
		}
	}
	return out, nil
}
