package pick

import (
	"regexp"

	"github.com/matzehuels/thermogrid/pkg/feature"
)

// LayerFilter decides whether a layer's features may be picked.
type LayerFilter func(*feature.Layer) bool

// AllLayers accepts every layer, hidden ones included.
func AllLayers() LayerFilter {
	return func(*feature.Layer) bool { return true }
}

// Visible accepts visible layers.
func Visible() LayerFilter {
	return func(l *feature.Layer) bool { return l.Visible }
}

// StatsLayers accepts visible layers tagged as zonal statistics.
func StatsLayers() LayerFilter {
	return func(l *feature.Layer) bool { return l.Visible && l.Meta.IsStats() }
}

// NamedStatsLayers accepts visible stats layers whose name matches re,
// e.g. regexp.MustCompile(`^Hexagons`).
func NamedStatsLayers(re *regexp.Regexp) LayerFilter {
	return And(StatsLayers(), func(l *feature.Layer) bool { return re.MatchString(l.Name) })
}

// And accepts layers accepted by every filter. With no filters it accepts all.
func And(filters ...LayerFilter) LayerFilter {
	return func(l *feature.Layer) bool {
		for _, f := range filters {
			if !f(l) {
				return false
			}
		}
		return true
	}
}
