package pick

import (
	"context"
	"time"

	"github.com/matzehuels/thermogrid/pkg/observability"
)

// Picker resolves a pixel to the single topmost eligible feature.
type Picker struct {
	Query  Query
	Filter LayerFilter
}

// NewPicker returns a picker over q restricted to filter.
// A nil filter defaults to [StatsLayers].
func NewPicker(q Query, filter LayerFilter) *Picker {
	if filter == nil {
		filter = StatsLayers()
	}
	return &Picker{Query: q, Filter: filter}
}

// PickAt returns the topmost eligible hit under px. The second result is
// false when nothing eligible intersects the pixel.
func (p *Picker) PickAt(ctx context.Context, px Pixel) (Hit, bool) {
	start := time.Now()
	hits := p.Query.FeaturesAtPixel(px, p.Filter)
	if len(hits) == 0 {
		observability.Interaction().OnPick(ctx, "", false, time.Since(start))
		return Hit{}, false
	}
	observability.Interaction().OnPick(ctx, hits[0].Layer.Name, true, time.Since(start))
	return hits[0], true
}
