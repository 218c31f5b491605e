package hexgrid

import (
	"context"
	"math"
	"runtime"

	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/raster"
)

// Precision is the number of decimals aggregated means are rounded to.
const Precision = 3

// Band is one raster composite and the attribute key its means go under.
type Band struct {
	Key  string
	Grid *raster.Grid
}

// Zonal returns the mean of the valid raster cells whose centers fall inside
// the hexagon. ok is false when no valid cell does.
func Zonal(c Cell, g *raster.Grid) (mean float64, ok bool) {
	c0, r0, c1, r1, hit := g.Window(c.Polygon.Bound())
	if !hit {
		return 0, false
	}
	var vals stats.Float64Data
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			v := g.At(col, r)
			if math.IsNaN(v) {
				continue
			}
			if planar.PolygonContains(c.Polygon, g.CellCenter(col, r)) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return 0, false
	}
	return m, true
}

type column struct {
	values []float64
	ok     []bool
}

// Aggregate computes one column of zonal means per band and returns the
// cells as features. Each feature carries its H3 index under "h3" and one
// property per band key, rounded to [Precision] decimals; hexagons without
// valid pixels get JSON null. Bands are processed concurrently.
func Aggregate(ctx context.Context, cells []Cell, bands []Band) (*geojson.FeatureCollection, error) {
	seen := make(map[string]bool, len(bands))
	for _, b := range bands {
		if err := errors.ValidateAttributeKey(b.Key); err != nil {
			return nil, err
		}
		if seen[b.Key] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate band key %q", b.Key)
		}
		seen[b.Key] = true
		if err := b.Grid.Validate(); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "band %s", b.Key)
		}
	}

	cols := make([]column, len(bands))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, b := range bands {
		g.Go(func() error {
			col := column{values: make([]float64, len(cells)), ok: make([]bool, len(cells))}
			for j, c := range cells {
				if j%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				m, ok := Zonal(c, b.Grid)
				if ok {
					m, _ = stats.Round(m, Precision)
				}
				col.values[j], col.ok[j] = m, ok
			}
			cols[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for j, c := range cells {
		f := geojson.NewFeature(c.Polygon)
		f.Properties["h3"] = c.ID
		for i, b := range bands {
			if cols[i].ok[j] {
				f.Properties[b.Key] = cols[i].values[j]
			} else {
				f.Properties[b.Key] = nil
			}
		}
		fc.Append(f)
	}
	return fc, nil
}
