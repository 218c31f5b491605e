package raster

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Surface temperature product scaling: Kelvin = DN * LSTScale.
const (
	LSTScale = 0.02
	Kelvin   = 273.15
)

// Default outlier trim percentiles.
const (
	TrimLow  = 1.0
	TrimHigh = 99.0
)

// cloudBit is the cloud flag in the cloud mask product.
const cloudBit = 2

// DecodeLST converts raw surface temperature digital numbers to °C.
// DN 0 is the fill value and becomes NaN.
func DecodeLST(g *Grid) *Grid {
	return g.mapValues(func(dn float64) float64 {
		if dn == 0 || math.IsNaN(dn) {
			return math.NaN()
		}
		return dn*LSTScale - Kelvin
	})
}

// Cloudy reports whether a cloud mask value has the cloud flag set.
// NaN mask cells are treated as cloudy.
func Cloudy(m float64) bool {
	if math.IsNaN(m) {
		return true
	}
	return (int64(m)>>cloudBit)&1 == 1
}

// ApplyCloudMask returns lst with every cloudy pixel set to NaN.
// The grids must be aligned.
func ApplyCloudMask(lst, mask *Grid) (*Grid, error) {
	if !lst.Aligned(mask) {
		return nil, errors.New(errors.ErrCodeInvalidRaster, "cloud mask is not aligned with the scene")
	}
	out := lst.Clone()
	for i, m := range mask.Values {
		if Cloudy(m) {
			out.Values[i] = math.NaN()
		}
	}
	return out, nil
}

// TrimOutliers returns g with values below the lo or above the hi
// percentile set to NaN. Percentiles use the nearest-rank method. A grid
// without valid cells is returned unchanged.
func TrimOutliers(g *Grid, lo, hi float64) (*Grid, error) {
	if lo < 0 || hi > 100 || lo >= hi {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid percentiles %v..%v", lo, hi)
	}
	valid := stats.Float64Data(g.Valid())
	if len(valid) == 0 {
		return g.Clone(), nil
	}
	low, err := stats.PercentileNearestRank(valid, lo)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "low percentile")
	}
	high, err := stats.PercentileNearestRank(valid, hi)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "high percentile")
	}
	return g.mapValues(func(v float64) float64 {
		if v < low || v > high {
			return math.NaN()
		}
		return v
	}), nil
}

// MaskScene runs the per-scene cleanup: decode digital numbers to °C, drop
// cloudy pixels and trim the 1% tails.
func MaskScene(dn, cloud *Grid) (*Grid, error) {
	lst, err := ApplyCloudMask(DecodeLST(dn), cloud)
	if err != nil {
		return nil, err
	}
	return TrimOutliers(lst, TrimLow, TrimHigh)
}

// MedianComposite reduces aligned scenes to their per-pixel median,
// ignoring NaN. Pixels without any valid value, or whose median is exactly
// 0, are NaN.
func MedianComposite(grids ...*Grid) (*Grid, error) {
	if len(grids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no scenes to composite")
	}
	for i, g := range grids[1:] {
		if !grids[0].Aligned(g) {
			return nil, errors.New(errors.ErrCodeInvalidRaster, "scene %d is not aligned with scene 0", i+1)
		}
	}

	out := NewGrid(grids[0].Cols, grids[0].Rows, grids[0].XLL, grids[0].YLL, grids[0].CellSize)
	out.NoData = grids[0].NoData
	px := make(stats.Float64Data, 0, len(grids))
	for i := range out.Values {
		px = px[:0]
		for _, g := range grids {
			if v := g.Values[i]; !math.IsNaN(v) {
				px = append(px, v)
			}
		}
		if len(px) == 0 {
			continue
		}
		m, err := stats.Median(px)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "median")
		}
		if m != 0 {
			out.Values[i] = m
		}
	}
	return out, nil
}
