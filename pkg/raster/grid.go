// Package raster holds the land-surface-temperature raster tooling that
// produces the composites the hexagon statistics are computed from.
//
// Rasters are exchanged as ESRI ASCII grids ([ReadASCII], [WriteASCII]).
// Inside the package, missing cells are NaN regardless of the file's
// NODATA_value.
//
// A typical scene goes through [MaskScene] (decode to °C, drop cloudy
// pixels, trim outliers) and a season of masked scenes is reduced with
// [MedianComposite].
package raster

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// DefaultNoData is written for NaN cells when a grid has no NODATA_value.
const DefaultNoData = -9999.0

// Grid is a north-up raster. Values are stored row-major, top row first.
type Grid struct {
	Cols, Rows int
	// XLL, YLL are the coordinates of the lower-left corner of the
	// lower-left cell.
	XLL, YLL float64
	CellSize float64
	NoData   float64
	Values   []float64
}

// NewGrid returns a grid of NaN cells.
func NewGrid(cols, rows int, xll, yll, cellSize float64) *Grid {
	g := &Grid{Cols: cols, Rows: rows, XLL: xll, YLL: yll, CellSize: cellSize, NoData: DefaultNoData}
	g.Values = make([]float64, cols*rows)
	for i := range g.Values {
		g.Values[i] = math.NaN()
	}
	return g
}

// Validate checks dimensions and cell size.
func (g *Grid) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return errors.New(errors.ErrCodeInvalidRaster, "grid size must be positive, got %dx%d", g.Cols, g.Rows)
	}
	if !(g.CellSize > 0) || math.IsInf(g.CellSize, 0) {
		return errors.New(errors.ErrCodeInvalidRaster, "invalid cell size %v", g.CellSize)
	}
	if len(g.Values) != g.Cols*g.Rows {
		return errors.New(errors.ErrCodeInvalidRaster, "grid has %d values, want %d", len(g.Values), g.Cols*g.Rows)
	}
	return nil
}

// At returns the value at col, row (row 0 is the top row).
func (g *Grid) At(col, row int) float64 { return g.Values[row*g.Cols+col] }

// Set stores v at col, row.
func (g *Grid) Set(col, row int, v float64) { g.Values[row*g.Cols+col] = v }

// CellCenter returns the map coordinate of the center of a cell.
func (g *Grid) CellCenter(col, row int) orb.Point {
	return orb.Point{
		g.XLL + (float64(col)+0.5)*g.CellSize,
		g.YLL + (float64(g.Rows-row)-0.5)*g.CellSize,
	}
}

// Bound returns the extent of the grid.
func (g *Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.XLL, g.YLL},
		Max: orb.Point{g.XLL + float64(g.Cols)*g.CellSize, g.YLL + float64(g.Rows)*g.CellSize},
	}
}

// Window returns the inclusive cell range whose centers may fall inside b,
// clipped to the grid. ok is false when b misses the grid.
func (g *Grid) Window(b orb.Bound) (c0, r0, c1, r1 int, ok bool) {
	gb := g.Bound()
	if !gb.Intersects(b) {
		return 0, 0, 0, 0, false
	}
	c0 = max(0, int(math.Floor((b.Min.X()-g.XLL)/g.CellSize)))
	c1 = min(g.Cols-1, int(math.Floor((b.Max.X()-g.XLL)/g.CellSize)))
	r0 = max(0, int(math.Floor((gb.Max.Y()-b.Max.Y())/g.CellSize)))
	r1 = min(g.Rows-1, int(math.Floor((gb.Max.Y()-b.Min.Y())/g.CellSize)))
	return c0, r0, c1, r1, c0 <= c1 && r0 <= r1
}

// Aligned reports whether g and o share size, origin and cell size.
func (g *Grid) Aligned(o *Grid) bool {
	return g.Cols == o.Cols && g.Rows == o.Rows &&
		g.XLL == o.XLL && g.YLL == o.YLL && g.CellSize == o.CellSize
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := *g
	c.Values = append([]float64(nil), g.Values...)
	return &c
}

// Valid returns the non-NaN values of g.
func (g *Grid) Valid() []float64 {
	out := make([]float64, 0, len(g.Values))
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// mapValues returns a copy of g with fn applied to every cell.
func (g *Grid) mapValues(fn func(float64) float64) *Grid {
	c := g.Clone()
	for i, v := range c.Values {
		c.Values[i] = fn(v)
	}
	return c
}
