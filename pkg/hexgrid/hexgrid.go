// Package hexgrid builds hexagonal zonal statistics from raster composites.
//
// An area of interest is tessellated into H3 cells ([Tessellate]), and every
// composite contributes one column of per-cell means ([Aggregate]). Columns
// are keyed by acquisition year, e.g. "s_mean_21" for a 2021 summer
// composite ([StatKey]). The result is the GeoJSON FeatureCollection the map
// viewer classifies and picks from.
package hexgrid

import (
	"regexp"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	h3 "github.com/uber/h3-go/v3"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Cell is one H3 hexagon.
type Cell struct {
	Index   h3.H3Index
	ID      string
	Polygon orb.Polygon
}

// NewCell returns the cell for idx with its boundary polygon.
func NewCell(idx h3.H3Index) Cell {
	boundary := h3.ToGeoBoundary(idx)
	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, c := range boundary {
		ring = append(ring, orb.Point{c.Longitude, c.Latitude})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return Cell{Index: idx, ID: h3.ToString(idx), Polygon: orb.Polygon{ring}}
}

// Tessellate covers aoi with the H3 cells of resolution res whose centers
// fall inside it. Cells are sorted by ID.
func Tessellate(aoi orb.Polygon, res int) ([]Cell, error) {
	if err := errors.ValidateResolution(res); err != nil {
		return nil, err
	}
	if len(aoi) == 0 || len(aoi[0]) < 4 {
		return nil, errors.New(errors.ErrCodeInvalidGeoJSON, "area of interest needs a closed exterior ring")
	}

	gp := h3.GeoPolygon{Geofence: geoRing(aoi[0])}
	for _, hole := range aoi[1:] {
		gp.Holes = append(gp.Holes, geoRing(hole))
	}

	idx := h3.Polyfill(gp, res)
	cells := make([]Cell, 0, len(idx))
	for _, i := range idx {
		cells = append(cells, NewCell(i))
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return cells, nil
}

func geoRing(r orb.Ring) []h3.GeoCoord {
	out := make([]h3.GeoCoord, 0, len(r))
	for _, p := range r {
		out = append(out, h3.GeoCoord{Latitude: p.Lat(), Longitude: p.Lon()})
	}
	return out
}

// AOI returns the area of interest from a collection: the polygon of the
// first feature, or the first polygon of a multipolygon.
func AOI(fc *geojson.FeatureCollection) (orb.Polygon, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGeoJSON, "area of interest has no features")
	}
	switch g := fc.Features[0].Geometry.(type) {
	case orb.Polygon:
		return g, nil
	case orb.MultiPolygon:
		if len(g) > 0 {
			return g[0], nil
		}
	case orb.Bound:
		return g.ToPolygon(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidGeoJSON, "area of interest must be a polygon")
}

var yearRe = regexp.MustCompile(`(?:19|20)\d{2}`)

// StatKey derives the attribute key for a composite from its file name,
// using the last four-digit year it contains: "Median_Summer_2021.asc"
// yields "s_mean_21".
func StatKey(name string) (string, error) {
	years := yearRe.FindAllString(name, -1)
	if len(years) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "no year in %q", name)
	}
	return "s_mean_" + years[len(years)-1][2:], nil
}
