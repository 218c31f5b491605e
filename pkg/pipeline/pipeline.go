// Package pipeline runs the offline and serving pipelines with caching.
//
// Three pipelines share one [Runner]:
//
//  1. Composite: mask raw surface temperature scenes and reduce a season
//     of them to a per-pixel median composite.
//  2. Hexgrid: tessellate an area of interest into H3 hexagons and attach
//     one zonal mean column per composite.
//  3. Style: classify a layer with a breakpoint table and export it as
//     GeoJSON with simplestyle properties.
//
// Each pipeline keys its artifact by a hash of every input, so repeated runs
// over the same inputs are served from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Hexgrid(ctx, pipeline.HexgridOptions{
//	    AOI:        aoi,
//	    Resolution: 9,
//	    Bands:      bands,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("Hexagons_Summer.geojson", res.GeoJSON, 0o644)
package pipeline

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/hexgrid"
	"github.com/matzehuels/thermogrid/pkg/raster"
)

// DefaultResolution is the H3 resolution used when none is given.
const DefaultResolution = 9

// =============================================================================
// Options
// =============================================================================

// StyleOptions configures the style pipeline.
type StyleOptions struct {
	Layer *feature.Layer
	Table *classify.Table
	// Refresh bypasses the cache.
	Refresh bool
}

// HexgridOptions configures the hexagon statistics pipeline.
type HexgridOptions struct {
	AOI        orb.Polygon
	Resolution int
	Bands      []hexgrid.Band
	Refresh    bool
}

// Scene is one raw acquisition: surface temperature digital numbers and the
// matching cloud mask.
type Scene struct {
	DN    *raster.Grid
	Cloud *raster.Grid
}

// CompositeOptions configures the composite pipeline.
type CompositeOptions struct {
	Scenes  []Scene
	Refresh bool
}

// =============================================================================
// Results
// =============================================================================

// Result holds a GeoJSON artifact.
type Result struct {
	GeoJSON  []byte
	Features int
	CacheHit bool
	Duration time.Duration
}

// CompositeResult holds a median composite.
type CompositeResult struct {
	Grid     *raster.Grid
	CacheHit bool
	Duration time.Duration
}
