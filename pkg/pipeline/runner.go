package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/thermogrid/pkg/cache"
	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/hexgrid"
	"github.com/matzehuels/thermogrid/pkg/io"
	"github.com/matzehuels/thermogrid/pkg/observability"
	"github.com/matzehuels/thermogrid/pkg/raster"
	"github.com/matzehuels/thermogrid/pkg/style"
)

// Runner executes pipelines with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// =============================================================================
// Style
// =============================================================================

// Style classifies opts.Layer with opts.Table and returns the styled
// collection as GeoJSON.
func (r *Runner) Style(ctx context.Context, opts StyleOptions) (res *Result, err error) {
	if opts.Layer == nil || opts.Table == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "style needs a layer and a table")
	}
	start := time.Now()
	observability.Pipeline().OnStyleStart(ctx, opts.Layer.Name, opts.Layer.Len())
	defer func() { observability.Pipeline().OnStyleComplete(ctx, opts.Layer.Name, time.Since(start), err) }()

	layerJSON, err := opts.Layer.Collection().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode layer: %w", err)
	}
	tableJSON, err := tableFingerprint(opts.Table)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.StyledKey(cache.Hash(layerJSON), cache.StyledKeyOpts{
		Attribute: opts.Layer.Meta.Attribute,
		TableHash: cache.Hash(tableJSON),
	})

	if data, ok := r.lookup(ctx, "styled", key, opts.Refresh); ok {
		return &Result{GeoJSON: data, Features: opts.Layer.Len(), CacheHit: true, Duration: time.Since(start)}, nil
	}

	sheet := style.NewSheet()
	sheet.AddLayer(opts.Layer, style.ForLayer(opts.Layer.Meta, opts.Table, style.Base))
	data, err := encode(sheet.Styled(opts.Layer))
	if err != nil {
		return nil, err
	}
	r.store(ctx, "styled", key, data, cache.StyledTTL)

	r.Logger.Info("styled layer", "layer", opts.Layer.Name, "features", opts.Layer.Len(), "duration", time.Since(start))
	return &Result{GeoJSON: data, Features: opts.Layer.Len(), Duration: time.Since(start)}, nil
}

// tableFingerprint serializes everything that affects classification.
func tableFingerprint(t *classify.Table) ([]byte, error) {
	data, err := json.Marshal(struct {
		Entries   []classify.Breakpoint
		Predicate string
		Match     string
		Missing   classify.Color
	}{t.Entries(), t.Predicate().String(), t.Match().String(), t.Missing()})
	if err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return data, nil
}

// =============================================================================
// Hexgrid
// =============================================================================

// Hexgrid tessellates opts.AOI and aggregates every band into it.
func (r *Runner) Hexgrid(ctx context.Context, opts HexgridOptions) (res *Result, err error) {
	if opts.Resolution == 0 {
		opts.Resolution = DefaultResolution
	}
	if len(opts.Bands) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "hexgrid needs at least one band")
	}
	start := time.Now()

	aoiJSON, err := geojson.NewGeometry(opts.AOI).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode aoi: %w", err)
	}
	keyOpts := cache.HexgridKeyOpts{
		AOIHash:    cache.Hash(aoiJSON),
		Resolution: opts.Resolution,
		Bands:      make(map[string]string, len(opts.Bands)),
	}
	for _, b := range opts.Bands {
		h, err := gridHash(b.Grid)
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", b.Key, err)
		}
		keyOpts.Bands[b.Key] = h
	}
	key := r.Keyer.HexgridKey(keyOpts)

	if data, ok := r.lookup(ctx, "hexgrid", key, opts.Refresh); ok {
		fc, err := io.ReadGeoJSON(bytes.NewReader(data))
		if err == nil {
			return &Result{GeoJSON: data, Features: len(fc.Features), CacheHit: true, Duration: time.Since(start)}, nil
		}
	}

	cells, err := hexgrid.Tessellate(opts.AOI, opts.Resolution)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	r.Logger.Debug("tessellated area of interest", "cells", len(cells), "resolution", opts.Resolution)

	observability.Pipeline().OnAggregateStart(ctx, len(cells), len(opts.Bands))
	defer func() { observability.Pipeline().OnAggregateComplete(ctx, len(cells), time.Since(start), err) }()

	fc, err := hexgrid.Aggregate(ctx, cells, opts.Bands)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	data, err := encode(fc)
	if err != nil {
		return nil, err
	}
	r.store(ctx, "hexgrid", key, data, cache.HexgridTTL)

	r.Logger.Info("aggregated hexagons", "cells", len(cells), "bands", len(opts.Bands), "duration", time.Since(start))
	return &Result{GeoJSON: data, Features: len(cells), Duration: time.Since(start)}, nil
}

// =============================================================================
// Composite
// =============================================================================

// Composite masks every scene and reduces them to a median composite.
// Scenes are masked concurrently.
func (r *Runner) Composite(ctx context.Context, opts CompositeOptions) (*CompositeResult, error) {
	if len(opts.Scenes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "composite needs at least one scene")
	}
	start := time.Now()

	hashes := make([]string, len(opts.Scenes))
	for i, s := range opts.Scenes {
		dn, err := gridHash(s.DN)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		cl, err := gridHash(s.Cloud)
		if err != nil {
			return nil, fmt.Errorf("scene %d cloud mask: %w", i, err)
		}
		hashes[i] = cache.Hash([]byte(dn + cl))
	}
	key := r.Keyer.CompositeKey(hashes)

	if data, ok := r.lookup(ctx, "composite", key, opts.Refresh); ok {
		if g, err := raster.ReadASCII(bytes.NewReader(data)); err == nil {
			return &CompositeResult{Grid: g, CacheHit: true, Duration: time.Since(start)}, nil
		}
	}

	masked := make([]*raster.Grid, len(opts.Scenes))
	g, _ := errgroup.WithContext(ctx)
	for i, s := range opts.Scenes {
		g.Go(func() error {
			m, err := raster.MaskScene(s.DN, s.Cloud)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
			masked[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	comp, err := raster.MedianComposite(masked...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := raster.WriteASCII(comp, &buf); err != nil {
		return nil, err
	}
	r.store(ctx, "composite", key, buf.Bytes(), cache.CompositeTTL)

	r.Logger.Info("built median composite", "scenes", len(opts.Scenes), "valid", len(comp.Valid()), "duration", time.Since(start))
	return &CompositeResult{Grid: comp, Duration: time.Since(start)}, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (r *Runner) lookup(ctx context.Context, keyType, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	r.Logger.Debug("cache hit", "type", keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func encode(fc *geojson.FeatureCollection) ([]byte, error) {
	var buf bytes.Buffer
	if err := io.WriteGeoJSON(fc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gridHash(g *raster.Grid) (string, error) {
	if g == nil {
		return "", errors.New(errors.ErrCodeInvalidRaster, "missing grid")
	}
	var buf bytes.Buffer
	if err := raster.WriteASCII(g, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}
