// Package pkg provides the core libraries for thermogrid.
//
// # Overview
//
// Thermogrid turns land surface temperature rasters into hexagon statistics
// and lets map viewers explore them: each hexagon is colored by a breakpoint
// table and a click highlights exactly one hexagon per session. The pkg
// directory is organized into three areas:
//
//  1. Data preparation: [raster] (composites), [hexgrid] (H3 statistics),
//     [io] (GeoJSON), [pipeline] (cached runs of both)
//  2. Presentation: [classify] (colors and tables), [feature] (layers),
//     [style] (per-feature styles)
//  3. Interaction: [pick] (hit testing), [highlight] (state machine),
//     [session] (per-viewer state), [config] (viewer setup)
//
// # Architecture
//
// The typical data flow:
//
//	surface temperature scenes + cloud masks
//	         ↓
//	    [raster] masked median composite
//	         ↓
//	    [hexgrid] zonal means per H3 cell
//	         ↓
//	    [classify] + [style] fill colors
//	         ↓
//	    [pick] + [highlight] click-to-highlight per [session]
//
// # Quick Start
//
//	cfg, _ := config.Load("viewer.toml")
//	scene, _ := cfg.LoadScene()
//
//	picker := pick.NewPicker(scene.Canvas, pick.StatsLayers())
//	sess := session.New(picker, session.NewSheet(scene.Canvas, scene.Styles), session.DefaultTTL)
//
//	t := sess.Controller().Click(ctx, pick.Pixel{X: 512, Y: 384})
//	fmt.Println(t.From, "→", t.To)
//
// Supporting packages: [cache] stores pipeline artifacts, [errors] carries
// machine-readable codes, [observability] exposes hooks and [buildinfo]
// holds version data.
package pkg
