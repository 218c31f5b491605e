// Package io provides GeoJSON import and export for map layers.
//
// # Overview
//
// Hexagon statistics and reference layers travel as GeoJSON FeatureCollections.
// This package reads them into [feature.Layer] values and writes layers (or
// styled collections) back out. Decoding and encoding are delegated to
// paulmach/orb's geojson package.
//
// # Import
//
// Use [ImportGeoJSON] to read a collection from a file path, or [ReadGeoJSON]
// to read from any io.Reader:
//
//	fc, err := io.ImportGeoJSON("Hexagons_Summer.geojson")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A single top-level Feature is accepted and wrapped in a one-element
// collection. [ImportLayer] and [ReadLayer] additionally wrap the collection
// into a named layer carrying explicit metadata:
//
//	l, err := io.ImportLayer("hex.geojson", "Hexagons 2021", feature.Meta{
//	    Kind: feature.KindStats, Attribute: "s_mean_21", Table: "lst",
//	})
//
// Decoding errors carry the INVALID_GEOJSON code; a missing file carries
// FILE_NOT_FOUND.
//
// # Export
//
// Use [ExportGeoJSON] to write a collection to a file, or [WriteGeoJSON] to
// write to any io.Writer. Output is indented for readability and can be
// re-imported with [ReadGeoJSON].
package io
