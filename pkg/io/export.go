package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"
)

// WriteGeoJSON encodes fc as indented GeoJSON and writes it to w.
// The output can be re-imported with [ReadGeoJSON].
func WriteGeoJSON(fc *geojson.FeatureCollection, w io.Writer) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("indent: %w", err)
	}
	buf.WriteByte('\n')

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportGeoJSON writes fc to a GeoJSON file at path.
// This is a convenience wrapper around [WriteGeoJSON] for file-based output.
func ExportGeoJSON(fc *geojson.FeatureCollection, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGeoJSON(fc, f)
}
