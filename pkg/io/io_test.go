package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/feature"
)

const hexagons = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}, "properties": {"s_mean_21": 25.0}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[1,0],[2,0],[2,1],[1,1],[1,0]]]}, "properties": {"s_mean_21": null}}
  ]
}`

func TestReadGeoJSON(t *testing.T) {
	fc, err := ReadGeoJSON(strings.NewReader(hexagons))
	if err != nil {
		t.Fatalf("ReadGeoJSON() error = %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(fc.Features))
	}
}

func TestReadGeoJSONSingleFeature(t *testing.T) {
	in := `{"type":"Feature","geometry":{"type":"Point","coordinates":[13,47]},"properties":{"v":1}}`
	fc, err := ReadGeoJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGeoJSON() error = %v", err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("got %d features, want 1", len(fc.Features))
	}
}

func TestReadGeoJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"type":`},
		{"geometry", `{"type":"Point","coordinates":[0,0]}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGeoJSON(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidGeoJSON) {
				t.Errorf("ReadGeoJSON() error = %v, want INVALID_GEOJSON", err)
			}
		})
	}
}

func TestReadLayer(t *testing.T) {
	meta := feature.Meta{Kind: feature.KindStats, Attribute: "s_mean_21", Table: "lst"}
	l, err := ReadLayer(strings.NewReader(hexagons), "Hexagons 2021", meta)
	if err != nil {
		t.Fatalf("ReadLayer() error = %v", err)
	}
	if l.Len() != 2 || l.Meta != meta {
		t.Errorf("layer = %d features, meta %+v", l.Len(), l.Meta)
	}
	if vals := l.Values("s_mean_21"); len(vals) != 1 || vals[0] != 25 {
		t.Errorf("Values() = %v", vals)
	}

	_, err = ReadLayer(strings.NewReader(hexagons), "bad", feature.Meta{Kind: feature.KindStats})
	if !errors.Is(err, errors.ErrCodeInvalidLayer) {
		t.Errorf("ReadLayer() with bad meta error = %v", err)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := ImportGeoJSON(filepath.Join(t.TempDir(), "nope.geojson"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportGeoJSON() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRoundTrip(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	g := geojson.NewFeature(orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	g.Properties["s_mean_22"] = 31.125
	fc.Append(g)

	path := filepath.Join(t.TempDir(), "out.geojson")
	if err := ExportGeoJSON(fc, path); err != nil {
		t.Fatalf("ExportGeoJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("\n  \"features\"")) {
		t.Errorf("output is not indented:\n%s", data)
	}

	back, err := ImportGeoJSON(path)
	if err != nil {
		t.Fatalf("ImportGeoJSON() error = %v", err)
	}
	f := feature.New(back.Features[0])
	if v, ok := f.Get("s_mean_22"); !ok || v != 31.125 {
		t.Errorf("round trip value = %v, %v", v, ok)
	}
}
