package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/feature"
)

type envelope struct {
	Type string `json:"type"`
}

// ReadGeoJSON decodes a GeoJSON FeatureCollection from r.
//
// A top-level Feature is wrapped into a collection with one element. Any
// other top-level type, or malformed JSON, is rejected with
// errors.ErrCodeInvalidGeoJSON. ReadGeoJSON does not close r.
func ReadGeoJSON(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeoJSON, err, "decode")
	}

	switch env.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGeoJSON, err, "decode collection")
		}
		return fc, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGeoJSON, err, "decode feature")
		}
		return geojson.NewFeatureCollection().Append(f), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidGeoJSON, "unsupported GeoJSON type %q", env.Type)
}

// ImportGeoJSON reads a GeoJSON file at path. See [ReadGeoJSON].
func ImportGeoJSON(path string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fc, err := ReadGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// ReadLayer decodes a collection from r and wraps it into a layer.
// The layer metadata is validated before returning.
func ReadLayer(r io.Reader, name string, meta feature.Meta) (*feature.Layer, error) {
	fc, err := ReadGeoJSON(r)
	if err != nil {
		return nil, err
	}
	return newLayer(name, meta, fc)
}

// ImportLayer reads a GeoJSON file at path into a layer. See [ReadLayer].
func ImportLayer(path, name string, meta feature.Meta) (*feature.Layer, error) {
	fc, err := ImportGeoJSON(path)
	if err != nil {
		return nil, err
	}
	return newLayer(name, meta, fc)
}

func newLayer(name string, meta feature.Meta, fc *geojson.FeatureCollection) (*feature.Layer, error) {
	l := feature.NewLayer(name, meta, fc)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}
