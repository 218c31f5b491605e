package cache

import "sort"

// Keyer builds cache keys for pipeline artifacts.
type Keyer interface {
	// StyledKey identifies a layer styled with a table.
	StyledKey(layerHash string, opts StyledKeyOpts) string
	// HexgridKey identifies hexagon statistics.
	HexgridKey(opts HexgridKeyOpts) string
	// CompositeKey identifies a median composite of masked scenes.
	CompositeKey(sceneHashes []string) string
}

// StyledKeyOpts are the inputs of a styled layer besides its features.
type StyledKeyOpts struct {
	Attribute string `json:"attribute"`
	TableHash string `json:"table"`
}

// HexgridKeyOpts are the inputs of a hexagon aggregation.
type HexgridKeyOpts struct {
	AOIHash    string            `json:"aoi"`
	Resolution int               `json:"resolution"`
	Bands      map[string]string `json:"bands"` // key -> grid hash
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) StyledKey(layerHash string, opts StyledKeyOpts) string {
	return hashKey("styled", layerHash, opts)
}

func (DefaultKeyer) HexgridKey(opts HexgridKeyOpts) string {
	// encoding/json sorts map keys, so band order does not matter.
	return hashKey("hexgrid", opts)
}

func (DefaultKeyer) CompositeKey(sceneHashes []string) string {
	// A median does not depend on scene order.
	sorted := append([]string(nil), sceneHashes...)
	sort.Strings(sorted)
	return hashKey("composite", sorted)
}
