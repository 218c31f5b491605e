// Package config loads the viewer configuration from TOML.
//
// A configuration lists the viewport, the breakpoint tables and the layers
// shown on the map:
//
//	[viewport]
//	min_lon = 12.95
//	min_lat = 47.74
//	max_lon = 13.12
//	max_lat = 47.86
//
//	[[table]]
//	name = "lst"
//	breaks = [24.74, 26.72, 28.43, 30.37, 34.5]
//	palette = "heat"
//
//	[[layer]]
//	name = "Hexagons 2021"
//	source = "Hexagons_Summer.geojson"
//	kind = "stats"
//	attribute = "s_mean_21"
//	table = "lst"
//
// Relative layer sources resolve against the directory of the config file.
// Omitted sections fall back to [Default].
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/paulmach/orb"

	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/pick"
)

// Config is the complete viewer configuration.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Server   Server   `toml:"server"`
	Tables   []Table  `toml:"table"`
	Layers   []Layer  `toml:"layer"`

	dir string
}

// Viewport is the map extent and screen size used for picking.
type Viewport struct {
	MinLon float64 `toml:"min_lon"`
	MinLat float64 `toml:"min_lat"`
	MaxLon float64 `toml:"max_lon"`
	MaxLat float64 `toml:"max_lat"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
}

// Server configures the HTTP API.
type Server struct {
	Addr       string        `toml:"addr"`
	SessionTTL time.Duration `toml:"session_ttl"`
}

// Table is a breakpoint table. Colors may be given explicitly or drawn from
// a named palette with one color per break.
type Table struct {
	Name      string    `toml:"name"`
	Predicate string    `toml:"predicate"`
	Match     string    `toml:"match"`
	Missing   string    `toml:"missing,omitempty"`
	Breaks    []float64 `toml:"breaks"`
	Colors    []string  `toml:"colors,omitempty"`
	Palette   string    `toml:"palette,omitempty"`
}

// Layer is a map layer backed by a GeoJSON file.
type Layer struct {
	Name      string `toml:"name"`
	Source    string `toml:"source"`
	Kind      string `toml:"kind"`
	Attribute string `toml:"attribute"`
	Table     string `toml:"table"`
	Year      int    `toml:"year"`
	Visible   *bool  `toml:"visible"`
	ZIndex    int    `toml:"z_index"`
}

// Defaults.
const (
	DefaultAddr       = ":8080"
	DefaultSessionTTL = 2 * time.Hour
	DefaultWidth      = 1024
	DefaultHeight     = 768
)

// DefaultTable is the summer LST table used when a config defines none.
var DefaultTable = Table{
	Name:      "lst",
	Predicate: "<=",
	Match:     "first",
	Breaks:    []float64{24.74, 26.72, 28.43, 30.37, 34.5},
	Colors:    []string{"#ffffb2", "#fecc5c", "#fd8d3c", "#f03b20", "#bd0026"},
}

// Default returns the built-in configuration: the Salzburg viewport, the
// default LST table and no layers.
func Default() *Config {
	return &Config{
		Viewport: Viewport{
			MinLon: 12.95, MinLat: 47.74, MaxLon: 13.12, MaxLat: 47.86,
			Width: DefaultWidth, Height: DefaultHeight,
		},
		Server: Server{Addr: DefaultAddr, SessionTTL: DefaultSessionTTL},
		Tables: []Table{DefaultTable},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	cfg, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates a configuration. Relative sources resolve
// against the working directory.
func Parse(data []byte) (*Config, error) {
	return parse(data, ".")
}

func parse(data []byte, dir string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(names, ", "))
	}
	cfg.dir = dir
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Viewport == (Viewport{}) {
		c.Viewport = def.Viewport
	}
	if c.Viewport.Width == 0 {
		c.Viewport.Width = DefaultWidth
	}
	if c.Viewport.Height == 0 {
		c.Viewport.Height = DefaultHeight
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = DefaultSessionTTL
	}
	if len(c.Tables) == 0 {
		c.Tables = def.Tables
	}
}

// Validate checks the configuration for consistency. Errors carry
// errors.ErrCodeInvalidConfig or a more specific code.
func (c *Config) Validate() error {
	if err := c.Viewport.Pick().Validate(); err != nil {
		return err
	}
	if c.Server.SessionTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "session_ttl must not be negative")
	}

	tables := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if err := errors.ValidateName("table", t.Name); err != nil {
			return err
		}
		if tables[t.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate table %q", t.Name)
		}
		tables[t.Name] = true
		if _, err := t.Build(); err != nil {
			return err
		}
	}

	layers := make(map[string]bool, len(c.Layers))
	for _, l := range c.Layers {
		if layers[l.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate layer %q", l.Name)
		}
		layers[l.Name] = true
		if err := errors.ValidatePath(l.Source); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layer %q", l.Name)
		}
		meta, err := l.Meta()
		if err != nil {
			return err
		}
		probe := feature.Layer{Name: l.Name, Meta: meta}
		if err := probe.Validate(); err != nil {
			return err
		}
		if meta.IsStats() && !tables[meta.Table] {
			return errors.New(errors.ErrCodeTableNotFound, "layer %q references unknown table %q", l.Name, meta.Table)
		}
	}
	return nil
}

// Pick returns the viewport as a picking viewport.
func (v Viewport) Pick() pick.Viewport {
	return pick.Viewport{
		Bound:  orb.Bound{Min: orb.Point{v.MinLon, v.MinLat}, Max: orb.Point{v.MaxLon, v.MaxLat}},
		Width:  v.Width,
		Height: v.Height,
	}
}

// Build returns the classify table described by t.
func (t Table) Build() (*classify.Table, error) {
	pred, err := classify.ParsePredicate(t.Predicate)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "table %q", t.Name)
	}
	match, err := classify.ParseMatchPolicy(t.Match)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "table %q", t.Name)
	}
	opts := []classify.Option{classify.WithPredicate(pred), classify.WithMatch(match)}
	if t.Missing != "" {
		c, err := classify.ParseColor(t.Missing)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "table %q missing color", t.Name)
		}
		opts = append(opts, classify.WithMissing(c))
	}

	colors, err := t.colors()
	if err != nil {
		return nil, err
	}
	if len(colors) != len(t.Breaks) {
		return nil, errors.New(errors.ErrCodeInvalidTable, "table %q has %d breaks but %d colors", t.Name, len(t.Breaks), len(colors))
	}

	entries := make([]classify.Breakpoint, len(t.Breaks))
	for i, b := range t.Breaks {
		entries[i] = classify.Breakpoint{Threshold: b, Color: colors[i]}
	}
	tbl, err := classify.NewTable(entries, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "table %q", t.Name)
	}
	return tbl, nil
}

func (t Table) colors() ([]classify.Color, error) {
	if len(t.Colors) == 0 && t.Palette != "" {
		cs, err := classify.Palette(t.Palette, len(t.Breaks))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "table %q", t.Name)
		}
		return cs, nil
	}
	out := make([]classify.Color, len(t.Colors))
	for i, s := range t.Colors {
		c, err := classify.ParseColor(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "table %q color %d", t.Name, i)
		}
		out[i] = c
	}
	return out, nil
}

// Meta returns the layer metadata.
func (l Layer) Meta() (feature.Meta, error) {
	kind, err := feature.ParseKind(l.Kind)
	if err != nil {
		return feature.Meta{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "layer %q", l.Name)
	}
	return feature.Meta{Kind: kind, Attribute: l.Attribute, Table: l.Table, Year: l.Year}, nil
}

// IsVisible reports the layer's initial visibility; layers are visible
// unless disabled.
func (l Layer) IsVisible() bool { return l.Visible == nil || *l.Visible }

// SourcePath resolves the layer source against the config directory.
func (c *Config) SourcePath(l Layer) string {
	if filepath.IsAbs(l.Source) || c.dir == "" {
		return l.Source
	}
	return filepath.Join(c.dir, l.Source)
}

// Table returns the table named name.
func (c *Config) Table(name string) (Table, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
