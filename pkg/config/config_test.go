package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/feature"
)

const viewerConfig = `
[viewport]
min_lon = 12.95
min_lat = 47.74
max_lon = 13.12
max_lat = 47.86
width = 800
height = 600

[server]
addr = "127.0.0.1:9000"
session_ttl = "30m"

[[table]]
name = "lst"
predicate = "<="
match = "first"
missing = "#9e9e9e99"
breaks = [24.74, 26.72, 28.43, 30.37, 34.5]
colors = ["#ffffb2", "#fecc5c", "#fd8d3c", "#f03b20", "#bd0026"]

[[table]]
name = "anomaly"
predicate = ">"
match = "last"
breaks = [-2.0, 0.0, 2.0]
palette = "coolwarm"

[[layer]]
name = "Hexagons 2021"
source = "hex.geojson"
kind = "stats"
attribute = "s_mean_21"
table = "lst"
year = 2021
z_index = 2

[[layer]]
name = "Composite 2021"
source = "composite.geojson"
kind = "composite"
visible = false
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(viewerConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Viewport.Width != 800 || cfg.Viewport.MaxLat != 47.86 {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.SessionTTL != 30*time.Minute {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if len(cfg.Tables) != 2 || len(cfg.Layers) != 2 {
		t.Fatalf("got %d tables, %d layers", len(cfg.Tables), len(cfg.Layers))
	}

	hex := cfg.Layers[0]
	meta, err := hex.Meta()
	if err != nil {
		t.Fatal(err)
	}
	want := feature.Meta{Kind: feature.KindStats, Attribute: "s_mean_21", Table: "lst", Year: 2021}
	if meta != want || !hex.IsVisible() || hex.ZIndex != 2 {
		t.Errorf("layer 0 = %+v, meta %+v", hex, meta)
	}
	if cfg.Layers[1].IsVisible() {
		t.Error("layer 1 should be hidden")
	}
}

func TestBuildTables(t *testing.T) {
	cfg, err := Parse([]byte(viewerConfig))
	if err != nil {
		t.Fatal(err)
	}
	tables, err := cfg.BuildTables()
	if err != nil {
		t.Fatalf("BuildTables() error = %v", err)
	}

	lst := tables["lst"]
	if got := lst.Lookup(25.0); got != classify.MustParseColor("#fecc5c") {
		t.Errorf("lst.Lookup(25) = %v", got)
	}
	if got := lst.Classify(0, false); got != classify.MustParseColor("#9e9e9e99") {
		t.Errorf("lst missing color = %v", got)
	}

	anomaly := tables["anomaly"]
	if anomaly.Predicate() != classify.Above || anomaly.Match() != classify.MatchLast {
		t.Errorf("anomaly policy = %v/%v", anomaly.Predicate(), anomaly.Match())
	}
	if len(anomaly.Entries()) != 3 {
		t.Errorf("anomaly entries = %d", len(anomaly.Entries()))
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	def := Default()
	if cfg.Viewport != def.Viewport || cfg.Server != def.Server {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Tables) != 1 || cfg.Tables[0].Name != "lst" {
		t.Errorf("default tables = %+v", cfg.Tables)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		code errors.Code
	}{
		{"syntax", `[viewport`, errors.ErrCodeInvalidConfig},
		{"unknown key", "[viewport]\nzoom = 3", errors.ErrCodeInvalidConfig},
		{"empty viewport bound", "[viewport]\nmin_lon = 1.0\nmax_lon = 1.0\nmax_lat = 2.0", errors.ErrCodeInvalidViewport},
		{"break color mismatch", "[[table]]\nname = \"t\"\nbreaks = [1.0, 2.0]\ncolors = [\"#fff\"]", errors.ErrCodeInvalidTable},
		{"non monotone", "[[table]]\nname = \"t\"\nbreaks = [1.0, 3.0, 2.0]\ncolors = [\"#fff\", \"#000\", \"#f00\"]", errors.ErrCodeInvalidTable},
		{"bad predicate", "[[table]]\nname = \"t\"\npredicate = \"<\"\nbreaks = [1.0]\ncolors = [\"#fff\"]", errors.ErrCodeInvalidTable},
		{"duplicate table", "[[table]]\nname = \"t\"\nbreaks = [1.0]\ncolors = [\"#fff\"]\n[[table]]\nname = \"t\"\nbreaks = [1.0]\ncolors = [\"#fff\"]", errors.ErrCodeInvalidConfig},
		{"unknown table", "[[layer]]\nname = \"h\"\nsource = \"h.geojson\"\nkind = \"stats\"\nattribute = \"m\"\ntable = \"nope\"", errors.ErrCodeTableNotFound},
		{"bad kind", "[[layer]]\nname = \"h\"\nsource = \"h.geojson\"\nkind = \"vector\"", errors.ErrCodeInvalidConfig},
		{"traversal", "[[layer]]\nname = \"h\"\nsource = \"../h.geojson\"", errors.ErrCodeInvalidConfig},
		{"stats without attribute", "[[layer]]\nname = \"h\"\nsource = \"h.geojson\"\nkind = \"stats\"\ntable = \"lst\"", errors.ErrCodeInvalidLayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

const hexagons = `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[12.95,47.74],[13.12,47.74],[13.12,47.86],[12.95,47.86],[12.95,47.74]]]},"properties":{"s_mean_21":25.0}}]}`

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("hex.geojson", hexagons)
	write("composite.geojson", `{"type":"FeatureCollection","features":[]}`)
	write("viewer.toml", viewerConfig)

	cfg, err := Load(filepath.Join(dir, "viewer.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	sc, err := cfg.LoadScene()
	if err != nil {
		t.Fatalf("LoadScene() error = %v", err)
	}

	l, ok := sc.Canvas.Layer("Hexagons 2021")
	if !ok || l.Len() != 1 || l.ZIndex != 2 {
		t.Fatalf("hexagon layer = %+v", l)
	}
	comp, _ := sc.Canvas.Layer("Composite 2021")
	if comp.Visible {
		t.Error("composite layer should be hidden")
	}

	spec := sc.Styles["Hexagons 2021"](l.Features()[0])
	if spec.Fill != classify.MustParseColor("#fecc5c") {
		t.Errorf("styled fill = %v", spec.Fill)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoadSceneMissingSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.toml")
	os.WriteFile(path, []byte(viewerConfig), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.LoadScene(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadScene() error = %v", err)
	}
}
