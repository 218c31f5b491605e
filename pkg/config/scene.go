package config

import (
	"fmt"

	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/io"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/style"
)

// Scene is a loaded configuration: layers stacked on a canvas, built tables
// and the style callback of every layer. A Scene is shared read-only by all
// sessions.
type Scene struct {
	Canvas *pick.Canvas
	Tables map[string]*classify.Table
	Styles map[string]style.Func
}

// BuildTables builds every configured table, keyed by name.
func (c *Config) BuildTables() (map[string]*classify.Table, error) {
	out := make(map[string]*classify.Table, len(c.Tables))
	for _, t := range c.Tables {
		tbl, err := t.Build()
		if err != nil {
			return nil, err
		}
		out[t.Name] = tbl
	}
	return out, nil
}

// LoadScene reads every layer source and assembles the scene.
func (c *Config) LoadScene() (*Scene, error) {
	tables, err := c.BuildTables()
	if err != nil {
		return nil, err
	}
	canvas, err := pick.NewCanvas(c.Viewport.Pick())
	if err != nil {
		return nil, err
	}

	sc := &Scene{Canvas: canvas, Tables: tables, Styles: make(map[string]style.Func, len(c.Layers))}
	for _, l := range c.Layers {
		meta, err := l.Meta()
		if err != nil {
			return nil, err
		}
		layer, err := io.ImportLayer(c.SourcePath(l), l.Name, meta)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		layer.Visible = l.IsVisible()
		layer.ZIndex = l.ZIndex
		if err := canvas.AddLayer(layer); err != nil {
			return nil, err
		}
		sc.Styles[l.Name] = style.ForLayer(meta, tables[meta.Table], style.Base)
	}
	return sc, nil
}
