package cli

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thermogrid/internal/server"
	"github.com/matzehuels/thermogrid/pkg/config"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/session"
)

// loadScene loads --config and every layer it names.
func (c *CLI) loadScene() (*config.Config, *config.Scene, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	scene, err := cfg.LoadScene()
	if err != nil {
		return nil, nil, err
	}
	return cfg, scene, nil
}

// pickCommand creates the pick command.
func (c *CLI) pickCommand() *cobra.Command {
	var x, y float64
	var layers string

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Show the topmost statistics feature under a viewport pixel",
		Example: `  thermogrid pick --config viewer.toml --x 512 --y 384
  thermogrid pick --config viewer.toml --x 512 --y 384 --layers '^Hexagons'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, scene, err := c.loadScene()
			if err != nil {
				return err
			}

			filter := pick.StatsLayers()
			if layers != "" {
				re, err := regexp.Compile(layers)
				if err != nil {
					return fmt.Errorf("invalid --layers pattern: %w", err)
				}
				filter = pick.NamedStatsLayers(re)
			}

			px := pick.Pixel{X: x, Y: y}
			hit, ok := pick.NewPicker(scene.Canvas, filter).PickAt(cmd.Context(), px)
			if !ok {
				printInfo("No statistics feature at (%g, %g)", x, y)
				return nil
			}

			pt := scene.Canvas.Viewport().ToPoint(px)
			printSuccess("%s", StyleTitle.Render(hit.Layer.Name))
			printKeyValue("location", fmt.Sprintf("%.5f, %.5f", pt.Lon(), pt.Lat()))
			if fn, ok := scene.Styles[hit.Layer.Name]; ok {
				spec := fn(hit.Feature)
				printKeyValue("fill", swatch(spec.Fill)+" "+spec.Fill.Hex())
			}

			props := hit.Feature.Properties()
			keys := make([]string, 0, len(props))
			for k := range props {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				printKeyValue(k, fmt.Sprint(props[k]))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "pixel column, from the left edge")
	cmd.Flags().Float64Var(&y, "y", 0, "pixel row, from the top edge")
	cmd.Flags().StringVar(&layers, "layers", "", "only pick layers whose name matches this regular expression")
	return cmd
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve click-to-highlight sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, scene, err := c.loadScene()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			srv := server.New(scene, session.NewMemoryStore(), server.Config{
				Addr:       cfg.Server.Addr,
				SessionTTL: cfg.Server.SessionTTL,
				Logger:     loggerFromContext(cmd.Context()),
			})
			printInfo("Serving %d layers on %s", len(scene.Canvas.Layers()), StyleHighlight.Render(srv.Addr()))
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config)")
	return cmd
}
