package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thermogrid/pkg/config"
	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/hexgrid"
	"github.com/matzehuels/thermogrid/pkg/io"
	"github.com/matzehuels/thermogrid/pkg/pipeline"
	"github.com/matzehuels/thermogrid/pkg/raster"
)

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// =============================================================================
// style
// =============================================================================

type styleOpts struct {
	attribute string
	table     string
	output    string
	noCache   bool
}

// styleCommand creates the style command.
func (c *CLI) styleCommand() *cobra.Command {
	opts := styleOpts{table: config.DefaultTable.Name}

	cmd := &cobra.Command{
		Use:     "style <file.geojson>",
		Short:   "Classify a stats layer and export it with simplestyle properties",
		Example: `  thermogrid style Hexagons_Summer.geojson --attribute s_mean_21 -o styled.geojson`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(loggerFromContext(cmd.Context()))

			t, err := c.lookupTable(opts.table)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			layer, err := io.ImportLayer(args[0], name, feature.Meta{
				Kind:      feature.KindStats,
				Attribute: opts.attribute,
				Table:     opts.table,
			})
			if err != nil {
				return err
			}

			runner, err := c.newRunner(opts.noCache)
			if err != nil {
				return err
			}
			res, err := runner.Style(cmd.Context(), pipeline.StyleOptions{Layer: layer, Table: t})
			if err != nil {
				return err
			}
			if err := writeOutput(opts.output, res.GeoJSON); err != nil {
				return err
			}
			if opts.output != "" {
				printStats(res.Features, "features", res.CacheHit)
				prog.done("Styled " + name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.attribute, "attribute", "a", "", "attribute to classify (required)")
	cmd.Flags().StringVarP(&opts.table, "table", "t", opts.table, "breakpoint table name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	_ = cmd.MarkFlagRequired("attribute")

	return cmd
}

// =============================================================================
// hexgrid
// =============================================================================

type hexgridOpts struct {
	aoi        string
	resolution int
	output     string
	noCache    bool
}

// hexgridCommand creates the hexgrid command.
func (c *CLI) hexgridCommand() *cobra.Command {
	opts := hexgridOpts{resolution: pipeline.DefaultResolution}

	cmd := &cobra.Command{
		Use:   "hexgrid <composite.asc>...",
		Short: "Tessellate an area into H3 hexagons and attach zonal mean temperatures",
		Long: `Hexgrid fills the area of interest with H3 cells and computes, for every
composite, the mean of the raster cells whose centers fall inside each
hexagon. Each composite becomes an attribute named after the last year in its
file name, e.g. LST_Summer_2021.asc becomes s_mean_21.`,
		Example: `  thermogrid hexgrid --aoi salzburg.geojson -o Hexagons_Summer.geojson LST_Summer_2021.asc LST_Summer_2022.asc`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			fc, err := io.ImportGeoJSON(opts.aoi)
			if err != nil {
				return err
			}
			aoi, err := hexgrid.AOI(fc)
			if err != nil {
				return err
			}

			bands := make([]hexgrid.Band, 0, len(args))
			for _, path := range args {
				key, err := hexgrid.StatKey(filepath.Base(path))
				if err != nil {
					return err
				}
				g, err := raster.ImportASCII(path)
				if err != nil {
					return err
				}
				bands = append(bands, hexgrid.Band{Key: key, Grid: g})
			}

			runner, err := c.newRunner(opts.noCache)
			if err != nil {
				return err
			}
			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Aggregating %d composites at resolution %d", len(bands), opts.resolution))
			spinner.Start()
			res, err := runner.Hexgrid(ctx, pipeline.HexgridOptions{
				AOI:        aoi,
				Resolution: opts.resolution,
				Bands:      bands,
			})
			spinner.Stop()
			if err != nil {
				return err
			}

			if err := writeOutput(opts.output, res.GeoJSON); err != nil {
				return err
			}
			if opts.output != "" {
				printStats(res.Features, "hexagons", res.CacheHit)
				prog.done(fmt.Sprintf("Aggregated %d hexagons", res.Features))
				printNextStep("Derive a table", fmt.Sprintf("%s breaks %s --attribute %s", appName, opts.output, bands[0].Key))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.aoi, "aoi", "", "area of interest GeoJSON (required)")
	cmd.Flags().IntVarP(&opts.resolution, "resolution", "r", opts.resolution, "H3 resolution (0-15)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	_ = cmd.MarkFlagRequired("aoi")

	return cmd
}

// =============================================================================
// composite
// =============================================================================

// parseScene splits a "dn.asc:cloud.asc" argument.
func parseScene(arg string) (dn, cloud string, err error) {
	dn, cloud, ok := strings.Cut(arg, ":")
	if !ok || dn == "" || cloud == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "scene %q must be <lst.asc>:<cloud.asc>", arg)
	}
	return dn, cloud, nil
}

// compositeCommand creates the composite command.
func (c *CLI) compositeCommand() *cobra.Command {
	var output string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "composite <lst.asc:cloud.asc>...",
		Short: "Build a median surface temperature composite from raw scenes",
		Long: `Composite decodes every scene to degrees Celsius, removes cloudy pixels
and the 1% tails, and writes the per-pixel median of all scenes as an ESRI
ASCII grid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			scenes := make([]pipeline.Scene, 0, len(args))
			for _, arg := range args {
				dnPath, cloudPath, err := parseScene(arg)
				if err != nil {
					return err
				}
				dn, err := raster.ImportASCII(dnPath)
				if err != nil {
					return err
				}
				cloud, err := raster.ImportASCII(cloudPath)
				if err != nil {
					return err
				}
				scenes = append(scenes, pipeline.Scene{DN: dn, Cloud: cloud})
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			res, err := runner.Composite(ctx, pipeline.CompositeOptions{Scenes: scenes})
			if err != nil {
				return err
			}

			if output == "" {
				return raster.WriteASCII(res.Grid, os.Stdout)
			}
			if err := raster.ExportASCII(res.Grid, output); err != nil {
				return err
			}
			printFile(output)
			printStats(len(res.Grid.Valid()), "valid cells", res.CacheHit)
			prog.done(fmt.Sprintf("Composited %d scenes", len(scenes)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output grid (stdout when empty)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
