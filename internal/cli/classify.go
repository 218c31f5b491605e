package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/thermogrid/pkg/classify"
	"github.com/matzehuels/thermogrid/pkg/config"
	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/io"
)

const (
	methodQuantile = "quantile"
	methodEqual    = "equal"
)

// lookupTable builds the named table from the loaded configuration.
func (c *CLI) lookupTable(name string) (*classify.Table, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	t, ok := cfg.Table(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeTableNotFound, "table %q not found", name)
	}
	return t.Build()
}

// parseValue reads a command-line value. "nan", "null", "none" and "-"
// stand for a missing value.
func parseValue(s string) (v float64, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nan", "null", "none", "-":
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid value %q", s)
	}
	return v, true, nil
}

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "classify <value>...",
		Short: "Map attribute values to their display colors",
		Long: `Classify looks up each value in a breakpoint table and prints the color it
is drawn with. Use "nan" or "null" for a missing value.`,
		Example: `  thermogrid classify 25.3 31 null
  thermogrid classify --config viewer.toml --table lst 29.9`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.lookupTable(table)
			if err != nil {
				return err
			}
			for _, arg := range args {
				v, ok, err := parseValue(arg)
				if err != nil {
					return err
				}
				col := t.Classify(v, ok)
				fmt.Println(swatch(col) + " " + StyleValue.Render(fmt.Sprintf("%-10s", arg)) + " " + StyleHighlight.Render(col.Hex()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", config.DefaultTable.Name, "breakpoint table name")
	return cmd
}

// legendCommand creates the legend command.
func (c *CLI) legendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "legend [table]",
		Short: "Print the color bands of a breakpoint table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.DefaultTable.Name
			if len(args) == 1 {
				name = args[0]
			}
			t, err := c.lookupTable(name)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(name) + " " + StyleDim.Render(fmt.Sprintf("(%s, %s match)", t.Predicate(), t.Match())))
			for _, b := range t.Bands() {
				printBand(b.Color, b.Label())
			}
			printBand(t.Missing(), "no data")
			return nil
		},
	}
}

// breaksOpts holds the flags of the breaks command.
type breaksOpts struct {
	attribute string
	method    string
	classes   int
	palette   string
	name      string
}

// breaksCommand creates the breaks command.
func (c *CLI) breaksCommand() *cobra.Command {
	opts := breaksOpts{method: methodQuantile, classes: 5, palette: "heat", name: "generated"}

	cmd := &cobra.Command{
		Use:   "breaks <file.geojson>",
		Short: "Derive a breakpoint table from the values of an attribute",
		Long: `Breaks reads a GeoJSON file, collects the values of one attribute and
prints a [[table]] block for the viewer configuration.`,
		Example: `  thermogrid breaks Hexagons_Summer.geojson --attribute s_mean_21 --classes 5`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := runBreaks(args[0], opts)
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(struct {
				Tables []config.Table `toml:"table"`
			}{[]config.Table{t}})
		},
	}

	cmd.Flags().StringVarP(&opts.attribute, "attribute", "a", "", "attribute to classify (required)")
	cmd.Flags().StringVarP(&opts.method, "method", "m", opts.method, "class break method: quantile, equal")
	cmd.Flags().IntVarP(&opts.classes, "classes", "k", opts.classes, "number of classes")
	cmd.Flags().StringVarP(&opts.palette, "palette", "p", opts.palette, "palette: "+strings.Join(classify.PaletteNames(), ", "))
	cmd.Flags().StringVar(&opts.name, "name", opts.name, "table name in the output")
	_ = cmd.MarkFlagRequired("attribute")

	return cmd
}

// runBreaks computes class breaks and returns them as a config table.
func runBreaks(path string, opts breaksOpts) (config.Table, error) {
	fc, err := io.ImportGeoJSON(path)
	if err != nil {
		return config.Table{}, err
	}
	var values []float64
	for _, f := range fc.Features {
		if v, ok := f.Properties[opts.attribute].(float64); ok {
			values = append(values, v)
		}
	}

	colors, err := classify.Palette(opts.palette, opts.classes)
	if err != nil {
		return config.Table{}, err
	}
	var t *classify.Table
	switch opts.method {
	case methodQuantile:
		t, err = classify.Quantiles(values, colors)
	case methodEqual:
		t, err = classify.EqualInterval(values, colors)
	default:
		return config.Table{}, errors.New(errors.ErrCodeInvalidInput, "unknown method %q (must be %q or %q)", opts.method, methodQuantile, methodEqual)
	}
	if err != nil {
		return config.Table{}, err
	}

	if sum, err := classify.Summarize(values); err == nil {
		fmt.Fprintln(os.Stderr, StyleDim.Render(fmt.Sprintf("# %d values, min %.2f, median %.2f, max %.2f", sum.Count, sum.Min, sum.Median, sum.Max)))
	}

	out := config.Table{Name: opts.name, Predicate: t.Predicate().String(), Match: t.Match().String()}
	for _, e := range t.Entries() {
		out.Breaks = append(out.Breaks, e.Threshold)
		out.Colors = append(out.Colors, e.Color.Hex())
	}
	return out, nil
}
