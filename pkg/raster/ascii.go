package raster

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// ReadASCII decodes an ESRI ASCII grid. Both corner (xllcorner) and center
// (xllcenter) registrations are accepted; cells equal to NODATA_value
// become NaN.
func ReadASCII(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	g := &Grid{NoData: DefaultNoData}
	var center bool
	var tok string
	haveTok := false

	header := map[string]bool{}
	for {
		if !sc.Scan() {
			return nil, asciiErr(sc.Err(), "unexpected end of header")
		}
		tok = sc.Text()
		key := strings.ToLower(tok)
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			haveTok = true
			break
		}
		if !sc.Scan() {
			return nil, asciiErr(sc.Err(), "missing value for %s", tok)
		}
		val := sc.Text()
		if err := g.setHeader(key, val, &center); err != nil {
			return nil, err
		}
		header[key] = true
	}
	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if !header[k] {
			return nil, errors.New(errors.ErrCodeInvalidRaster, "missing header %s", k)
		}
	}
	if center {
		g.XLL -= g.CellSize / 2
		g.YLL -= g.CellSize / 2
	}
	if g.Cols <= 0 || g.Rows <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidRaster, "grid size must be positive, got %dx%d", g.Cols, g.Rows)
	}

	g.Values = make([]float64, 0, g.Cols*g.Rows)
	for n := g.Cols * g.Rows; len(g.Values) < n; {
		if !haveTok {
			if !sc.Scan() {
				return nil, asciiErr(sc.Err(), "got %d of %d cells", len(g.Values), n)
			}
			tok = sc.Text()
		}
		haveTok = false
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRaster, err, "cell %d", len(g.Values))
		}
		if v == g.NoData {
			v = math.NaN()
		}
		g.Values = append(g.Values, v)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grid) setHeader(key, val string, center *bool) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRaster, err, "header %s", key)
	}
	switch key {
	case "ncols":
		g.Cols = int(f)
	case "nrows":
		g.Rows = int(f)
	case "xllcorner":
		g.XLL = f
	case "yllcorner":
		g.YLL = f
	case "xllcenter":
		g.XLL, *center = f, true
	case "yllcenter":
		g.YLL, *center = f, true
	case "cellsize":
		g.CellSize = f
	case "nodata_value":
		g.NoData = f
	default:
		return errors.New(errors.ErrCodeInvalidRaster, "unknown header %q", key)
	}
	return nil
}

func asciiErr(err error, format string, args ...any) error {
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRaster, err, format, args...)
	}
	return errors.New(errors.ErrCodeInvalidRaster, format, args...)
}

// ImportASCII reads an ESRI ASCII grid file.
func ImportASCII(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadASCII(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteASCII encodes g as an ESRI ASCII grid with corner registration.
// NaN cells are written as g.NoData.
func WriteASCII(g *Grid, w io.Writer) error {
	if err := g.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", g.Cols, g.Rows)
	fmt.Fprintf(bw, "xllcorner %s\nyllcorner %s\n", fmtFloat(g.XLL), fmtFloat(g.YLL))
	fmt.Fprintf(bw, "cellsize %s\nNODATA_value %s\n", fmtFloat(g.CellSize), fmtFloat(g.NoData))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(c, r)
			if math.IsNaN(v) {
				v = g.NoData
			}
			bw.WriteString(fmtFloat(v))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportASCII writes g to an ESRI ASCII grid file at path.
func ExportASCII(g *Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteASCII(g, f)
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
