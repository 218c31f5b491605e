package classify

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Predicate is the comparison between a value and a breakpoint threshold.
type Predicate int

const (
	// AtOrBelow accepts a breakpoint when value <= threshold.
	AtOrBelow Predicate = iota
	// Above accepts a breakpoint when value > threshold.
	Above
)

func (p Predicate) holds(v, threshold float64) bool {
	if p == Above {
		return v > threshold
	}
	return v <= threshold
}

func (p Predicate) String() string {
	if p == Above {
		return ">"
	}
	return "<="
}

// ParsePredicate parses "<=" (also "le") or ">" (also "gt").
func ParsePredicate(s string) (Predicate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "<=", "le", "":
		return AtOrBelow, nil
	case ">", "gt":
		return Above, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidTable, "unknown predicate %q (want <= or >)", s)
}

// MatchPolicy selects which satisfied breakpoint wins.
type MatchPolicy int

const (
	// MatchFirst returns the first breakpoint whose predicate holds.
	MatchFirst MatchPolicy = iota
	// MatchLast scans every breakpoint and returns the last one whose predicate holds.
	MatchLast
)

func (m MatchPolicy) String() string {
	if m == MatchLast {
		return "last"
	}
	return "first"
}

// ParseMatchPolicy parses "first" or "last".
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "":
		return MatchFirst, nil
	case "last":
		return MatchLast, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidTable, "unknown match policy %q (want first or last)", s)
}

// Order is the direction of a table's thresholds.
type Order int

const (
	// Ascending tables list thresholds from smallest to largest.
	Ascending Order = iota
	// Descending tables list thresholds from largest to smallest.
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// Breakpoint pairs a threshold with the color of its band.
type Breakpoint struct {
	Threshold float64
	Color     Color
}

// Table is an immutable breakpoint table. It is safe for concurrent use.
type Table struct {
	entries []Breakpoint
	pred    Predicate
	match   MatchPolicy
	order   Order
	missing Color
	clamp   Color
}

// Option configures a Table.
type Option func(*Table)

// WithPredicate sets the comparison predicate (default AtOrBelow).
func WithPredicate(p Predicate) Option { return func(t *Table) { t.pred = p } }

// WithMatch sets the match policy (default MatchFirst).
func WithMatch(m MatchPolicy) Option { return func(t *Table) { t.match = m } }

// WithMissing sets the color for missing values (default DefaultMissing).
func WithMissing(c Color) Option { return func(t *Table) { t.missing = c } }

// NewTable validates entries and builds a table.
// Thresholds must be finite and monotone (ascending or descending; equal
// neighbours are allowed).
func NewTable(entries []Breakpoint, opts ...Option) (*Table, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTable, "table needs at least one breakpoint")
	}
	t := &Table{
		entries: append([]Breakpoint(nil), entries...),
		missing: DefaultMissing,
	}
	for _, opt := range opts {
		opt(t)
	}

	order, err := detectOrder(t.entries)
	if err != nil {
		return nil, err
	}
	t.order = order
	t.clamp = t.boundary()
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(entries []Breakpoint, opts ...Option) *Table {
	t, err := NewTable(entries, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func detectOrder(entries []Breakpoint) (Order, error) {
	var up, down bool
	for i, e := range entries {
		if math.IsNaN(e.Threshold) || math.IsInf(e.Threshold, 0) {
			return 0, errors.New(errors.ErrCodeInvalidTable, "breakpoint %d has non-finite threshold", i)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1].Threshold
		up = up || e.Threshold > prev
		down = down || e.Threshold < prev
	}
	if up && down {
		return 0, errors.New(errors.ErrCodeInvalidTable, "thresholds must be monotonically ordered")
	}
	if down {
		return Descending, nil
	}
	return Ascending, nil
}

// boundary is the color returned when no breakpoint accepts a value: the
// largest threshold for AtOrBelow, the smallest for Above. Ties go to the
// entry the match policy would have picked.
func (t *Table) boundary() Color {
	best := t.entries[0]
	for _, e := range t.entries[1:] {
		better := e.Threshold > best.Threshold
		if t.pred == Above {
			better = e.Threshold < best.Threshold
		}
		if better || (e.Threshold == best.Threshold && t.match == MatchLast) {
			best = e
		}
	}
	return best.Color
}

// Classify returns the display color for v. When ok is false, or v is NaN,
// the value is missing and the table's Missing color is returned.
func (t *Table) Classify(v float64, ok bool) Color {
	if !ok || math.IsNaN(v) {
		return t.missing
	}

	var (
		out   Color
		found bool
	)
	for _, e := range t.entries {
		if !t.pred.holds(v, e.Threshold) {
			continue
		}
		out, found = e.Color, true
		if t.match == MatchFirst {
			break
		}
	}
	if !found {
		return t.clamp
	}
	return out
}

// Lookup classifies a present value.
func (t *Table) Lookup(v float64) Color { return t.Classify(v, true) }

// Entries returns a copy of the breakpoints in their authored order.
func (t *Table) Entries() []Breakpoint { return append([]Breakpoint(nil), t.entries...) }

func (t *Table) Predicate() Predicate { return t.pred }
func (t *Table) Match() MatchPolicy   { return t.match }
func (t *Table) Order() Order         { return t.order }
func (t *Table) Missing() Color       { return t.missing }

// Band is a contiguous value interval (Min, Max] rendered with one color.
// Min is -Inf for the lowest band and Max is +Inf for the highest.
type Band struct {
	Min   float64
	Max   float64
	Color Color
}

// Label renders the band for a legend, e.g. "<= 24.74", "24.74 - 26.72", "> 34.5".
func (b Band) Label() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case math.IsInf(b.Min, -1) && math.IsInf(b.Max, 1):
		return "all values"
	case math.IsInf(b.Min, -1):
		return "<= " + f(b.Max)
	case math.IsInf(b.Max, 1):
		return "> " + f(b.Min)
	}
	return fmt.Sprintf("%s - %s", f(b.Min), f(b.Max))
}

// Bands describes the step function as ascending value intervals, merging
// neighbours that share a color. Each interval is probed through Classify,
// so the result reflects the configured predicate and match policy.
func (t *Table) Bands() []Band {
	cuts := make([]float64, 0, len(t.entries))
	for _, e := range t.entries {
		cuts = append(cuts, e.Threshold)
	}
	sort.Float64s(cuts)
	cuts = dedupe(cuts)

	// Boundaries belong to the lower interval under both predicates, so
	// probing the upper edge of each interval is exact.
	bounds := append([]float64{math.Inf(-1)}, cuts...)
	bounds = append(bounds, math.Inf(1))

	var bands []Band
	for i := 1; i < len(bounds); i++ {
		lo, hi := bounds[i-1], bounds[i]
		probe := hi
		if math.IsInf(hi, 1) {
			probe = math.Nextafter(lo, math.Inf(1))
		}
		c := t.Lookup(probe)
		if n := len(bands); n > 0 && bands[n-1].Color == c {
			bands[n-1].Max = hi
			continue
		}
		bands = append(bands, Band{Min: lo, Max: hi, Color: c})
	}
	return bands
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
