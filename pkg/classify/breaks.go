package classify

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Quantiles builds an ascending AtOrBelow/MatchFirst table whose thresholds
// split values into len(colors) classes of roughly equal count. The last
// threshold is the maximum observed value. Quantiles use the nearest-rank
// method. NaN values are ignored.
// opts are applied after the defaults, so WithMissing can still be set.
func Quantiles(values []float64, colors []Color, opts ...Option) (*Table, error) {
	data, err := finite(values, len(colors))
	if err != nil {
		return nil, err
	}

	entries := make([]Breakpoint, len(colors))
	for i, c := range colors {
		pct := 100 * float64(i+1) / float64(len(colors))
		q, err := stats.PercentileNearestRank(data, pct)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "percentile %.1f", pct)
		}
		entries[i] = Breakpoint{Threshold: q, Color: c}
	}
	return NewTable(entries, append([]Option{WithPredicate(AtOrBelow), WithMatch(MatchFirst)}, opts...)...)
}

// EqualInterval builds an ascending AtOrBelow/MatchFirst table splitting the
// observed value range into len(colors) classes of equal width.
func EqualInterval(values []float64, colors []Color, opts ...Option) (*Table, error) {
	data, err := finite(values, len(colors))
	if err != nil {
		return nil, err
	}
	lo, err := stats.Min(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "minimum")
	}
	hi, err := stats.Max(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "maximum")
	}

	step := (hi - lo) / float64(len(colors))
	entries := make([]Breakpoint, len(colors))
	for i, c := range colors {
		entries[i] = Breakpoint{Threshold: lo + step*float64(i+1), Color: c}
	}
	entries[len(entries)-1].Threshold = hi
	return NewTable(entries, append([]Option{WithPredicate(AtOrBelow), WithMatch(MatchFirst)}, opts...)...)
}

// Summary holds descriptive statistics of a value set, used for legends.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// Summarize computes descriptive statistics over the finite values.
func Summarize(values []float64) (Summary, error) {
	data, err := finite(values, 1)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Count: len(data)}
	if s.Min, err = stats.Min(data); err != nil {
		return Summary{}, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return Summary{}, err
	}
	if s.Mean, err = stats.Mean(data); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func finite(values []float64, classes int) (stats.Float64Data, error) {
	if classes <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "at least one color is required")
	}
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no finite values to classify")
	}
	return data, nil
}
