// Package classify maps measured attribute values onto display colors.
//
// A [Table] is an ordered list of (threshold, color) breakpoints defining a
// step function from a real-valued measurement (for example the mean land
// surface temperature of a hexagon) to a color. Two knobs describe how a
// value is matched against the breakpoints:
//
//   - [Predicate]: [AtOrBelow] (value <= threshold) or [Above] (value > threshold)
//   - [MatchPolicy]: [MatchFirst] stops at the first satisfied breakpoint,
//     [MatchLast] scans the whole table and keeps the last satisfied one
//
// Ascending tables are usually paired with AtOrBelow/MatchFirst and
// descending tables with AtOrBelow/MatchLast; both yield the same bands.
//
// # Clamping and missing values
//
// A value no breakpoint accepts is clamped to the nearest boundary color:
// the largest threshold for AtOrBelow, the smallest for Above. A missing
// value (absent attribute or NaN) never reaches the breakpoints and maps to
// the table's Missing color, [DefaultMissing] unless overridden.
//
// # Building tables
//
// Tables are usually authored in configuration, but [Quantiles] and
// [EqualInterval] derive breakpoints from observed values, and [Ramp] and
// [Palette] produce color sequences blended in CIE-L*a*b* space.
package classify
