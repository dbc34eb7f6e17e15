package timeseries

import "slopecast/internal/types"

// ResampleGrouped resamples each group's series independently with identical
// rules and returns a map of the same shape. Used for pivot-style responses
// such as fuel-mix-by-source or per-zone load, where each group is its own
// series rather than a column in a shared table.
func ResampleGrouped(groups map[string]types.Series, cadence types.Cadence, fn AggFunc) map[string]types.Series {
	if len(groups) == 0 {
		return map[string]types.Series{}
	}
	out := make(map[string]types.Series, len(groups))
	for key, s := range groups {
		out[key] = Resample(s, cadence, fn)
	}
	return out
}
