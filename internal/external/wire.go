package external

import (
	"math"

	"slopecast/internal/types"
)

// deref converts an optional wire value to the NaN missing-value sentinel.
func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// setIfPresent copies an optional wire value into a point's value map,
// leaving the field absent when the provider omitted it.
func setIfPresent(values map[types.Field]float64, f types.Field, v *float64) {
	if v != nil {
		values[f] = *v
	}
}
