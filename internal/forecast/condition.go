// Package forecast generates daily and weekly weather forecasts from
// historical daily aggregates, climate normals, and short-term persistence,
// and projects a day's forecast into fine-grained 15-minute points.
package forecast

import (
	"math"

	"slopecast/internal/types"
)

// Precipitation thresholds (mm/day) separating the condition classes.
const (
	heavyPrecip = 10.0
	lightPrecip = 1.0
	tracePrecip = 0.1
)

// snowTempCutoff is the average temperature (deg C) below which precipitation
// is classified as snow.
const snowTempCutoff = 2.0

// clearTempCutoff is the average temperature above which a dry day is
// classified as clear rather than partly cloudy.
const clearTempCutoff = 25.0

// EstimateCondition classifies a day from its average temperature and
// precipitation total. Missing (NaN) precipitation yields the partly-cloudy
// default: with no precipitation signal there is nothing to classify on.
func EstimateCondition(avgTemp, precipitation float64) types.ConditionCode {
	if math.IsNaN(precipitation) {
		return types.ConditionPartlyCloudy
	}

	cold := !math.IsNaN(avgTemp) && avgTemp < snowTempCutoff

	switch {
	case precipitation > heavyPrecip:
		if cold {
			return types.ConditionSnow
		}
		return types.ConditionThunderstorm
	case precipitation > lightPrecip:
		if cold {
			return types.ConditionSnow
		}
		return types.ConditionRain
	case precipitation > tracePrecip:
		return types.ConditionCloudy
	}

	if !math.IsNaN(avgTemp) && avgTemp > clearTempCutoff {
		return types.ConditionClear
	}
	return types.ConditionPartlyCloudy
}
