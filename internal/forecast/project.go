package forecast

import (
	"math"
	"time"

	"slopecast/internal/interp"
	"slopecast/internal/types"
)

// pointsPerDay is the number of quarter-hour points in the 24-hour
// projection window.
const pointsPerDay = 96

// Placeholder values for fields the daily forecast carries no model for.
// They are documented approximations, not derived from any input.
const (
	placeholderHumidity      = 50.0
	placeholderWindSpeed     = 5.0
	placeholderWindDirection = 0.0
	placeholderPressure      = 1013.0
	placeholderCloudCover    = 50.0
)

// ProjectQuarterHour expands one day's forecast into 96 quarter-hour points
// covering the 24 hours that start at the first 15-minute boundary after the
// latest actual observation. Temperatures follow the engine's canonical
// diurnal curve mapped into the forecast's [min, max] band; precipitation is
// split evenly across the window. The caller upserts the points by
// timestamp, replacing any earlier projection.
func ProjectQuarterHour(daily types.Forecast, latestActual time.Time) types.Series {
	out := types.NewSeries(types.Cadence15Min)

	start := latestActual.UTC().Truncate(15 * time.Minute).Add(15 * time.Minute)

	precipPerPoint := 0.0
	if !math.IsNaN(daily.Precipitation) && daily.Precipitation > 0 {
		precipPerPoint = daily.Precipitation / pointsPerDay
	}

	for i := 0; i < pointsPerDay; i++ {
		t := start.Add(time.Duration(i) * 15 * time.Minute)
		hour := float64(t.Hour()) + float64(t.Minute())/60
		temp := interp.DiurnalTemperature(hour, daily.TemperatureMin, daily.TemperatureMax)

		out.Append(types.TimePoint{
			Timestamp: t,
			Values: map[types.Field]float64{
				types.FieldTemperature:   temp,
				types.FieldFeelsLike:     temp,
				types.FieldHumidity:      placeholderHumidity,
				types.FieldPrecipitation: precipPerPoint,
				types.FieldSnow:          0,
				types.FieldWindSpeed:     placeholderWindSpeed,
				types.FieldWindDirection: placeholderWindDirection,
				types.FieldPressure:      placeholderPressure,
				types.FieldCloudCover:    placeholderCloudCover,
				types.FieldCondition:     float64(daily.Condition),
			},
		})
	}
	return out
}
