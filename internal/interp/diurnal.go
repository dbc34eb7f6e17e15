package interp

import "math"

// Diurnal temperature pattern anchors: coldest around 06:00 local, warmest
// around 15:00. This cosine model is the single canonical diurnal curve for
// the whole engine; the sub-hourly forecast projector uses it too.
const (
	diurnalMinHour = 6.0
	diurnalMaxHour = 15.0
)

// DiurnalFraction maps a fractional hour of day (e.g. 14.5 for 14:30) to a
// value in [0, 1]: 0 at the daily temperature minimum (06:00), 1 at the
// maximum (15:00). The curve rises as a half cosine from 06:00 to 15:00 and
// falls from 15:00 through the night to 06:00 the next day.
func DiurnalFraction(hour float64) float64 {
	switch {
	case hour < diurnalMinHour:
		// Late night, still descending toward the morning minimum.
		return 0.5 + 0.5*math.Cos(math.Pi*(hour+24-diurnalMaxHour)/(diurnalMinHour+24-diurnalMaxHour))
	case hour < diurnalMaxHour:
		// Morning warm-up.
		return 0.5 - 0.5*math.Cos(math.Pi*(hour-diurnalMinHour)/(diurnalMaxHour-diurnalMinHour))
	default:
		// Afternoon and evening cool-down.
		return 0.5 + 0.5*math.Cos(math.Pi*(hour-diurnalMaxHour)/(diurnalMinHour+24-diurnalMaxHour))
	}
}

// DiurnalTemperature maps the fraction into a [min, max] temperature band.
func DiurnalTemperature(hour, min, max float64) float64 {
	return min + DiurnalFraction(hour)*(max-min)
}
