package types

import "time"

// Cadence is the nominal sampling interval of a time series.
type Cadence string

const (
	Cadence15Min   Cadence = "15min"
	CadenceHourly  Cadence = "hourly"
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// ParseCadence maps an interval string to a Cadence. Unknown strings resolve
// to Cadence15Min, the finest supported resolution: callers asking for an
// interval we do not understand get their data back at native resolution
// rather than an error.
func ParseCadence(s string) Cadence {
	switch Cadence(s) {
	case Cadence15Min, CadenceHourly, CadenceDaily, CadenceWeekly, CadenceMonthly:
		return Cadence(s)
	default:
		return Cadence15Min
	}
}

// BucketStart returns the start of the bucket containing t for this cadence.
// Hourly buckets start on the hour, daily at midnight UTC, weekly on Monday
// at midnight UTC, and monthly on the first of the month.
func (c Cadence) BucketStart(t time.Time) time.Time {
	t = t.UTC()
	switch c {
	case CadenceHourly:
		return t.Truncate(time.Hour)
	case CadenceDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case CadenceWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// time.Weekday puts Sunday at 0; shift so weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case CadenceMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(15 * time.Minute)
	}
}

// ConditionCode is the simplified weather condition classification stored on
// observations and forecasts.
type ConditionCode int

const (
	ConditionClear        ConditionCode = 1
	ConditionPartlyCloudy ConditionCode = 2
	ConditionCloudy       ConditionCode = 3
	ConditionRain         ConditionCode = 4
	ConditionThunderstorm ConditionCode = 5
	ConditionSnow         ConditionCode = 6
	ConditionFog          ConditionCode = 7
)

// String returns a human-readable label for dashboards and logs.
func (c ConditionCode) String() string {
	switch c {
	case ConditionClear:
		return "clear"
	case ConditionPartlyCloudy:
		return "partly_cloudy"
	case ConditionCloudy:
		return "cloudy"
	case ConditionRain:
		return "rain"
	case ConditionThunderstorm:
		return "thunderstorm"
	case ConditionSnow:
		return "snow"
	case ConditionFog:
		return "fog"
	default:
		return "unknown"
	}
}
