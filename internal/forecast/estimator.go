package forecast

import (
	"math"
	"time"

	"slopecast/internal/types"
)

// seasonalWindowDays is the half-width of the seasonal analog window:
// historical days in the target's month whose day-of-month is within this
// many days of the target.
const seasonalWindowDays = 7

// recentWindowDays is the lookback for the recent-trend window.
const recentWindowDays = 30

// baseEstimate is a candidate first guess for a day's forecast, before trend
// and persistence blending.
type baseEstimate struct {
	TemperatureMin float64
	TemperatureAvg float64
	TemperatureMax float64
	Precipitation  float64
}

// estimator produces a candidate base estimate for a target date. The daily
// forecaster consults an ordered chain of estimators and takes the first
// that yields a result.
type estimator interface {
	name() string
	estimate(target time.Time) (baseEstimate, bool)
}

// normalEstimator answers from the climate normal matching the target's
// calendar day. Preferred source: decades of record beat any single season.
type normalEstimator struct {
	byKey map[[2]int]types.ClimateNormal
}

func newNormalEstimator(normals []types.ClimateNormal) *normalEstimator {
	byKey := make(map[[2]int]types.ClimateNormal, len(normals))
	for _, n := range normals {
		byKey[[2]int{n.Month, n.Day}] = n
	}
	return &normalEstimator{byKey: byKey}
}

func (e *normalEstimator) name() string { return "climate_normal" }

func (e *normalEstimator) estimate(target time.Time) (baseEstimate, bool) {
	n, ok := e.byKey[[2]int{int(target.Month()), target.Day()}]
	if !ok {
		return baseEstimate{}, false
	}
	return baseEstimate{
		TemperatureMin: n.TemperatureMin,
		TemperatureAvg: n.TemperatureAvg,
		TemperatureMax: n.TemperatureMax,
		Precipitation:  n.Precipitation,
	}, true
}

// seasonalEstimator averages historical days from the same time of year:
// same month, day-of-month within the analog window. The window does not
// wrap across month boundaries; early-month targets simply match fewer days.
type seasonalEstimator struct {
	history []types.DailyAggregate
}

func (e *seasonalEstimator) name() string { return "seasonal_analog" }

func (e *seasonalEstimator) estimate(target time.Time) (baseEstimate, bool) {
	month := target.Month()
	day := target.Day()

	var analog []types.DailyAggregate
	for _, d := range e.history {
		if d.Date.Month() != month {
			continue
		}
		if dd := d.Date.Day(); dd >= day-seasonalWindowDays && dd <= day+seasonalWindowDays {
			analog = append(analog, d)
		}
	}
	if len(analog) == 0 {
		return baseEstimate{}, false
	}
	return meanEstimate(analog), true
}

// recentEstimator averages the 30 days preceding the target. Last resort:
// it captures current conditions but nothing about the season.
type recentEstimator struct {
	history []types.DailyAggregate
}

func (e *recentEstimator) name() string { return "recent_window" }

func (e *recentEstimator) estimate(target time.Time) (baseEstimate, bool) {
	window := recentWindow(e.history, target)
	if len(window) == 0 {
		return baseEstimate{}, false
	}
	return meanEstimate(window), true
}

// recentWindow returns the historical days in the recentWindowDays preceding
// the target date, in input (chronological) order.
func recentWindow(history []types.DailyAggregate, target time.Time) []types.DailyAggregate {
	cutoff := types.Midnight(target).AddDate(0, 0, -recentWindowDays)
	var window []types.DailyAggregate
	for _, d := range history {
		day := types.Midnight(d.Date)
		if !day.Before(cutoff) && day.Before(types.Midnight(target)) {
			window = append(window, d)
		}
	}
	return window
}

// meanEstimate computes NaN-skipping per-field means over a set of days.
func meanEstimate(days []types.DailyAggregate) baseEstimate {
	return baseEstimate{
		TemperatureMin: nanMean(days, func(d types.DailyAggregate) float64 { return d.TemperatureMin }),
		TemperatureAvg: nanMean(days, func(d types.DailyAggregate) float64 { return d.TemperatureAvg }),
		TemperatureMax: nanMean(days, func(d types.DailyAggregate) float64 { return d.TemperatureMax }),
		Precipitation:  nanMean(days, func(d types.DailyAggregate) float64 { return d.Precipitation }),
	}
}

// nanMean averages the known values of one field. All-missing yields NaN.
func nanMean(days []types.DailyAggregate, get func(types.DailyAggregate) float64) float64 {
	var sum float64
	var n int
	for _, d := range days {
		v := get(d)
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
