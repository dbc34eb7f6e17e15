package types

import (
	"math"
	"time"
)

// Region is a ski-resort area whose weather we track. Coordinates feed the
// upstream weather provider; Code is the stable identifier used in API paths.
type Region struct {
	ID        string  `json:"id" db:"id"`
	Code      string  `json:"code" db:"code"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Country   string  `json:"country" db:"country"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Zone is an energy-market load zone tracked independently of weather regions.
type Zone struct {
	ID     string `json:"id" db:"id"`
	Code   string `json:"code" db:"code"`
	Name   string `json:"name" db:"name"`
	ISORTO string `json:"iso_rto" db:"iso_rto"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DailyAggregate is a date-keyed daily weather summary. Missing values are
// NaN, matching the upstream station data where any field can be absent for
// a given day.
type DailyAggregate struct {
	Date           time.Time `json:"date"`
	TemperatureMin float64   `json:"temperature_min"`
	TemperatureAvg float64   `json:"temperature_avg"`
	TemperatureMax float64   `json:"temperature_max"`
	Precipitation  float64   `json:"precipitation"`
	Snow           float64   `json:"snow"`
	WindSpeed      float64   `json:"wind_speed"`
	WindDirection  float64   `json:"wind_direction"`
	Pressure       float64   `json:"pressure"`
}

// HasTemperatureBounds reports whether both min and max are known, i.e. the
// day can constrain interpolated temperatures.
func (d DailyAggregate) HasTemperatureBounds() bool {
	return !math.IsNaN(d.TemperatureMin) && !math.IsNaN(d.TemperatureMax)
}

// MonthlyAggregate is a (year, month)-keyed long-period summary.
type MonthlyAggregate struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	TemperatureMin float64 `json:"temperature_min"`
	TemperatureAvg float64 `json:"temperature_avg"`
	TemperatureMax float64 `json:"temperature_max"`
	Precipitation  float64 `json:"precipitation"`
}

// ClimateNormal is a long-run average for one calendar day, independent of
// year. Keyed by (Month, Day).
type ClimateNormal struct {
	Month          int     `json:"month"`
	Day            int     `json:"day"`
	TemperatureMin float64 `json:"temperature_min"`
	TemperatureAvg float64 `json:"temperature_avg"`
	TemperatureMax float64 `json:"temperature_max"`
	Precipitation  float64 `json:"precipitation"`
}

// HasTemperatureBounds reports whether the normal can drive the diurnal
// temperature pattern.
func (n ClimateNormal) HasTemperatureBounds() bool {
	return !math.IsNaN(n.TemperatureMin) && !math.IsNaN(n.TemperatureMax)
}

// Forecast is one day's prediction. ForecastDate is the day the forecast was
// computed; TargetDate is the day it predicts. Both are UTC midnights.
// Forecasts are upserted by (region, forecast_date, target_date): recomputing
// overwrites the previous prediction for the same key.
type Forecast struct {
	RegionID       string        `json:"region_id" db:"region_id"`
	ForecastDate   time.Time     `json:"forecast_date" db:"forecast_date"`
	TargetDate     time.Time     `json:"target_date" db:"target_date"`
	TemperatureMin float64       `json:"temperature_min" db:"temperature_min"`
	TemperatureAvg float64       `json:"temperature_avg" db:"temperature_avg"`
	TemperatureMax float64       `json:"temperature_max" db:"temperature_max"`
	Precipitation  float64       `json:"precipitation" db:"precipitation"`
	Condition      ConditionCode `json:"condition" db:"condition"`
}

// ETLRun is the persisted record of one pipeline execution, written when the
// run finishes.
type ETLRun struct {
	ID         string    `json:"id" db:"id"`
	Pipeline   string    `json:"pipeline" db:"pipeline"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Status     string    `json:"status" db:"status"`
	Units      int       `json:"units" db:"units"`
	UnitErrors int       `json:"unit_errors" db:"unit_errors"`
}

// Midnight truncates t to its UTC calendar day.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
