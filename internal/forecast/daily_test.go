package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slopecast/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func flatDay(date time.Time, tMin, tAvg, tMax, precip float64) types.DailyAggregate {
	return types.DailyAggregate{
		Date:           date,
		TemperatureMin: tMin,
		TemperatureAvg: tAvg,
		TemperatureMax: tMax,
		Precipitation:  precip,
	}
}

func TestDailyUsesClimateNormalFirst(t *testing.T) {
	f := New(nil)
	target := day(2026, time.March, 20)

	normals := []types.ClimateNormal{
		{Month: 3, Day: 20, TemperatureMin: -2, TemperatureAvg: 3, TemperatureMax: 8, Precipitation: 1.5},
	}

	fc := f.Daily(nil, normals, target, day(2026, time.March, 10))
	require.NotNil(t, fc)

	assert.Equal(t, target, fc.TargetDate)
	assert.Equal(t, day(2026, time.March, 10), fc.ForecastDate)
	assert.InDelta(t, -2, fc.TemperatureMin, 1e-9)
	assert.InDelta(t, 3, fc.TemperatureAvg, 1e-9)
	assert.InDelta(t, 8, fc.TemperatureMax, 1e-9)
	assert.InDelta(t, 1.5, fc.Precipitation, 1e-9)
	assert.Equal(t, types.ConditionRain, fc.Condition)
}

func TestDailyFallsBackToSeasonalAnalog(t *testing.T) {
	f := New(nil)
	target := day(2026, time.March, 20)

	// Prior-year history in the analog window; outside the recent window, so
	// no trend or persistence applies.
	history := []types.DailyAggregate{
		flatDay(day(2025, time.March, 15), 0, 4, 8, 2),
		flatDay(day(2025, time.March, 22), 2, 6, 10, 4),
		// Same month but outside the +/-7 day window.
		flatDay(day(2025, time.March, 1), -20, -20, -20, 50),
		// Wrong month entirely.
		flatDay(day(2025, time.July, 20), 30, 30, 30, 0),
	}

	fc := f.Daily(history, nil, target, day(2026, time.March, 10))
	require.NotNil(t, fc)

	assert.InDelta(t, 1, fc.TemperatureMin, 1e-9)
	assert.InDelta(t, 5, fc.TemperatureAvg, 1e-9)
	assert.InDelta(t, 9, fc.TemperatureMax, 1e-9)
	assert.InDelta(t, 3, fc.Precipitation, 1e-9)
}

func TestDailyFallsBackToRecentWindow(t *testing.T) {
	f := New(nil)
	target := day(2026, time.March, 10)

	// Recent days in a different month: the seasonal analog finds nothing,
	// the recent window does. With no normals the trend is a no-op.
	history := []types.DailyAggregate{
		flatDay(day(2026, time.February, 20), 0, 2, 4, 0),
		flatDay(day(2026, time.February, 22), 2, 4, 6, 0),
	}

	fc := f.Daily(history, nil, target, day(2026, time.March, 1))
	require.NotNil(t, fc)

	assert.InDelta(t, 1, fc.TemperatureMin, 1e-9)
	assert.InDelta(t, 3, fc.TemperatureAvg, 1e-9)
	assert.InDelta(t, 5, fc.TemperatureMax, 1e-9)
	assert.InDelta(t, 0, fc.Precipitation, 1e-9)
	assert.Equal(t, types.ConditionPartlyCloudy, fc.Condition)
}

func TestDailyNoDataReturnsNil(t *testing.T) {
	f := New(nil)
	fc := f.Daily(nil, nil, day(2026, time.March, 20), day(2026, time.March, 10))
	assert.Nil(t, fc)
}

func TestDailyTrendBlending(t *testing.T) {
	f := New(nil)
	target := day(2026, time.March, 20)
	now := day(2026, time.March, 15) // 5 days ahead: past the persistence horizon

	normals := []types.ClimateNormal{
		{Month: 3, Day: 20, TemperatureMin: 0, TemperatureAvg: 5, TemperatureMax: 10, Precipitation: 2},
	}
	// Recent days running 3 degrees warm and twice as wet as normal.
	history := []types.DailyAggregate{
		flatDay(day(2026, time.March, 10), 3, 8, 13, 4),
		flatDay(day(2026, time.March, 11), 3, 8, 13, 4),
		flatDay(day(2026, time.March, 12), 3, 8, 13, 4),
	}

	fc := f.Daily(history, normals, target, now)
	require.NotNil(t, fc)

	// Anomaly 3 dampened to 2.1; precip ratio 2 -> scale 2*0.7+0.3 = 1.7.
	assert.InDelta(t, 2.1, fc.TemperatureMin, 1e-9)
	assert.InDelta(t, 7.1, fc.TemperatureAvg, 1e-9)
	assert.InDelta(t, 12.1, fc.TemperatureMax, 1e-9)
	assert.InDelta(t, 3.4, fc.Precipitation, 1e-9)
	assert.Equal(t, types.ConditionRain, fc.Condition)
}

func TestDailyPrecipRatioClamped(t *testing.T) {
	f := New(nil)
	target := day(2026, time.March, 20)
	now := day(2026, time.March, 15)

	normals := []types.ClimateNormal{
		{Month: 3, Day: 20, TemperatureMin: 0, TemperatureAvg: 5, TemperatureMax: 10, Precipitation: 2},
	}
	// 20x normal precipitation: raw scale 20*0.7+0.3 = 14.3, clamped to 3.
	history := []types.DailyAggregate{
		flatDay(day(2026, time.March, 12), 0, 5, 10, 40),
	}

	fc := f.Daily(history, normals, target, now)
	require.NotNil(t, fc)
	assert.InDelta(t, 6, fc.Precipitation, 1e-9)
}

func TestDailyPersistenceOneDayAhead(t *testing.T) {
	f := New(nil)
	target := day(2026, time.March, 20)
	now := day(2026, time.March, 19)

	normals := []types.ClimateNormal{
		{Month: 3, Day: 20, TemperatureMin: 0, TemperatureAvg: 5, TemperatureMax: 10, Precipitation: 2},
	}
	history := []types.DailyAggregate{
		flatDay(day(2026, time.March, 19), 2, 8, 14, 4),
	}

	fc := f.Daily(history, normals, target, now)
	require.NotNil(t, fc)

	// After the trend (anomaly 2.1, precip scale 1.7) the estimate is
	// min 2.1, avg 7.1, max 12.1, precip 3.4. One day ahead blends 60%
	// toward the observed day.
	assert.InDelta(t, 2.1*0.4+2*0.6, fc.TemperatureMin, 1e-9)
	assert.InDelta(t, 7.1*0.4+8*0.6, fc.TemperatureAvg, 1e-9)
	assert.InDelta(t, 12.1*0.4+14*0.6, fc.TemperatureMax, 1e-9)
	assert.InDelta(t, 3.4*0.4+4*0.6, fc.Precipitation, 1e-9)
}

func TestDailyPersistenceTwoDaysAhead(t *testing.T) {
	f := New(nil)
	target := day(2026, time.March, 20)
	now := day(2026, time.March, 18)

	normals := []types.ClimateNormal{
		{Month: 3, Day: 20, TemperatureMin: 0, TemperatureAvg: 5, TemperatureMax: 10, Precipitation: 2},
	}
	history := []types.DailyAggregate{
		flatDay(day(2026, time.March, 18), 2, 8, 14, 4),
	}

	fc := f.Daily(history, normals, target, now)
	require.NotNil(t, fc)

	// Two days ahead the persistence weight falls to 0.2.
	assert.InDelta(t, 2.1*0.8+2*0.2, fc.TemperatureMin, 1e-9)
	assert.InDelta(t, 7.1*0.8+8*0.2, fc.TemperatureAvg, 1e-9)
	assert.InDelta(t, 12.1*0.8+14*0.2, fc.TemperatureMax, 1e-9)
	assert.InDelta(t, 3.4*0.8+4*0.2, fc.Precipitation, 1e-9)
}

func TestBlendTowardSkipsMissingObservation(t *testing.T) {
	assert.InDelta(t, 7.5, blendToward(7.5, math.NaN(), 0.6), 1e-9)
	assert.InDelta(t, 0.4*10+0.6*20, blendToward(10, 20, 0.6), 1e-9)
}

func TestNanMeanAllMissing(t *testing.T) {
	days := []types.DailyAggregate{
		{Date: day(2026, time.March, 1), TemperatureAvg: math.NaN()},
		{Date: day(2026, time.March, 2), TemperatureAvg: math.NaN()},
	}
	got := nanMean(days, func(d types.DailyAggregate) float64 { return d.TemperatureAvg })
	assert.True(t, math.IsNaN(got))
}
