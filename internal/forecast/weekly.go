package forecast

import (
	"log/slog"
	"time"

	"slopecast/internal/types"
)

// DefaultHorizonDays is the weekly forecast horizon when the caller does not
// specify one.
const DefaultHorizonDays = 7

// Smoothing weights for the 3-point moving average applied to interior days:
// previous, current, next.
const (
	smoothNeighborWeight = 0.25
	smoothCenterWeight   = 0.5
)

// Weekly runs the daily forecaster over a horizon of days starting at start
// and smooths the resulting temperature sequence. Days for which no forecast
// can be produced are skipped, not substituted; the output holds at most
// `days` entries with strictly increasing target dates.
//
// After smoothing, every entry's average temperature is reclamped into
// [min, max]. That invariant holds on every forecast this method returns.
func (f *Forecaster) Weekly(history []types.DailyAggregate, normals []types.ClimateNormal, start time.Time, days int, now time.Time) []types.Forecast {
	if days <= 0 {
		days = DefaultHorizonDays
	}
	start = types.Midnight(start)

	forecasts := make([]types.Forecast, 0, days)
	for i := 0; i < days; i++ {
		target := start.AddDate(0, 0, i)
		fc := f.Daily(history, normals, target, now)
		if fc == nil {
			f.logger.Debug("skipping day with no forecast", slog.Time("target", target))
			continue
		}
		forecasts = append(forecasts, *fc)
	}

	smoothTemperatures(forecasts)
	repairTemperatureOrder(forecasts)
	return forecasts
}

// smoothTemperatures applies the 3-point weighted average to interior entries
// of the produced sequence. The first and last entries are left unsmoothed.
// Weights are applied against the pre-smoothing neighbor values, matching a
// single smoothing pass over the original sequence.
func smoothTemperatures(forecasts []types.Forecast) {
	if len(forecasts) < 3 {
		return
	}
	prev := make([]types.Forecast, len(forecasts))
	copy(prev, forecasts)

	for i := 1; i < len(forecasts)-1; i++ {
		forecasts[i].TemperatureMin = smooth3(prev[i-1].TemperatureMin, prev[i].TemperatureMin, prev[i+1].TemperatureMin)
		forecasts[i].TemperatureAvg = smooth3(prev[i-1].TemperatureAvg, prev[i].TemperatureAvg, prev[i+1].TemperatureAvg)
		forecasts[i].TemperatureMax = smooth3(prev[i-1].TemperatureMax, prev[i].TemperatureMax, prev[i+1].TemperatureMax)
	}
}

func smooth3(prev, cur, next float64) float64 {
	return prev*smoothNeighborWeight + cur*smoothCenterWeight + next*smoothNeighborWeight
}

// repairTemperatureOrder reclamps the average into [min, max] for every
// entry. Smoothing min/avg/max independently can break the ordering; output
// must never violate min <= avg <= max.
func repairTemperatureOrder(forecasts []types.Forecast) {
	for i := range forecasts {
		fc := &forecasts[i]
		if fc.TemperatureAvg < fc.TemperatureMin {
			fc.TemperatureAvg = fc.TemperatureMin
		}
		if fc.TemperatureAvg > fc.TemperatureMax {
			fc.TemperatureAvg = fc.TemperatureMax
		}
	}
}
