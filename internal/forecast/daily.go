package forecast

import (
	"log/slog"
	"math"
	"time"

	"slopecast/internal/types"
)

// Trend blending parameters. The recent anomaly is dampened rather than
// applied in full, and the precipitation ratio is clamped so one unusually
// wet or dry fortnight cannot swing the forecast by more than 3x / 0.3x.
const (
	anomalyDamping  = 0.7
	precipRatioMin  = 0.3
	precipRatioMax  = 3.0
	minNormalPrecip = 0.1
)

// Persistence parameters: forecasts up to this many days ahead are blended
// toward the most recent observed day, with weight falling off per day.
const (
	persistenceHorizonDays = 2
	persistenceDecay       = 0.4
)

// Forecaster generates daily and weekly forecasts.
type Forecaster struct {
	logger *slog.Logger
}

// New creates a Forecaster. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Forecaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forecaster{logger: logger}
}

// Daily produces one day's forecast for target, computed at now. history is
// the region's daily aggregates in chronological order. Returns nil when no
// estimator can produce a base estimate; absence is the caller's signal, not
// an error.
func (f *Forecaster) Daily(history []types.DailyAggregate, normals []types.ClimateNormal, target, now time.Time) *types.Forecast {
	target = types.Midnight(target)
	now = types.Midnight(now)

	normalEst := newNormalEstimator(normals)
	chain := []estimator{
		normalEst,
		&seasonalEstimator{history: history},
		&recentEstimator{history: history},
	}

	var base baseEstimate
	found := false
	for _, e := range chain {
		if est, ok := e.estimate(target); ok {
			base = est
			found = true
			f.logger.Debug("base estimate selected",
				slog.String("estimator", e.name()),
				slog.Time("target", target),
			)
			break
		}
	}
	if !found {
		f.logger.Debug("no data available for forecast", slog.Time("target", target))
		return nil
	}

	fc := &types.Forecast{
		ForecastDate:   now,
		TargetDate:     target,
		TemperatureMin: base.TemperatureMin,
		TemperatureAvg: base.TemperatureAvg,
		TemperatureMax: base.TemperatureMax,
		Precipitation:  base.Precipitation,
	}
	fc.Condition = EstimateCondition(fc.TemperatureAvg, fc.Precipitation)

	recent := recentWindow(history, target)
	if len(recent) > 0 {
		f.applyTrend(fc, recent, normalEst, target)

		daysAhead := int(target.Sub(now).Hours() / 24)
		if daysAhead <= persistenceHorizonDays {
			applyPersistence(fc, recent[len(recent)-1], daysAhead)
		}
	}

	return fc
}

// applyTrend shifts the base estimate by the recent temperature anomaly and
// scales precipitation by the recent-to-normal ratio, both dampened.
func (f *Forecaster) applyTrend(fc *types.Forecast, recent []types.DailyAggregate, normalEst *normalEstimator, target time.Time) {
	anomaly := 0.0
	precipRatio := 1.0

	if normal, ok := normalEst.estimate(target); ok {
		recentAvg := nanMean(recent, func(d types.DailyAggregate) float64 { return d.TemperatureAvg })
		if !math.IsNaN(recentAvg) && !math.IsNaN(normal.TemperatureAvg) {
			anomaly = recentAvg - normal.TemperatureAvg
		}
		recentPrecip := nanMean(recent, func(d types.DailyAggregate) float64 { return d.Precipitation })
		if !math.IsNaN(recentPrecip) {
			normalPrecip := normal.Precipitation
			if math.IsNaN(normalPrecip) {
				normalPrecip = 0
			}
			precipRatio = math.Max(0, recentPrecip/math.Max(minNormalPrecip, normalPrecip))
		}
	}

	fc.TemperatureMin += anomaly * anomalyDamping
	fc.TemperatureAvg += anomaly * anomalyDamping
	fc.TemperatureMax += anomaly * anomalyDamping

	scale := clampFloat(precipRatio*anomalyDamping+(1-anomalyDamping), precipRatioMin, precipRatioMax)
	fc.Precipitation *= scale

	fc.Condition = EstimateCondition(fc.TemperatureAvg, fc.Precipitation)
}

// applyPersistence blends the forecast toward the most recent observed day.
// The persistence weight is 0.6 one day out, 0.2 two days out.
func applyPersistence(fc *types.Forecast, mostRecent types.DailyAggregate, daysAhead int) {
	w := math.Max(0, 1-float64(daysAhead)*persistenceDecay)
	if w == 0 {
		return
	}

	fc.TemperatureMin = blendToward(fc.TemperatureMin, mostRecent.TemperatureMin, w)
	fc.TemperatureAvg = blendToward(fc.TemperatureAvg, mostRecent.TemperatureAvg, w)
	fc.TemperatureMax = blendToward(fc.TemperatureMax, mostRecent.TemperatureMax, w)
	fc.Precipitation = blendToward(fc.Precipitation, mostRecent.Precipitation, w)

	fc.Condition = EstimateCondition(fc.TemperatureAvg, fc.Precipitation)
}

// blendToward mixes the forecast value toward an observed value. An unknown
// observation leaves the forecast untouched.
func blendToward(forecast, observed, weight float64) float64 {
	if math.IsNaN(observed) {
		return forecast
	}
	return forecast*(1-weight) + observed*weight
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
