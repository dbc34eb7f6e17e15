package db

import (
	"context"
	"time"

	"slopecast/internal/types"
)

// ForecastRepository provides data access for the forecasts table. Rows are
// keyed by (region_id, forecast_date, target_date): regenerating a forecast
// for the same key overwrites the previous prediction, while forecasts
// computed on different days for the same target accumulate, preserving the
// history of how the prediction evolved.
type ForecastRepository struct {
	db DBTX
}

// NewForecastRepository creates a ForecastRepository backed by the given
// database connection (pool or transaction).
func NewForecastRepository(db DBTX) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// Upsert writes a batch of forecasts.
func (r *ForecastRepository) Upsert(ctx context.Context, forecasts []types.Forecast) error {
	for _, f := range forecasts {
		_, err := r.db.Exec(ctx,
			`INSERT INTO forecasts
			     (region_id, forecast_date, target_date,
			      temperature_min, temperature_avg, temperature_max, precipitation, condition)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (region_id, forecast_date, target_date) DO UPDATE SET
			     temperature_min = EXCLUDED.temperature_min,
			     temperature_avg = EXCLUDED.temperature_avg,
			     temperature_max = EXCLUDED.temperature_max,
			     precipitation = EXCLUDED.precipitation,
			     condition = EXCLUDED.condition`,
			f.RegionID, types.Midnight(f.ForecastDate), types.Midnight(f.TargetDate),
			nullFloat(f.TemperatureMin), nullFloat(f.TemperatureAvg), nullFloat(f.TemperatureMax),
			nullFloat(f.Precipitation), int(f.Condition),
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert forecast", err)
		}
	}
	return nil
}

const latestForecastQuery = `
	SELECT DISTINCT ON (target_date)
	       region_id, forecast_date, target_date,
	       temperature_min, temperature_avg, temperature_max, precipitation, condition
	FROM forecasts
	WHERE region_id = $1 AND target_date >= $2 AND target_date < $3
	ORDER BY target_date, forecast_date DESC`

// ListLatest returns, for each target date in [from, to), the most recently
// computed forecast for a region, ordered by target date.
func (r *ForecastRepository) ListLatest(ctx context.Context, regionID string, from, to time.Time) ([]types.Forecast, error) {
	rows, err := r.db.Query(ctx, latestForecastQuery,
		regionID, types.Midnight(from), types.Midnight(to))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list forecasts", err)
	}
	defer rows.Close()

	var forecasts []types.Forecast
	for rows.Next() {
		var f types.Forecast
		var tMin, tAvg, tMax, precip *float64
		var condition int
		if err := rows.Scan(&f.RegionID, &f.ForecastDate, &f.TargetDate,
			&tMin, &tAvg, &tMax, &precip, &condition); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan forecast row", err)
		}
		f.ForecastDate = f.ForecastDate.UTC()
		f.TargetDate = f.TargetDate.UTC()
		f.TemperatureMin = floatOrNaN(tMin)
		f.TemperatureAvg = floatOrNaN(tAvg)
		f.TemperatureMax = floatOrNaN(tMax)
		f.Precipitation = floatOrNaN(precip)
		f.Condition = types.ConditionCode(condition)
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating forecast rows", err)
	}
	return forecasts, nil
}
