package db

import (
	"context"
	"time"

	"slopecast/internal/types"
)

// ClimateRepository provides data access for the daily_aggregates,
// monthly_aggregates, and climate_normals tables.
//
// Daily and monthly aggregates are historical record: once written for a
// (region, period) key they are never modified, so inserts use DO NOTHING.
// Climate normals are recomputed as history accumulates and use a full
// upsert.
type ClimateRepository struct {
	db DBTX
}

// NewClimateRepository creates a ClimateRepository backed by the given
// database connection (pool or transaction).
func NewClimateRepository(db DBTX) *ClimateRepository {
	return &ClimateRepository{db: db}
}

// InsertDaily writes daily aggregates for a region, skipping dates already
// recorded.
func (r *ClimateRepository) InsertDaily(ctx context.Context, regionID string, days []types.DailyAggregate) error {
	for _, d := range days {
		_, err := r.db.Exec(ctx,
			`INSERT INTO daily_aggregates
			     (region_id, date, temperature_min, temperature_avg, temperature_max,
			      precipitation, snow, wind_speed, wind_direction, pressure)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (region_id, date) DO NOTHING`,
			regionID, types.Midnight(d.Date),
			nullFloat(d.TemperatureMin), nullFloat(d.TemperatureAvg), nullFloat(d.TemperatureMax),
			nullFloat(d.Precipitation), nullFloat(d.Snow),
			nullFloat(d.WindSpeed), nullFloat(d.WindDirection), nullFloat(d.Pressure),
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to insert daily aggregate", err)
		}
	}
	return nil
}

// ListDaily returns a region's daily aggregates for the half-open date range
// [from, to), in chronological order.
func (r *ClimateRepository) ListDaily(ctx context.Context, regionID string, from, to time.Time) ([]types.DailyAggregate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT date, temperature_min, temperature_avg, temperature_max,
		        precipitation, snow, wind_speed, wind_direction, pressure
		 FROM daily_aggregates
		 WHERE region_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date`,
		regionID, types.Midnight(from), types.Midnight(to),
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list daily aggregates", err)
	}
	defer rows.Close()

	var days []types.DailyAggregate
	for rows.Next() {
		var d types.DailyAggregate
		var tMin, tAvg, tMax, precip, snow, wind, windDir, pressure *float64
		if err := rows.Scan(&d.Date, &tMin, &tAvg, &tMax, &precip, &snow, &wind, &windDir, &pressure); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan daily aggregate row", err)
		}
		d.Date = d.Date.UTC()
		d.TemperatureMin = floatOrNaN(tMin)
		d.TemperatureAvg = floatOrNaN(tAvg)
		d.TemperatureMax = floatOrNaN(tMax)
		d.Precipitation = floatOrNaN(precip)
		d.Snow = floatOrNaN(snow)
		d.WindSpeed = floatOrNaN(wind)
		d.WindDirection = floatOrNaN(windDir)
		d.Pressure = floatOrNaN(pressure)
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating daily aggregate rows", err)
	}
	return days, nil
}

// InsertMonthly writes monthly aggregates for a region, skipping months
// already recorded.
func (r *ClimateRepository) InsertMonthly(ctx context.Context, regionID string, months []types.MonthlyAggregate) error {
	for _, m := range months {
		_, err := r.db.Exec(ctx,
			`INSERT INTO monthly_aggregates
			     (region_id, year, month, temperature_min, temperature_avg, temperature_max, precipitation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (region_id, year, month) DO NOTHING`,
			regionID, m.Year, m.Month,
			nullFloat(m.TemperatureMin), nullFloat(m.TemperatureAvg), nullFloat(m.TemperatureMax),
			nullFloat(m.Precipitation),
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to insert monthly aggregate", err)
		}
	}
	return nil
}

// ListMonthly returns a region's monthly aggregates in chronological order.
func (r *ClimateRepository) ListMonthly(ctx context.Context, regionID string) ([]types.MonthlyAggregate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT year, month, temperature_min, temperature_avg, temperature_max, precipitation
		 FROM monthly_aggregates
		 WHERE region_id = $1
		 ORDER BY year, month`,
		regionID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list monthly aggregates", err)
	}
	defer rows.Close()

	var months []types.MonthlyAggregate
	for rows.Next() {
		var m types.MonthlyAggregate
		var tMin, tAvg, tMax, precip *float64
		if err := rows.Scan(&m.Year, &m.Month, &tMin, &tAvg, &tMax, &precip); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan monthly aggregate row", err)
		}
		m.TemperatureMin = floatOrNaN(tMin)
		m.TemperatureAvg = floatOrNaN(tAvg)
		m.TemperatureMax = floatOrNaN(tMax)
		m.Precipitation = floatOrNaN(precip)
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating monthly aggregate rows", err)
	}
	return months, nil
}

// UpsertNormals writes climate normals for a region, replacing the previous
// value for each (month, day) key.
func (r *ClimateRepository) UpsertNormals(ctx context.Context, regionID string, normals []types.ClimateNormal) error {
	for _, n := range normals {
		_, err := r.db.Exec(ctx,
			`INSERT INTO climate_normals
			     (region_id, month, day, temperature_min, temperature_avg, temperature_max, precipitation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (region_id, month, day) DO UPDATE SET
			     temperature_min = EXCLUDED.temperature_min,
			     temperature_avg = EXCLUDED.temperature_avg,
			     temperature_max = EXCLUDED.temperature_max,
			     precipitation = EXCLUDED.precipitation`,
			regionID, n.Month, n.Day,
			nullFloat(n.TemperatureMin), nullFloat(n.TemperatureAvg), nullFloat(n.TemperatureMax),
			nullFloat(n.Precipitation),
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert climate normal", err)
		}
	}
	return nil
}

// ListNormals returns a region's climate normals ordered by calendar day.
func (r *ClimateRepository) ListNormals(ctx context.Context, regionID string) ([]types.ClimateNormal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT month, day, temperature_min, temperature_avg, temperature_max, precipitation
		 FROM climate_normals
		 WHERE region_id = $1
		 ORDER BY month, day`,
		regionID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list climate normals", err)
	}
	defer rows.Close()

	var normals []types.ClimateNormal
	for rows.Next() {
		var n types.ClimateNormal
		var tMin, tAvg, tMax, precip *float64
		if err := rows.Scan(&n.Month, &n.Day, &tMin, &tAvg, &tMax, &precip); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan climate normal row", err)
		}
		n.TemperatureMin = floatOrNaN(tMin)
		n.TemperatureAvg = floatOrNaN(tAvg)
		n.TemperatureMax = floatOrNaN(tMax)
		n.Precipitation = floatOrNaN(precip)
		normals = append(normals, n)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating climate normal rows", err)
	}
	return normals, nil
}
