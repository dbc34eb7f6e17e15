package db

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"slopecast/internal/types"
)

// WeatherRepository provides data access for the weather_points table, which
// stores both observed and projected series at every cadence. Rows are keyed
// by (region_id, ts, cadence, is_forecast) so projections never overwrite
// observations for the same timestamp.
type WeatherRepository struct {
	db DBTX
}

// NewWeatherRepository creates a WeatherRepository backed by the given
// database connection (pool or transaction).
func NewWeatherRepository(db DBTX) *WeatherRepository {
	return &WeatherRepository{db: db}
}

// weatherValueColumns fixes the column order shared by reads and writes.
// The order must match weatherValueFields.
const weatherValueColumns = `temperature, feels_like, humidity, precipitation, snow,
	wind_speed, wind_direction, pressure, condition, cloud_cover`

var weatherValueFields = []types.Field{
	types.FieldTemperature,
	types.FieldFeelsLike,
	types.FieldHumidity,
	types.FieldPrecipitation,
	types.FieldSnow,
	types.FieldWindSpeed,
	types.FieldWindDirection,
	types.FieldPressure,
	types.FieldCondition,
	types.FieldCloudCover,
}

// UpsertPoints writes a series for one region, replacing any previous values
// at the same (timestamp, cadence, is_forecast) key. Replay-safe: re-running
// an ingestion or projection converges on the latest values.
func (r *WeatherRepository) UpsertPoints(ctx context.Context, regionID string, s types.Series, isForecast bool) error {
	for _, p := range s.Points {
		args := make([]any, 0, 4+len(weatherValueFields))
		args = append(args, regionID, p.Timestamp.UTC(), string(s.Cadence), isForecast)
		for _, f := range weatherValueFields {
			v, ok := p.Get(f)
			if !ok {
				args = append(args, nil)
				continue
			}
			args = append(args, v)
		}

		_, err := r.db.Exec(ctx,
			`INSERT INTO weather_points (region_id, ts, cadence, is_forecast, `+weatherValueColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (region_id, ts, cadence, is_forecast) DO UPDATE SET
			     temperature = EXCLUDED.temperature,
			     feels_like = EXCLUDED.feels_like,
			     humidity = EXCLUDED.humidity,
			     precipitation = EXCLUDED.precipitation,
			     snow = EXCLUDED.snow,
			     wind_speed = EXCLUDED.wind_speed,
			     wind_direction = EXCLUDED.wind_direction,
			     pressure = EXCLUDED.pressure,
			     condition = EXCLUDED.condition,
			     cloud_cover = EXCLUDED.cloud_cover`,
			args...,
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert weather point", err)
		}
	}
	return nil
}

// GetSeries reads the stored series for one region, cadence, and half-open
// time range [from, to). NULL columns come back as absent fields.
func (r *WeatherRepository) GetSeries(ctx context.Context, regionID string, cadence types.Cadence, from, to time.Time, isForecast bool) (types.Series, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ts, `+weatherValueColumns+`
		 FROM weather_points
		 WHERE region_id = $1 AND cadence = $2 AND is_forecast = $3
		   AND ts >= $4 AND ts < $5
		 ORDER BY ts`,
		regionID, string(cadence), isForecast, from.UTC(), to.UTC(),
	)
	if err != nil {
		return types.Series{}, types.NewAppError(types.ErrCodeInternalDB, "failed to query weather series", err)
	}
	defer rows.Close()

	out := types.NewSeries(cadence)
	for rows.Next() {
		var ts time.Time
		vals := make([]*float64, len(weatherValueFields))
		dest := make([]any, 0, 1+len(vals))
		dest = append(dest, &ts)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return types.Series{}, types.NewAppError(types.ErrCodeInternalDB, "failed to scan weather point row", err)
		}

		values := make(map[types.Field]float64, len(vals))
		for i, f := range weatherValueFields {
			if v := floatOrNaN(vals[i]); !math.IsNaN(v) {
				values[f] = v
			}
		}
		out.Append(types.TimePoint{Timestamp: ts.UTC(), Values: values})
	}
	if err := rows.Err(); err != nil {
		return types.Series{}, types.NewAppError(types.ErrCodeInternalDB, "error iterating weather point rows", err)
	}
	return out, nil
}

// LatestActual returns the timestamp of the most recent observed (non
// forecast) point for a region at any cadence. The boolean is false when the
// region has no observations yet.
func (r *WeatherRepository) LatestActual(ctx context.Context, regionID string) (time.Time, bool, error) {
	var ts time.Time
	err := r.db.QueryRow(ctx,
		`SELECT ts FROM weather_points
		 WHERE region_id = $1 AND is_forecast = FALSE
		 ORDER BY ts DESC LIMIT 1`,
		regionID,
	).Scan(&ts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, types.NewAppError(types.ErrCodeInternalDB, "failed to read latest observation", err)
	}
	return ts.UTC(), true, nil
}
