package db

import (
	"context"
	"math"
	"time"

	"slopecast/internal/types"
)

// EnergyRepository provides data access for the energy_points table, which
// stores market load, price, and net generation series per zone.
type EnergyRepository struct {
	db DBTX
}

// NewEnergyRepository creates an EnergyRepository backed by the given
// database connection (pool or transaction).
func NewEnergyRepository(db DBTX) *EnergyRepository {
	return &EnergyRepository{db: db}
}

var energyValueFields = []types.Field{
	types.FieldLoad,
	types.FieldPrice,
	types.FieldNetGeneration,
}

// UpsertPoints writes a series for one zone, replacing any previous values
// at the same (timestamp, cadence) key.
func (r *EnergyRepository) UpsertPoints(ctx context.Context, zoneID string, s types.Series) error {
	for _, p := range s.Points {
		args := make([]any, 0, 3+len(energyValueFields))
		args = append(args, zoneID, p.Timestamp.UTC(), string(s.Cadence))
		for _, f := range energyValueFields {
			v, ok := p.Get(f)
			if !ok {
				args = append(args, nil)
				continue
			}
			args = append(args, v)
		}

		_, err := r.db.Exec(ctx,
			`INSERT INTO energy_points (zone_id, ts, cadence, load_mw, price, net_generation)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (zone_id, ts, cadence) DO UPDATE SET
			     load_mw = EXCLUDED.load_mw,
			     price = EXCLUDED.price,
			     net_generation = EXCLUDED.net_generation`,
			args...,
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert energy point", err)
		}
	}
	return nil
}

// GetSeries reads the stored series for one zone, cadence, and half-open
// time range [from, to).
func (r *EnergyRepository) GetSeries(ctx context.Context, zoneID string, cadence types.Cadence, from, to time.Time) (types.Series, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ts, load_mw, price, net_generation
		 FROM energy_points
		 WHERE zone_id = $1 AND cadence = $2 AND ts >= $3 AND ts < $4
		 ORDER BY ts`,
		zoneID, string(cadence), from.UTC(), to.UTC(),
	)
	if err != nil {
		return types.Series{}, types.NewAppError(types.ErrCodeInternalDB, "failed to query energy series", err)
	}
	defer rows.Close()

	out := types.NewSeries(cadence)
	for rows.Next() {
		var ts time.Time
		vals := make([]*float64, len(energyValueFields))
		dest := make([]any, 0, 1+len(vals))
		dest = append(dest, &ts)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return types.Series{}, types.NewAppError(types.ErrCodeInternalDB, "failed to scan energy point row", err)
		}

		values := make(map[types.Field]float64, len(vals))
		for i, f := range energyValueFields {
			if v := floatOrNaN(vals[i]); !math.IsNaN(v) {
				values[f] = v
			}
		}
		out.Append(types.TimePoint{Timestamp: ts.UTC(), Values: values})
	}
	if err := rows.Err(); err != nil {
		return types.Series{}, types.NewAppError(types.ErrCodeInternalDB, "error iterating energy point rows", err)
	}
	return out, nil
}
