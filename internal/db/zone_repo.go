package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"slopecast/internal/types"
)

// ZoneRepository provides data access for the energy load zones table.
type ZoneRepository struct {
	db DBTX
}

// NewZoneRepository creates a ZoneRepository backed by the given database
// connection (pool or transaction).
func NewZoneRepository(db DBTX) *ZoneRepository {
	return &ZoneRepository{db: db}
}

const zoneColumns = `z.id, z.code, z.name, z.iso_rto, z.created_at`

func scanZone(row pgx.Row) (*types.Zone, error) {
	var z types.Zone
	err := row.Scan(&z.ID, &z.Code, &z.Name, &z.ISORTO, &z.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// Upsert inserts a zone or updates its mutable fields when the code already
// exists.
func (r *ZoneRepository) Upsert(ctx context.Context, zone *types.Zone) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO zones (id, code, name, iso_rto)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (code) DO UPDATE SET
		     name = EXCLUDED.name,
		     iso_rto = EXCLUDED.iso_rto`,
		zone.ID, zone.Code, zone.Name, zone.ISORTO,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert zone", err)
	}
	return nil
}

// GetByCode retrieves one zone by its code. Returns ErrCodeNotFoundZone when
// no such zone exists.
func (r *ZoneRepository) GetByCode(ctx context.Context, code string) (*types.Zone, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+zoneColumns+` FROM zones z WHERE z.code = $1`, code)

	zone, err := scanZone(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundZone, "zone not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve zone", err)
	}
	return zone, nil
}

// List returns all zones ordered by code.
func (r *ZoneRepository) List(ctx context.Context) ([]types.Zone, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+zoneColumns+` FROM zones z ORDER BY z.code`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list zones", err)
	}
	defer rows.Close()

	var zones []types.Zone
	for rows.Next() {
		zone, scanErr := scanZone(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan zone row", scanErr)
		}
		zones = append(zones, *zone)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating zone rows", err)
	}
	return zones, nil
}
