package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"slopecast/internal/types"
)

// RegionRepository provides data access for the regions table.
type RegionRepository struct {
	db DBTX
}

// NewRegionRepository creates a RegionRepository backed by the given database
// connection (pool or transaction).
func NewRegionRepository(db DBTX) *RegionRepository {
	return &RegionRepository{db: db}
}

const regionColumns = `r.id, r.code, r.name, r.latitude, r.longitude, r.country, r.created_at`

func scanRegion(row pgx.Row) (*types.Region, error) {
	var r types.Region
	err := row.Scan(&r.ID, &r.Code, &r.Name, &r.Latitude, &r.Longitude, &r.Country, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Upsert inserts a region or updates its mutable fields when the code already
// exists. The ID is caller-generated so the registry can be seeded
// idempotently from static configuration.
func (r *RegionRepository) Upsert(ctx context.Context, region *types.Region) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO regions (id, code, name, latitude, longitude, country)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (code) DO UPDATE SET
		     name = EXCLUDED.name,
		     latitude = EXCLUDED.latitude,
		     longitude = EXCLUDED.longitude,
		     country = EXCLUDED.country`,
		region.ID, region.Code, region.Name, region.Latitude, region.Longitude, region.Country,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert region", err)
	}
	return nil
}

// GetByCode retrieves one region by its stable code. Returns
// ErrCodeNotFoundRegion when no such region exists.
func (r *RegionRepository) GetByCode(ctx context.Context, code string) (*types.Region, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+regionColumns+` FROM regions r WHERE r.code = $1`, code)

	region, err := scanRegion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundRegion, "region not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve region", err)
	}
	return region, nil
}

// List returns all regions ordered by code.
func (r *RegionRepository) List(ctx context.Context) ([]types.Region, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+regionColumns+` FROM regions r ORDER BY r.code`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list regions", err)
	}
	defer rows.Close()

	var regions []types.Region
	for rows.Next() {
		region, scanErr := scanRegion(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan region row", scanErr)
		}
		regions = append(regions, *region)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating region rows", err)
	}
	return regions, nil
}
