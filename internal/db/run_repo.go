package db

import (
	"context"

	"slopecast/internal/types"
)

// RunRepository persists ETL run history.
type RunRepository struct {
	db DBTX
}

// NewRunRepository creates a RunRepository.
func NewRunRepository(db DBTX) *RunRepository {
	return &RunRepository{db: db}
}

// Insert records one finished pipeline run.
func (r *RunRepository) Insert(ctx context.Context, run types.ETLRun) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO etl_runs (id, pipeline, started_at, finished_at, status, units, unit_errors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Pipeline, run.StartedAt, run.FinishedAt, run.Status, run.Units, run.UnitErrors,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert run record", err)
	}
	return nil
}

// ListRecent returns the most recent runs for a pipeline, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, pipeline string, limit int) ([]types.ETLRun, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, pipeline, started_at, finished_at, status, units, unit_errors
		 FROM etl_runs
		 WHERE pipeline = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		pipeline, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list run records", err)
	}
	defer rows.Close()

	var runs []types.ETLRun
	for rows.Next() {
		var run types.ETLRun
		if err := rows.Scan(&run.ID, &run.Pipeline, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.Units, &run.UnitErrors); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan run record row", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating run record rows", err)
	}
	return runs, nil
}
