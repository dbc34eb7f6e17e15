package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"slopecast/internal/core"
	"slopecast/internal/types"
)

// RunStore is the subset of the run repository the handler needs.
type RunStore interface {
	ListRecent(ctx context.Context, pipeline string, limit int) ([]types.ETLRun, error)
}

// RunsHandler exposes ETL run history for operational inspection.
type RunsHandler struct {
	runs   RunStore
	logger *slog.Logger
}

// NewRunsHandler creates a RunsHandler.
func NewRunsHandler(runs RunStore, logger *slog.Logger) *RunsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunsHandler{runs: runs, logger: logger}
}

// RegisterRoutes mounts the run-history endpoint onto the mux.
func (h *RunsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/etl/runs", h.HandleListRuns)
}

// HandleListRuns handles GET /v1/etl/runs?pipeline=&limit=. Pipeline
// defaults to weather; limit defaults to 20 and is capped at 100.
func (h *RunsHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	pipeline := r.URL.Query().Get("pipeline")
	if pipeline == "" {
		pipeline = "weather"
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationLimit,
				"limit must be a positive integer", err))
			return
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	runs, err := h.runs.ListRecent(r.Context(), pipeline, limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: runs})
}
