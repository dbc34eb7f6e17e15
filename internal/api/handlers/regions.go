// Package handlers contains the HTTP handler implementations for the
// slopecast read API. Handlers depend on narrow, locally defined store
// interfaces rather than concrete repositories so tests can inject fakes.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slopecast/internal/core"
	"slopecast/internal/types"
)

// RegionStore is the subset of the region repository the handler needs.
type RegionStore interface {
	GetByCode(ctx context.Context, code string) (*types.Region, error)
	List(ctx context.Context) ([]types.Region, error)
}

// ZoneStore is the subset of the zone repository the handler needs.
type ZoneStore interface {
	GetByCode(ctx context.Context, code string) (*types.Zone, error)
	List(ctx context.Context) ([]types.Zone, error)
}

// CatalogHandler serves the region and zone catalogs.
type CatalogHandler struct {
	regions RegionStore
	zones   ZoneStore
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(regions RegionStore, zones ZoneStore, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{regions: regions, zones: zones, logger: logger}
}

// RegisterRoutes mounts the catalog endpoints onto the mux.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/regions", h.HandleListRegions)
	r.Get("/regions/{code}", h.HandleGetRegion)
	r.Get("/zones", h.HandleListZones)
	r.Get("/zones/{code}", h.HandleGetZone)
}

// HandleListRegions handles GET /v1/regions.
func (h *CatalogHandler) HandleListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.regions.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: regions})
}

// HandleGetRegion handles GET /v1/regions/{code}.
func (h *CatalogHandler) HandleGetRegion(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	region, err := h.regions.GetByCode(r.Context(), code)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: region})
}

// HandleListZones handles GET /v1/zones.
func (h *CatalogHandler) HandleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zones.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: zones})
}

// HandleGetZone handles GET /v1/zones/{code}.
func (h *CatalogHandler) HandleGetZone(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	zone, err := h.zones.GetByCode(r.Context(), code)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: zone})
}
