package handlers

import (
	"net/http"
	"testing"
	"time"

	"slopecast/internal/types"
)

func testRegions() *fakeRegionStore {
	return &fakeRegionStore{regions: map[string]*types.Region{
		"alpine-north": {
			ID:        "reg_1",
			Code:      "alpine-north",
			Name:      "Alpine North",
			Latitude:  47.2,
			Longitude: 11.4,
			Country:   "AT",
			CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
}

func testZones() *fakeZoneStore {
	return &fakeZoneStore{zones: map[string]*types.Zone{
		"at-east": {
			ID:     "zone_1",
			Code:   "at-east",
			Name:   "Austria East",
			ISORTO: "APG",
		},
	}}
}

func TestHandleListRegions(t *testing.T) {
	h := NewCatalogHandler(testRegions(), testZones(), nil)

	rec := serve(t, h, http.MethodGet, "/v1/regions")
	expectStatus(t, rec, http.StatusOK)

	var regions []types.Region
	decodeData(t, rec, &regions)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Code != "alpine-north" {
		t.Errorf("unexpected region code %q", regions[0].Code)
	}
}

func TestHandleGetRegion(t *testing.T) {
	h := NewCatalogHandler(testRegions(), testZones(), nil)

	rec := serve(t, h, http.MethodGet, "/v1/regions/alpine-north")
	expectStatus(t, rec, http.StatusOK)

	var region types.Region
	decodeData(t, rec, &region)
	if region.ID != "reg_1" {
		t.Errorf("unexpected region ID %q", region.ID)
	}
}

func TestHandleGetRegion_NotFound(t *testing.T) {
	h := NewCatalogHandler(testRegions(), testZones(), nil)

	rec := serve(t, h, http.MethodGet, "/v1/regions/nowhere")
	expectStatus(t, rec, http.StatusNotFound)

	if code := decodeErrorCode(t, rec); code != string(types.ErrCodeNotFoundRegion) {
		t.Errorf("unexpected error code %q", code)
	}
}

func TestHandleGetZone(t *testing.T) {
	h := NewCatalogHandler(testRegions(), testZones(), nil)

	rec := serve(t, h, http.MethodGet, "/v1/zones/at-east")
	expectStatus(t, rec, http.StatusOK)

	var zone types.Zone
	decodeData(t, rec, &zone)
	if zone.ISORTO != "APG" {
		t.Errorf("unexpected ISO/RTO %q", zone.ISORTO)
	}
}

func TestHandleListZones(t *testing.T) {
	h := NewCatalogHandler(testRegions(), testZones(), nil)

	rec := serve(t, h, http.MethodGet, "/v1/zones")
	expectStatus(t, rec, http.StatusOK)

	var zones []types.Zone
	decodeData(t, rec, &zones)
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
}
