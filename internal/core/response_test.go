package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"slopecast/internal/types"
)

func TestJSON_WritesEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusCreated, APIResponse{Data: map[string]string{"id": "reg_1"}})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var resp struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data["id"] != "reg_1" {
		t.Errorf("unexpected data: %v", resp.Data)
	}
}

func TestJSON_MarshalFailureFallsBackTo500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	// Channels cannot be marshalled to JSON.
	JSON(rec, req, http.StatusOK, make(chan int))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal fallback response: %v", err)
	}
	if resp.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("expected error code %q, got %q", types.ErrCodeInternalUnexpected, resp.Error.Code)
	}
}

func TestError_AppErrorMapsToHTTPStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req_xyz"))
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeNotFoundRegion, "region not found", nil)
	Error(rec, req, appErr)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Code != string(types.ErrCodeNotFoundRegion) {
		t.Errorf("expected code %q, got %q", types.ErrCodeNotFoundRegion, resp.Error.Code)
	}
	if resp.Error.Message != "region not found" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
	if resp.Error.RequestID != "req_xyz" {
		t.Errorf("expected request_id req_xyz, got %q", resp.Error.RequestID)
	}
}

func TestError_WrappedAppErrorIsUnwrapped(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeValidationTimeRange, "from must precede to", nil)
	Error(rec, req, errors.Join(errors.New("outer context"), appErr))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestError_UnknownErrorHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("pgx: connection to 10.0.0.5 refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Message != "an unexpected error occurred" {
		t.Errorf("internal error detail leaked to client: %q", resp.Error.Message)
	}
}
