package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Handlers and repositories use these constants instead
// of hardcoded strings so the API layer can map them to HTTP statuses.
//
// Missing upstream data is deliberately NOT an error code: the engine
// represents it structurally (empty series, nil forecast) and the served
// output simply has gaps.
const (
	// Validation (400)
	ErrCodeValidationInvalidRegion ErrorCode = "validation_invalid_region"
	ErrCodeValidationInvalidZone   ErrorCode = "validation_invalid_zone"
	ErrCodeValidationTimeRange     ErrorCode = "validation_time_range_invalid"
	ErrCodeValidationHorizon       ErrorCode = "validation_horizon_out_of_range"
	ErrCodeValidationLimit         ErrorCode = "validation_limit_invalid"

	// Not Found (404)
	ErrCodeNotFoundRegion ErrorCode = "not_found_region"
	ErrCodeNotFoundZone   ErrorCode = "not_found_zone"

	// Internal/Upstream (500/502)
	ErrCodeInternalDB          ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected  ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamWeather     ErrorCode = "upstream_weather_unavailable"
	ErrCodeUpstreamEnergy      ErrorCode = "upstream_energy_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case c == ErrCodeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error carrying a machine-readable code,
// a human-readable message, and an optional wrapped cause.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
