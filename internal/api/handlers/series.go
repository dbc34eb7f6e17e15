package handlers

import (
	"math"
	"net/http"
	"time"

	"slopecast/internal/types"
)

// seriesPoint is the wire representation of one observation. Values holds
// only the fields present at that timestamp; missing readings are omitted
// rather than serialized as null.
type seriesPoint struct {
	Timestamp time.Time          `json:"ts"`
	Values    map[string]float64 `json:"values"`
}

// seriesResponse is the wire envelope for a resampled series.
type seriesResponse struct {
	Code     string        `json:"code"`
	Interval string        `json:"interval"`
	Agg      string        `json:"agg"`
	From     time.Time     `json:"from"`
	To       time.Time     `json:"to"`
	Points   []seriesPoint `json:"points"`
}

// toSeriesPoints converts an in-memory series to its wire form, dropping
// NaN sentinels so the JSON encoder never sees them.
func toSeriesPoints(s types.Series) []seriesPoint {
	points := make([]seriesPoint, 0, s.Len())
	for _, p := range s.Points {
		values := make(map[string]float64, len(p.Values))
		for field, v := range p.Values {
			if math.IsNaN(v) {
				continue
			}
			values[string(field)] = v
		}
		points = append(points, seriesPoint{Timestamp: p.Timestamp, Values: values})
	}
	return points
}

// seriesQuery holds the parsed and validated query parameters shared by the
// weather and energy series endpoints.
type seriesQuery struct {
	Interval string
	Agg      string
	From     time.Time
	To       time.Time
}

// parseSeriesQuery validates interval/agg/from/to. from and to default to
// the trailing 24 hours when absent; a reversed or empty range is rejected.
func parseSeriesQuery(r *http.Request, now time.Time) (seriesQuery, *types.AppError) {
	q := r.URL.Query()

	sq := seriesQuery{
		Interval: q.Get("interval"),
		Agg:      q.Get("agg"),
		To:       now,
	}
	if sq.Interval == "" {
		sq.Interval = string(types.CadenceHourly)
	}
	if sq.Agg == "" {
		sq.Agg = "mean"
	}

	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return sq, types.NewAppError(types.ErrCodeValidationTimeRange,
				"to must be an RFC 3339 timestamp", err)
		}
		sq.To = parsed.UTC()
	}

	sq.From = sq.To.Add(-24 * time.Hour)
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return sq, types.NewAppError(types.ErrCodeValidationTimeRange,
				"from must be an RFC 3339 timestamp", err)
		}
		sq.From = parsed.UTC()
	}

	if !sq.From.Before(sq.To) {
		return sq, types.NewAppError(types.ErrCodeValidationTimeRange,
			"from must be strictly before to", nil)
	}
	return sq, nil
}

// floatPtr returns a pointer to v, or nil when v is the NaN missing-value
// sentinel. Used to render optional numbers as JSON null.
func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
