package types

import (
	"math"
	"sort"
	"time"
)

// Field names a numeric series variable. Categorical variables (wind
// direction, condition code) are carried as numeric values under their own
// field names so the resampling layer can stay generic across domains.
type Field string

// Weather fields.
const (
	FieldTemperature   Field = "temperature"
	FieldFeelsLike     Field = "feels_like"
	FieldHumidity      Field = "humidity"
	FieldPrecipitation Field = "precipitation"
	FieldSnow          Field = "snow"
	FieldWindSpeed     Field = "wind_speed"
	FieldWindDirection Field = "wind_direction"
	FieldPressure      Field = "pressure"
	FieldCondition     Field = "condition"
	FieldCloudCover    Field = "cloud_cover"
)

// Energy-market fields.
const (
	FieldLoad          Field = "load_mw"
	FieldPrice         Field = "price"
	FieldNetGeneration Field = "net_generation"
)

// TimePoint is a single observation: a timestamp plus the named values known
// at that moment. A field absent from the map is absent from the observation,
// never zero. Points are owned by the Series that contains them and are not
// mutated once produced.
type TimePoint struct {
	Timestamp time.Time
	Values    map[Field]float64
}

// Get returns the value for a field and whether it is present. NaN values are
// treated as absent.
func (p TimePoint) Get(f Field) (float64, bool) {
	v, ok := p.Values[f]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Series is an ordered sequence of TimePoints with strictly increasing
// timestamps and a nominal cadence.
type Series struct {
	Cadence Cadence
	Points  []TimePoint
}

// NewSeries returns an empty series with the given nominal cadence.
func NewSeries(c Cadence) Series {
	return Series{Cadence: c}
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Points) }

// Empty reports whether the series has no points.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// Append adds a point, keeping timestamps strictly increasing. A point at or
// before the current tail is dropped; a point at an existing timestamp would
// violate the no-duplicates invariant.
func (s *Series) Append(p TimePoint) {
	if n := len(s.Points); n > 0 && !p.Timestamp.After(s.Points[n-1].Timestamp) {
		return
	}
	s.Points = append(s.Points, p)
}

// Span returns the first and last timestamps. ok is false for an empty series.
func (s Series) Span() (start, end time.Time, ok bool) {
	if len(s.Points) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Points[0].Timestamp, s.Points[len(s.Points)-1].Timestamp, true
}

// Fields returns the union of field names present anywhere in the series,
// sorted for deterministic iteration.
func (s Series) Fields() []Field {
	seen := make(map[Field]struct{})
	for _, p := range s.Points {
		for f := range p.Values {
			seen[f] = struct{}{}
		}
	}
	out := make([]Field, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
