// Package timeseries provides generic bucketing and aggregation over named
// time series. It is cadence- and domain-agnostic: the same resampler serves
// weather points and energy-market series, and any field set the input
// carries.
package timeseries

import (
	"math"
	"sort"
	"time"

	"slopecast/internal/types"
)

// AggFunc names an aggregation applied to the values falling in one bucket.
type AggFunc string

const (
	AggMean   AggFunc = "mean"
	AggSum    AggFunc = "sum"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
	AggMedian AggFunc = "median"
	AggFirst  AggFunc = "first"
	AggLast   AggFunc = "last"
	AggCount  AggFunc = "count"
)

// ParseAggFunc maps an aggregation-function string to an AggFunc. Unknown
// strings resolve to AggMean rather than failing.
func ParseAggFunc(s string) AggFunc {
	switch AggFunc(s) {
	case AggMean, AggSum, AggMin, AggMax, AggMedian, AggFirst, AggLast, AggCount:
		return AggFunc(s)
	default:
		return AggMean
	}
}

// apply reduces the values of one bucket in input order. values is never
// empty: buckets with no input produce no output point.
func (f AggFunc) apply(values []float64) float64 {
	switch f {
	case AggSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	case AggMin:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case AggMax:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case AggMedian:
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2
		}
		return sorted[mid]
	case AggFirst:
		return values[0]
	case AggLast:
		return values[len(values)-1]
	case AggCount:
		return float64(len(values))
	default: // AggMean
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}

// Resample buckets a series at the target cadence and reduces each bucket's
// values per field with the aggregation function. Bucket boundaries align to
// the cadence (hourly buckets start on the hour, daily at midnight UTC).
// Buckets with no input produce no output point: gaps are preserved, never
// zero-filled. An empty input yields an empty output for any parameters.
func Resample(s types.Series, cadence types.Cadence, fn AggFunc) types.Series {
	out := types.NewSeries(cadence)
	if s.Empty() {
		return out
	}

	type bucket struct {
		start  time.Time
		values map[types.Field][]float64
	}

	buckets := make(map[int64]*bucket)
	for _, p := range s.Points {
		start := cadence.BucketStart(p.Timestamp)
		key := start.Unix()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{start: start, values: make(map[types.Field][]float64)}
			buckets[key] = b
		}
		for f, v := range p.Values {
			if math.IsNaN(v) {
				continue
			}
			b.values[f] = append(b.values[f], v)
		}
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		b := buckets[k]
		values := make(map[types.Field]float64, len(b.values))
		for f, vs := range b.values {
			if len(vs) == 0 {
				continue
			}
			values[f] = fn.apply(vs)
		}
		out.Append(types.TimePoint{Timestamp: b.start, Values: values})
	}
	return out
}

// ResampleStrings is the string-parameter variant used by the API layer.
// Unknown interval or aggregation strings resolve to their documented
// defaults (finest cadence, mean).
func ResampleStrings(s types.Series, interval, agg string) types.Series {
	return Resample(s, types.ParseCadence(interval), ParseAggFunc(agg))
}
