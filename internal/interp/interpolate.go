// Package interp densifies hourly weather observations into a 15-minute
// series, reconciling the result against daily aggregates (temperature
// bounds, precipitation totals) and long-run climate normals (diurnal
// temperature pattern).
package interp

import (
	"log/slog"
	"math"
	"time"

	"slopecast/internal/types"
)

const step = 15 * time.Minute

// diurnalBlendWeight is the share of the final temperature taken from the
// interpolated observations; the remainder comes from the climate-normal
// diurnal pattern.
const diurnalBlendWeight = 0.7

// splineFields are interpolated with a cubic spline: temperature curves are
// smooth, and piecewise-linear segments produce visible kinks at hour marks.
var splineFields = map[types.Field]bool{
	types.FieldTemperature: true,
	types.FieldFeelsLike:   true,
}

// stepFields hold the last known value until a new hourly value arrives.
// They are categorical or directional; averaging them is meaningless.
var stepFields = map[types.Field]bool{
	types.FieldWindDirection: true,
	types.FieldCondition:     true,
}

// nonNegativeFields are clamped to >= 0 after all adjustments.
var nonNegativeFields = []types.Field{
	types.FieldPrecipitation,
	types.FieldSnow,
	types.FieldHumidity,
	types.FieldCloudCover,
}

// percentFields are additionally capped at 100.
var percentFields = []types.Field{
	types.FieldHumidity,
	types.FieldCloudCover,
}

// Interpolator densifies hourly series to 15-minute resolution.
type Interpolator struct {
	logger *slog.Logger
}

// New creates an Interpolator. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Interpolator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpolator{logger: logger}
}

// fieldSamples holds the known (time, value) pairs for one field.
type fieldSamples struct {
	xs []float64 // unix seconds
	ys []float64
}

// To15Min produces a 15-minute series spanning the hourly input's time range.
// Temperature-like fields are spline-interpolated, other numeric fields
// linearly, and categorical fields step-held. Daily aggregates clip
// temperatures and rescale precipitation; climate normals blend in the
// diurnal temperature pattern. An empty input yields an empty output, and a
// field absent from the input is simply omitted.
func (it *Interpolator) To15Min(hourly types.Series, daily []types.DailyAggregate, normals []types.ClimateNormal) types.Series {
	out := types.NewSeries(types.Cadence15Min)
	start, end, ok := hourly.Span()
	if !ok {
		return out
	}

	var grid []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		grid = append(grid, t)
	}

	samples := collectSamples(hourly)

	points := make([]map[types.Field]float64, len(grid))
	for i := range points {
		points[i] = make(map[types.Field]float64)
	}

	for f, fs := range samples {
		switch {
		case stepFields[f]:
			stepHold(grid, fs, f, points)
		case splineFields[f] && len(fs.xs) >= 3:
			sp := newCubicSpline(fs.xs, fs.ys)
			fillRange(grid, fs, f, points, sp.at)
		default:
			fillRange(grid, fs, f, points, func(x float64) float64 { return lerp(fs.xs, fs.ys, x) })
		}
	}

	it.applyDailyConstraints(grid, points, daily, samples)
	applyDiurnalBlend(grid, points, normals)
	clampRanges(points)

	for i, t := range grid {
		if len(points[i]) == 0 {
			continue
		}
		out.Append(types.TimePoint{Timestamp: t, Values: points[i]})
	}
	return out
}

func collectSamples(hourly types.Series) map[types.Field]*fieldSamples {
	samples := make(map[types.Field]*fieldSamples)
	for _, p := range hourly.Points {
		for f := range p.Values {
			v, ok := p.Get(f)
			if !ok {
				continue
			}
			fs := samples[f]
			if fs == nil {
				fs = &fieldSamples{}
				samples[f] = fs
			}
			fs.xs = append(fs.xs, float64(p.Timestamp.Unix()))
			fs.ys = append(fs.ys, v)
		}
	}
	return samples
}

// fillRange evaluates fn at every grid point inside the field's known sample
// range. Grid points outside the range stay unset: interpolation fills
// between observations, it does not extrapolate.
func fillRange(grid []time.Time, fs *fieldSamples, f types.Field, points []map[types.Field]float64, fn func(float64) float64) {
	first, last := fs.xs[0], fs.xs[len(fs.xs)-1]
	for i, t := range grid {
		x := float64(t.Unix())
		if x < first || x > last {
			continue
		}
		points[i][f] = fn(x)
	}
}

// stepHold carries the last known value forward until a new one arrives.
// Grid points before the first known value stay unset.
func stepHold(grid []time.Time, fs *fieldSamples, f types.Field, points []map[types.Field]float64) {
	j := -1
	for i, t := range grid {
		x := float64(t.Unix())
		for j+1 < len(fs.xs) && fs.xs[j+1] <= x {
			j++
		}
		if j < 0 {
			continue
		}
		points[i][f] = fs.ys[j]
	}
}

// applyDailyConstraints reconciles each covered calendar day against its
// DailyAggregate: temperatures are clipped into [min, max], and the day's
// precipitation values are rescaled so they sum to the daily total. When the
// interpolated day has no precipitation but the aggregate reports some, the
// total is spread evenly across the day's points.
func (it *Interpolator) applyDailyConstraints(grid []time.Time, points []map[types.Field]float64, daily []types.DailyAggregate, samples map[types.Field]*fieldSamples) {
	if len(daily) == 0 {
		return
	}
	byDay := make(map[int64]types.DailyAggregate, len(daily))
	for _, d := range daily {
		byDay[types.Midnight(d.Date).Unix()] = d
	}

	_, hasPrecip := samples[types.FieldPrecipitation]
	_, hasTemp := samples[types.FieldTemperature]

	for i := 0; i < len(grid); {
		day := types.Midnight(grid[i]).Unix()
		j := i
		for j < len(grid) && types.Midnight(grid[j]).Unix() == day {
			j++
		}

		d, ok := byDay[day]
		if !ok {
			i = j
			continue
		}

		if hasTemp && d.HasTemperatureBounds() {
			for k := i; k < j; k++ {
				if v, ok := points[k][types.FieldTemperature]; ok {
					points[k][types.FieldTemperature] = clamp(v, d.TemperatureMin, d.TemperatureMax)
				}
			}
		}

		if hasPrecip && !math.IsNaN(d.Precipitation) && d.Precipitation > 0 {
			var sum float64
			for k := i; k < j; k++ {
				sum += points[k][types.FieldPrecipitation]
			}
			if sum > 0 {
				scale := d.Precipitation / sum
				for k := i; k < j; k++ {
					if v, ok := points[k][types.FieldPrecipitation]; ok {
						points[k][types.FieldPrecipitation] = v * scale
					}
				}
			} else {
				// Hourly data saw no rain but the daily aggregate did:
				// distribute the total evenly rather than dropping it.
				share := d.Precipitation / float64(j-i)
				for k := i; k < j; k++ {
					points[k][types.FieldPrecipitation] = share
				}
				it.logger.Debug("distributed daily precipitation evenly",
					slog.Time("day", time.Unix(day, 0).UTC()),
					slog.Float64("total", d.Precipitation),
				)
			}
		}

		i = j
	}
}

// applyDiurnalBlend nudges interpolated temperatures toward the long-run
// diurnal pattern for days with a matching climate normal.
func applyDiurnalBlend(grid []time.Time, points []map[types.Field]float64, normals []types.ClimateNormal) {
	if len(normals) == 0 {
		return
	}
	byKey := make(map[[2]int]types.ClimateNormal, len(normals))
	for _, n := range normals {
		byKey[[2]int{n.Month, n.Day}] = n
	}

	for i, t := range grid {
		v, ok := points[i][types.FieldTemperature]
		if !ok {
			continue
		}
		n, ok := byKey[[2]int{int(t.Month()), t.Day()}]
		if !ok || !n.HasTemperatureBounds() {
			continue
		}
		hour := float64(t.Hour()) + float64(t.Minute())/60
		pattern := DiurnalTemperature(hour, n.TemperatureMin, n.TemperatureMax)
		points[i][types.FieldTemperature] = diurnalBlendWeight*v + (1-diurnalBlendWeight)*pattern
	}
}

// clampRanges enforces physical bounds after all adjustments.
func clampRanges(points []map[types.Field]float64) {
	for i := range points {
		for _, f := range nonNegativeFields {
			if v, ok := points[i][f]; ok && v < 0 {
				points[i][f] = 0
			}
		}
		for _, f := range percentFields {
			if v, ok := points[i][f]; ok && v > 100 {
				points[i][f] = 100
			}
		}
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
