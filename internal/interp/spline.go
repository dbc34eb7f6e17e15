package interp

// cubicSpline is a natural cubic spline through strictly increasing sample
// points. Natural boundary conditions (zero second derivative at both ends)
// keep the curve from overshooting wildly at the edges of the observation
// window.
type cubicSpline struct {
	xs []float64
	ys []float64
	m  []float64 // second derivatives at the knots
}

// newCubicSpline fits a natural cubic spline. xs must be strictly increasing
// and len(xs) == len(ys) >= 3; callers with fewer points use linear
// interpolation instead.
func newCubicSpline(xs, ys []float64) *cubicSpline {
	n := len(xs)
	m := make([]float64, n)

	// Solve the tridiagonal system for the interior second derivatives
	// (Thomas algorithm). Natural conditions fix m[0] = m[n-1] = 0.
	sub := make([]float64, n)
	diag := make([]float64, n)
	sup := make([]float64, n)
	rhs := make([]float64, n)

	diag[0] = 1
	diag[n-1] = 1
	for i := 1; i < n-1; i++ {
		h0 := xs[i] - xs[i-1]
		h1 := xs[i+1] - xs[i]
		sub[i] = h0
		diag[i] = 2 * (h0 + h1)
		sup[i] = h1
		rhs[i] = 6 * ((ys[i+1]-ys[i])/h1 - (ys[i]-ys[i-1])/h0)
	}

	for i := 1; i < n; i++ {
		w := sub[i] / diag[i-1]
		diag[i] -= w * sup[i-1]
		rhs[i] -= w * rhs[i-1]
	}
	m[n-1] = rhs[n-1] / diag[n-1]
	for i := n - 2; i >= 0; i-- {
		m[i] = (rhs[i] - sup[i]*m[i+1]) / diag[i]
	}

	return &cubicSpline{xs: xs, ys: ys, m: m}
}

// at evaluates the spline at x. Outside the sample range the endpoint value
// is returned; the densification grid never extends past the input span, so
// this only guards against floating-point edge effects.
func (s *cubicSpline) at(x float64) float64 {
	n := len(s.xs)
	if x <= s.xs[0] {
		return s.ys[0]
	}
	if x >= s.xs[n-1] {
		return s.ys[n-1]
	}

	// Binary search for the interval containing x.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if s.xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}

	h := s.xs[hi] - s.xs[lo]
	a := (s.xs[hi] - x) / h
	b := (x - s.xs[lo]) / h
	return a*s.ys[lo] + b*s.ys[hi] +
		((a*a*a-a)*s.m[lo]+(b*b*b-b)*s.m[hi])*h*h/6
}

// lerp linearly interpolates between known samples. Like the spline, it
// clamps to endpoint values outside the sample range.
func lerp(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	frac := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + frac*(ys[hi]-ys[lo])
}
