// Package fit implements the Fit-Error Function of spec.md §4.4: a
// quadratic and a log-linear least-squares fit over a window of decoded
// values, used both to seed-filter candidate placements (internal/candidate)
// and to score grown streaks (internal/streak).
package fit

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxValue is the sentinel returned whenever the fit cannot be computed
// (degenerate input, NaN/Inf coefficients, a singular normal-equation
// solve). Seeds whose quality exceeds MaxValidationError, and grown
// streaks whose quality is >= MaxValidationError, are discarded by their
// callers.
const MaxValue = 1e100

// MaxValidationError is the threshold above which a seed is discarded
// during seeding (spec.md §4.4).
const MaxValidationError = 1000.0

// Error implements spec.md §4.4 against a window of raw parsed values.
// If n < 4 the window is degenerate and the smoothness predicate already
// filtered it, so the fit is defined to be exactly 0 (spec.md §9).
func Error(values []float64) float64 {
	n := len(values)
	if n < 4 {
		return 0
	}

	y := make([]float64, n)
	copy(y, values)

	minY, maxY := y[0], y[0]
	for _, v := range y {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}
	if minY < 0 {
		shift := 1.1 * math.Abs(minY)
		for i := range y {
			y[i] += shift
		}
		maxY += shift
	}
	if maxY == 0 {
		return MaxValue
	}
	for i := range y {
		y[i] = y[i] * 100 / maxY
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i + 1)
	}

	errPoly := fitMeanSquaredError(x, y, 2)

	logY := make([]float64, n)
	for i, v := range y {
		logY[i] = math.Log(v)
	}
	errLog := fitMeanSquaredError(x, logY, 1)

	if math.IsNaN(errPoly) || math.IsInf(errPoly, 0) {
		errPoly = MaxValue
	}
	if math.IsNaN(errLog) || math.IsInf(errLog, 0) {
		errLog = MaxValue
	}

	return math.Max(0, math.Min(errLog, errPoly))
}

// fitMeanSquaredError fits a degree-`degree` polynomial through (x, y) by
// least squares and returns the mean squared residual. Any failure
// (singular normal equations, non-finite coefficients) is reported as
// MaxValue, matching spec.md §4.4's "any infinity or arithmetic exception".
func fitMeanSquaredError(x, y []float64, degree int) (result float64) {
	defer func() {
		if recover() != nil {
			result = MaxValue
		}
	}()

	n := len(x)
	cols := degree + 1
	a := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		p := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, p)
			p *= x[i]
		}
	}
	b := mat.NewDense(n, 1, append([]float64(nil), y...))

	var coeffs mat.Dense
	if err := coeffs.Solve(a, b); err != nil {
		return MaxValue
	}

	for j := 0; j < cols; j++ {
		v := coeffs.At(j, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return MaxValue
		}
	}

	var sumSq float64
	for i := 0; i < n; i++ {
		pred := 0.0
		p := 1.0
		for j := 0; j < cols; j++ {
			pred += coeffs.At(j, 0) * p
			p *= x[i]
		}
		diff := y[i] - pred
		sumSq += diff * diff
	}

	return sumSq / float64(n)
}
