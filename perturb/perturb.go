package perturb

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Project returns x' = x - alpha*(w·x + b)/(w·w)*w.
//
// With alpha = 1, x' lies on the hyperplane w·x + b = 0 up to rounding.
// With alpha > 1, x' lies on the opposite side of the hyperplane, at
// signed distance (alpha-1)*|w·x+b|/‖w‖ past the boundary.
//
// Project is pure: it never modifies x or w. It returns
// ErrDegenerateWeights when w·w = 0 and a DimensionError when x and w
// differ in length.
func Project(x, w []float64, b, alpha float64) ([]float64, error) {
	if len(x) != len(w) {
		return nil, DimensionError{Got: len(x), Want: len(w)}
	}
	ww := floats.Dot(w, w)
	if ww == 0 {
		return nil, ErrDegenerateWeights
	}
	scale := alpha * (floats.Dot(w, x) + b) / ww
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - scale*w[i]
	}
	return out, nil
}

// Delta returns only the perturbation x' - x for the same projection.
// The result is always a scalar multiple of w.
func Delta(x, w []float64, b, alpha float64) ([]float64, error) {
	if len(x) != len(w) {
		return nil, DimensionError{Got: len(x), Want: len(w)}
	}
	ww := floats.Dot(w, w)
	if ww == 0 {
		return nil, ErrDegenerateWeights
	}
	scale := alpha * (floats.Dot(w, x) + b) / ww
	out := make([]float64, len(w))
	for i := range w {
		out[i] = -scale * w[i]
	}
	return out, nil
}

// Distance returns the signed euclidean distance (w·x + b)/‖w‖ from x
// to the hyperplane. Negative values are on the negative side of the
// boundary.
func Distance(x, w []float64, b float64) (float64, error) {
	if len(x) != len(w) {
		return 0, DimensionError{Got: len(x), Want: len(w)}
	}
	norm := math.Sqrt(floats.Dot(w, w))
	if norm == 0 {
		return 0, ErrDegenerateWeights
	}
	return (floats.Dot(w, x) + b) / norm, nil
}

// FGSM returns the fast-gradient-sign perturbation
// x' = x + epsilon*sign(grad), the usual baseline attack next to the
// closed-form projection. For a linear model the loss gradient is a
// multiple of the weight vector, so FGSM and Project move x in related
// directions but FGSM spends the same budget epsilon on every feature.
func FGSM(x, grad []float64, epsilon float64) ([]float64, error) {
	if len(x) != len(grad) {
		return nil, DimensionError{Got: len(x), Want: len(grad)}
	}
	out := make([]float64, len(x))
	for i := range x {
		switch {
		case grad[i] > 0:
			out[i] = x[i] + epsilon
		case grad[i] < 0:
			out[i] = x[i] - epsilon
		default:
			out[i] = x[i]
		}
	}
	return out, nil
}
