package lbp

import "math"

// ChiSquare computes the chi-square distance between two histogram
// descriptors: sum of (a-b)^2 / (a+b) over all bins with mass.
// The result is non-negative, symmetric, and zero iff the descriptors are
// identical. Descriptors of different lengths are incomparable and yield
// +Inf.
func ChiSquare(a, b Descriptor) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		denom := av + bv
		if denom == 0 {
			continue
		}
		diff := av - bv
		sum += diff * diff / denom
	}
	return sum
}

// ChiSquare32 adapts ChiSquare to the float32 signature used by
// approximate nearest-neighbor indexes.
func ChiSquare32(a, b []float32) float32 {
	return float32(ChiSquare(Descriptor(a), Descriptor(b)))
}
