package lbp

import (
	"math"
	"testing"
)

func TestChiSquareIdentity(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"uniform", Descriptor{1, 1, 1, 1}},
		{"sparse", Descriptor{0, 5, 0, 3}},
		{"zeros", Descriptor{0, 0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChiSquare(tc.d, tc.d); got != 0 {
				t.Errorf("ChiSquare(d, d) = %f; want 0", got)
			}
		})
	}
}

func TestChiSquareSymmetry(t *testing.T) {
	a := Descriptor{1, 2, 3, 4, 0}
	b := Descriptor{4, 3, 2, 1, 7}

	ab := ChiSquare(a, b)
	ba := ChiSquare(b, a)
	if ab != ba {
		t.Errorf("ChiSquare not symmetric: %f vs %f", ab, ba)
	}
	if ab < 0 {
		t.Errorf("ChiSquare should be non-negative, got %f", ab)
	}
}

func TestChiSquarePositiveForDifferent(t *testing.T) {
	a := Descriptor{1, 0, 0}
	b := Descriptor{0, 1, 0}

	if got := ChiSquare(a, b); got <= 0 {
		t.Errorf("ChiSquare of different descriptors should be positive, got %f", got)
	}
}

func TestChiSquareKnownValue(t *testing.T) {
	// (1-3)^2/(1+3) + (2-2)^2/(2+2) = 1.0
	a := Descriptor{1, 2}
	b := Descriptor{3, 2}

	got := ChiSquare(a, b)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("ChiSquare = %f; want 1.0", got)
	}
}

func TestChiSquareIncomparable(t *testing.T) {
	tests := []struct {
		name string
		a    Descriptor
		b    Descriptor
	}{
		{"different lengths", Descriptor{1, 2}, Descriptor{1, 2, 3}},
		{"empty", Descriptor{}, Descriptor{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChiSquare(tc.a, tc.b); !math.IsInf(got, 1) {
				t.Errorf("ChiSquare(%v, %v) = %f; want +Inf", tc.a, tc.b, got)
			}
		})
	}
}

func TestChiSquare32MatchesChiSquare(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{2, 2, 0, 5}

	got := float64(ChiSquare32(a, b))
	want := ChiSquare(Descriptor(a), Descriptor(b))
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("ChiSquare32 = %f; want %f", got, want)
	}
}
