package lbp

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestEncodeDimensions(t *testing.T) {
	enc := NewEncoder(DefaultParams())

	desc, err := enc.Encode(createGradientImage(120, 160))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := 8 * 8 * 256
	if len(desc) != want {
		t.Errorf("descriptor length = %d; want %d", len(desc), want)
	}
	if enc.Dim() != want {
		t.Errorf("Dim() = %d; want %d", enc.Dim(), want)
	}
}

func TestEncodeConsistency(t *testing.T) {
	enc := NewEncoder(DefaultParams())
	img := createGradientImage(100, 100)

	d1, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("first Encode failed: %v", err)
	}
	d2, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("second Encode failed: %v", err)
	}

	if ChiSquare(d1, d2) != 0 {
		t.Error("encoding the same image twice should produce identical descriptors")
	}
}

func TestEncodeDistinguishesTextures(t *testing.T) {
	enc := NewEncoder(DefaultParams())

	gradient, err := enc.Encode(createGradientImage(100, 100))
	if err != nil {
		t.Fatalf("Encode gradient failed: %v", err)
	}
	checker, err := enc.Encode(createCheckerImage(100, 100, 5))
	if err != nil {
		t.Fatalf("Encode checkerboard failed: %v", err)
	}

	if dist := ChiSquare(gradient, checker); dist <= 0 {
		t.Errorf("different textures should have positive distance, got %f", dist)
	}
}

func TestEncodeDegeneratePatch(t *testing.T) {
	enc := NewEncoder(DefaultParams())

	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil image", nil},
		{"zero area", image.NewGray(image.Rect(0, 0, 0, 0))},
		{"zero width", image.NewGray(image.Rect(0, 0, 0, 10))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := enc.Encode(tc.img)
			if !errors.Is(err, ErrDegeneratePatch) {
				t.Errorf("Encode = %v; want ErrDegeneratePatch", err)
			}
		})
	}
}

func TestEncodeHistogramMass(t *testing.T) {
	// Every interior pixel contributes exactly one histogram count.
	p := DefaultParams()
	enc := NewEncoder(p)

	desc, err := enc.Encode(createCheckerImage(64, 64, 4))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var total float64
	for _, v := range desc {
		total += float64(v)
	}
	want := float64((p.PatchSize - 2) * (p.PatchSize - 2)) // radius-1 border excluded
	if total != want {
		t.Errorf("total histogram mass = %f; want %f", total, want)
	}
}

// Helper functions

func createGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			gray := uint8((x + y) * 255 / (width + height))
			img.Set(x, y, color.RGBA{gray, gray, gray, 255})
		}
	}
	return img
}

func createCheckerImage(width, height, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			c := color.RGBA{0, 0, 0, 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}
