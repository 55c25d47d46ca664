// Package lbp computes local binary pattern texture descriptors for face
// crops. The encoding is illumination-robust and cheap compared to learned
// embeddings, which keeps the whole matching pipeline free of native
// dependencies and model downloads.
package lbp

import (
	"errors"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Descriptor is a fixed-length texture feature vector. Two descriptors are
// comparable only if they were produced with the same Params.
type Descriptor []float32

// ErrDegeneratePatch is returned when a face region cannot be normalized,
// e.g. a zero-area crop. Callers should treat it as "retake the picture".
var ErrDegeneratePatch = errors.New("degenerate face patch")

// Params controls the descriptor layout.
type Params struct {
	PatchSize int     `yaml:"patch_size"` // canonical square resolution for face crops
	GridX     int     `yaml:"grid_x"`     // histogram cells per row
	GridY     int     `yaml:"grid_y"`     // histogram cells per column
	Radius    float64 `yaml:"radius"`     // sampling circle radius in pixels
	Neighbors int     `yaml:"neighbors"`  // sampling points on the circle (max 16)
}

// DefaultParams returns the parameters used throughout the system. They
// mirror the common LBPH setup: 200x200 patch, 8x8 grid, radius 1 with
// 8 neighbors, giving a 16384-dimensional descriptor.
func DefaultParams() Params {
	return Params{
		PatchSize: 200,
		GridX:     8,
		GridY:     8,
		Radius:    1,
		Neighbors: 8,
	}
}

// Encoder converts grayscale face patches into Descriptors.
type Encoder struct {
	params Params
}

// NewEncoder creates an encoder for the given parameters.
func NewEncoder(p Params) *Encoder {
	return &Encoder{params: p}
}

// Dim returns the descriptor length produced by this encoder.
func (e *Encoder) Dim() int {
	return e.params.GridX * e.params.GridY * (1 << e.params.Neighbors)
}

// Params returns the encoder configuration.
func (e *Encoder) Params() Params {
	return e.params
}

// Encode normalizes a face crop to the canonical patch size and computes
// its LBP cell-histogram descriptor. A nil or zero-area image yields
// ErrDegeneratePatch.
func (e *Encoder) Encode(img image.Image) (Descriptor, error) {
	if img == nil {
		return nil, ErrDegeneratePatch
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrDegeneratePatch
	}

	gray := e.toPatch(img)
	return e.histogram(gray), nil
}

// toPatch resizes the crop to PatchSize x PatchSize and converts it to a
// flat grayscale buffer.
func (e *Encoder) toPatch(img image.Image) []float64 {
	size := e.params.PatchSize
	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	gray := make([]float64, size*size)
	for y := range size {
		for x := range size {
			r, g, b, _ := resized.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			gray[y*size+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return gray
}

// histogram computes the circular LBP code for every interior pixel and
// accumulates per-cell pattern histograms, concatenated in row-major cell
// order.
func (e *Encoder) histogram(gray []float64) Descriptor {
	size := e.params.PatchSize
	bins := 1 << e.params.Neighbors
	desc := make(Descriptor, e.Dim())

	radius := e.params.Radius
	border := int(math.Ceil(radius))

	// Precompute the sampling offsets on the circle.
	offX := make([]float64, e.params.Neighbors)
	offY := make([]float64, e.params.Neighbors)
	for n := range e.params.Neighbors {
		angle := 2 * math.Pi * float64(n) / float64(e.params.Neighbors)
		offX[n] = radius * math.Cos(angle)
		offY[n] = -radius * math.Sin(angle)
	}

	for y := border; y < size-border; y++ {
		for x := border; x < size-border; x++ {
			center := gray[y*size+x]

			code := 0
			for n := range e.params.Neighbors {
				sample := bilinear(gray, size, float64(x)+offX[n], float64(y)+offY[n])
				if sample >= center {
					code |= 1 << n
				}
			}

			cellX := x * e.params.GridX / size
			cellY := y * e.params.GridY / size
			cell := cellY*e.params.GridX + cellX
			desc[cell*bins+code]++
		}
	}

	return desc
}

// bilinear samples the grayscale buffer at a fractional coordinate.
func bilinear(gray []float64, size int, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= size {
		x1 = size - 1
	}
	if y1 >= size {
		y1 = size - 1
	}

	fx := x - float64(x0)
	fy := y - float64(y0)

	top := gray[y0*size+x0]*(1-fx) + gray[y0*size+x1]*fx
	bottom := gray[y1*size+x0]*(1-fx) + gray[y1*size+x1]*fx
	return top*(1-fy) + bottom*fy
}
