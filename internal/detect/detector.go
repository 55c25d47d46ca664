// Package detect localizes candidate face regions in raw images using a
// pure-Go multi-scale sliding-window cascade (pigo), so the pipeline needs
// neither cgo nor a system OpenCV install.
package detect

import (
	"fmt"
	"image"
	"os"
	"sort"

	pigo "github.com/esimov/pigo/core"

	"github.com/kozaktomas/face-attendance/internal/config"
)

// Detector finds face bounding boxes in an image. Locate is a pure
// function of pixel data; a Detector is safe for concurrent use.
type Detector struct {
	classifier *pigo.Pigo
	cfg        config.DetectorConfig
}

// New loads the binary cascade model and prepares a detector.
func New(cfg config.DetectorConfig) (*Detector, error) {
	data, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("reading cascade model %s: %w", cfg.CascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade model %s: %w", cfg.CascadePath, err)
	}

	return &Detector{classifier: classifier, cfg: cfg}, nil
}

// Locate scans the image at multiple window scales and returns the
// bounding boxes of detected faces, strongest detection first. An empty
// result means "no face found" and is not an error. Every call re-scans
// from scratch.
func (d *Detector) Locate(img image.Image) []image.Rectangle {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil
	}

	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols := src.Bounds().Dx()
	rows := src.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     d.cfg.MaxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.cfg.OverlapIoU)

	sort.Slice(dets, func(i, j int) bool { return dets[i].Q > dets[j].Q })

	var boxes []image.Rectangle
	for _, det := range dets {
		if float64(det.Q) < d.cfg.QualityThreshold {
			continue
		}
		half := det.Scale / 2
		box := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)
		box = box.Add(bounds.Min).Intersect(bounds)
		if box.Empty() {
			continue
		}
		boxes = append(boxes, box)
	}
	return boxes
}
