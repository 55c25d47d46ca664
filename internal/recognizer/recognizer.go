// Package recognizer wires the face pipeline together: locate faces in a
// frame, encode them, classify them against the gallery, and record
// attendance. A single System instance is constructed at startup and
// passed by handle to every caller; there is no package-level state.
package recognizer

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/detect"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/lbp"
	"github.com/kozaktomas/face-attendance/internal/ledger"
)

// ErrNoFace is returned by Enroll when no face could be located in the
// supplied image. For plain recognition an empty result is the well-defined
// outcome instead.
var ErrNoFace = errors.New("no face found in image")

// Locator finds face bounding boxes in an image.
type Locator interface {
	Locate(img image.Image) []image.Rectangle
}

// Detection is the result for one located face.
type Detection struct {
	Box   image.Rectangle `json:"box"`
	Match gallery.Result  `json:"match"`
}

// System owns the recognition pipeline and its storage. Enrollment and
// retraining take the write lock so they never interleave with an
// in-flight classification.
type System struct {
	cfg     *config.Config
	locator Locator
	encoder *lbp.Encoder
	gallery *gallery.Gallery
	ledger  *ledger.Ledger

	mu  sync.RWMutex
	now func() time.Time
}

// New builds a System with the cascade detector from the configuration.
func New(cfg *config.Config) (*System, error) {
	det, err := detect.New(cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("initializing face detector: %w", err)
	}
	return NewWithLocator(cfg, det), nil
}

// NewWithLocator builds a System around an existing locator. Useful for
// tests and alternative detector implementations.
func NewWithLocator(cfg *config.Config, locator Locator) *System {
	g := gallery.New()
	if cfg.Matcher.Index == config.MatchIndexHNSW {
		g.EnableHNSW(cfg.Matcher.IndexPath)
	}

	return &System{
		cfg:     cfg,
		locator: locator,
		encoder: lbp.NewEncoder(cfg.Encoder),
		gallery: g,
		ledger:  ledger.New(cfg.Storage.AttendanceDir),
		now:     time.Now,
	}
}

// Gallery exposes the enrolled identity set.
func (s *System) Gallery() *gallery.Gallery {
	return s.gallery
}

// Ledger exposes the attendance ledger.
func (s *System) Ledger() *ledger.Ledger {
	return s.ledger
}

// Threshold returns the configured acceptance threshold.
func (s *System) Threshold() float64 {
	return s.cfg.Matcher.Threshold
}

// Recognize locates every face in the frame and classifies it against the
// gallery. Faces whose crop cannot be encoded are skipped with a warning.
// Unknown faces are snapshotted when an unknown-faces directory is
// configured.
func (s *System) Recognize(img image.Image) []Detection {
	return s.RecognizeWithThreshold(img, s.cfg.Matcher.Threshold)
}

// RecognizeWithThreshold is Recognize with an explicit acceptance
// threshold, overriding the configured one.
func (s *System) RecognizeWithThreshold(img image.Image, threshold float64) []Detection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	boxes := s.locator.Locate(img)
	detections := make([]Detection, 0, len(boxes))

	for _, box := range boxes {
		crop := cropImage(img, box)
		desc, err := s.encoder.Encode(crop)
		if err != nil {
			log.WithError(err).WithField("box", box.String()).Warn("skipping unencodable face region")
			continue
		}

		match := s.gallery.Classify(desc, threshold)
		if !match.Known {
			s.snapshotUnknown(crop)
		}

		detections = append(detections, Detection{Box: box, Match: match})
	}

	return detections
}

// Enroll registers one face sample for a person: the strongest detected
// face is cropped, encoded, stored as a training sample, and persisted as
// an enrollment image. The gallery is retrained before returning, so the
// new sample is immediately matchable.
func (s *System) Enroll(name string, img image.Image) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	boxes := s.locator.Locate(img)
	if len(boxes) == 0 {
		return ErrNoFace
	}

	crop := cropImage(img, boxes[0])
	desc, err := s.encoder.Encode(crop)
	if err != nil {
		return fmt.Errorf("encoding face for %s: %w", name, err)
	}

	label := s.gallery.Enroll(name)
	if err := s.gallery.AddSample(label, desc); err != nil {
		return fmt.Errorf("adding sample for %s: %w", name, err)
	}

	if err := s.saveFaceImage(name, crop); err != nil {
		// The in-memory sample is already enrolled; a failed image write
		// only loses the ability to re-bootstrap it later.
		log.WithError(err).WithField("name", name).Warn("failed to persist enrollment image")
	}

	s.gallery.Retrain()
	return nil
}

// MarkAttendance records attendance for name at the current time.
func (s *System) MarkAttendance(name string) ledger.MarkResult {
	return s.ledger.Mark(name, s.now())
}

// SaveIndex persists the approximate match index, when one is enabled and
// has a configured path.
func (s *System) SaveIndex() error {
	if idx := s.gallery.Index(); idx != nil {
		return idx.Save()
	}
	return nil
}

// validateName rejects names that are empty or unusable as a directory
// component.
func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name must not be empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
