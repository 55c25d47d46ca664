package recognizer

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const jpegQuality = 90

// DecodeImageFile opens and decodes an image from disk. JPEG, PNG, GIF and
// BMP are supported.
func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %s: %w", path, err)
	}
	return img, nil
}

// LoadKnownFaces bootstraps the gallery from the enrollment image store:
// one subdirectory per person, each file one face sample. Unreadable or
// faceless files are skipped with a warning. The gallery is retrained once
// at the end.
func (s *System) LoadKnownFaces() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.cfg.Storage.FacesDir
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		log.WithField("dir", dir).Info("no enrollment images found, starting with an empty gallery")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading faces directory %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		label := s.gallery.Enroll(name)

		personDir := filepath.Join(dir, name)
		files, err := os.ReadDir(personDir)
		if err != nil {
			log.WithError(err).WithField("dir", personDir).Warn("skipping unreadable person directory")
			continue
		}

		for _, file := range files {
			if file.IsDir() || !isImageFile(file.Name()) {
				continue
			}
			path := filepath.Join(personDir, file.Name())

			img, err := DecodeImageFile(path)
			if err != nil {
				log.WithError(err).WithField("file", path).Warn("skipping unreadable enrollment image")
				continue
			}

			// Enrollment images are stored pre-cropped; encode them as-is.
			desc, err := s.encoder.Encode(img)
			if err != nil {
				log.WithError(err).WithField("file", path).Warn("skipping unencodable enrollment image")
				continue
			}
			if err := s.gallery.AddSample(label, desc); err != nil {
				log.WithError(err).WithField("file", path).Warn("skipping enrollment image")
				continue
			}
			loaded++
		}
	}

	s.gallery.Retrain()
	log.WithFields(log.Fields{
		"people":  len(s.gallery.Identities()),
		"samples": loaded,
	}).Info("gallery loaded")
	return nil
}

// saveFaceImage persists an enrollment crop under the person's directory
// with the next free sequential number.
func (s *System) saveFaceImage(name string, crop image.Image) error {
	dir := filepath.Join(s.cfg.Storage.FacesDir, name)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	n := nextSequence(dir)
	path := filepath.Join(dir, strconv.Itoa(n)+".jpg")
	return writeJPEG(path, crop)
}

// snapshotUnknown saves a crop of an unrecognized face for later review.
// Disabled when no unknown-faces directory is configured; failures are
// logged, never propagated.
func (s *System) snapshotUnknown(crop image.Image) {
	dir := s.cfg.Storage.UnknownDir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.WithError(err).Warn("could not create unknown faces directory")
		return
	}

	path := filepath.Join(dir, uuid.New().String()+".jpg")
	if err := writeJPEG(path, crop); err != nil {
		log.WithError(err).Warn("could not save unknown face snapshot")
	}
}

// nextSequence returns one past the highest numeric file stem in dir.
func nextSequence(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	max := 0
	for _, entry := range entries {
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if n, err := strconv.Atoi(stem); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// cropImage extracts the region box from img. Image types with a SubImage
// method share pixel memory; everything else is copied.
func cropImage(img image.Image, box image.Rectangle) image.Image {
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(box)
	}

	dst := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(dst, dst.Bounds(), img, box.Min, draw.Src)
	return dst
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp":
		return true
	}
	return false
}
