// Package gallery holds enrolled identities with their training descriptors
// and classifies query descriptors against them.
package gallery

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/lbp"
)

// Identity is an enrolled person. Labels are dense integers assigned in
// order of first enrollment; the display name keeps its original spelling.
type Identity struct {
	Label int    `json:"label"`
	Name  string `json:"name"`
}

// TrainingSample binds a descriptor to an identity label.
type TrainingSample struct {
	Label      int
	Descriptor lbp.Descriptor
}

// Gallery is the set of enrolled identities and their training samples.
// Enrollment appends samples; Retrain publishes them to the match set.
// Classification only sees samples that were present at the last Retrain,
// so an in-flight classify never observes a half-built gallery.
type Gallery struct {
	mu      sync.RWMutex
	names   []string       // label -> display name
	byKey   map[string]int // normalized name -> label
	samples []TrainingSample

	// matchSet is the snapshot published by Retrain.
	matchSet []TrainingSample
	trained  bool

	index *HNSWIndex // optional approximate index, nil unless enabled
}

// New creates an empty, untrained gallery.
func New() *Gallery {
	return &Gallery{
		byKey: make(map[string]int),
	}
}

// Enroll looks up or creates the label for a name. Idempotent: two names
// that normalize to the same key share one label.
func (g *Gallery) Enroll(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := NormalizeName(name)
	if label, ok := g.byKey[key]; ok {
		return label
	}

	label := len(g.names)
	g.names = append(g.names, name)
	g.byKey[key] = label
	return label
}

// AddSample appends a training sample for an already enrolled label.
// Matching does not reflect the sample until Retrain is called.
func (g *Gallery) AddSample(label int, desc lbp.Descriptor) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if label < 0 || label >= len(g.names) {
		return fmt.Errorf("unknown label %d", label)
	}
	if len(desc) == 0 {
		return fmt.Errorf("empty descriptor for label %d", label)
	}

	g.samples = append(g.samples, TrainingSample{Label: label, Descriptor: desc})
	return nil
}

// Retrain rebuilds the match set from the full current sample set. Full
// rebuild is O(total samples); fine while enrollment stays rare relative
// to matching.
func (g *Gallery) Retrain() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.matchSet = make([]TrainingSample, len(g.samples))
	copy(g.matchSet, g.samples)
	g.trained = len(g.matchSet) > 0

	if g.index != nil {
		if err := g.index.Rebuild(g.matchSet); err != nil {
			log.WithError(err).Warn("failed to rebuild HNSW index, falling back to linear scan")
			g.index = nil
		}
	}
}

// IsTrained reports whether at least one sample has been published by
// Retrain. An untrained gallery classifies everything as unknown; it is
// never an error.
func (g *Gallery) IsTrained() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.trained
}

// SampleCount returns the number of enrolled training samples.
func (g *Gallery) SampleCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.samples)
}

// Identities returns all enrolled identities in label order.
func (g *Gallery) Identities() []Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Identity, len(g.names))
	for label, name := range g.names {
		out[label] = Identity{Label: label, Name: name}
	}
	return out
}

// NameOf resolves a label to its display name.
func (g *Gallery) NameOf(label int) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if label < 0 || label >= len(g.names) {
		return "", false
	}
	return g.names[label], true
}

// LabelOf resolves a name to its label without enrolling it.
func (g *Gallery) LabelOf(name string) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	label, ok := g.byKey[NormalizeName(name)]
	return label, ok
}
