package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/face-attendance/internal/lbp"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// IndexMetadata stores metadata for validating a persisted HNSW index
// against the current sample set.
type IndexMetadata struct {
	SampleCount int       `json:"sample_count"`
	BuildTime   time.Time `json:"build_time"`
	Version     int       `json:"version"`
}

const indexMetadataVersion = 1

// HNSWIndex is an optional approximate nearest-neighbor index over
// training descriptors, keyed by sample position. It trades the exact
// linear-scan semantics (deterministic tie-breaks included) for sublinear
// search, which only starts to matter at gallery sizes the linear scan
// cannot serve. Opt-in via configuration.
type HNSWIndex struct {
	graph  *hnsw.Graph[int]
	labels []int // sample position -> identity label
	mu     sync.RWMutex
	path   string // optional persistence path
}

// NewHNSWIndex creates an empty index. If path is non-empty the index is
// persisted there on Save.
func NewHNSWIndex(path string) *HNSWIndex {
	return &HNSWIndex{path: path}
}

// Rebuild replaces the graph with one built from the given samples.
func (h *HNSWIndex) Rebuild(samples []TrainingSample) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(samples) == 0 {
		h.graph = nil
		h.labels = nil
		return nil
	}

	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // standard HNSW formula
	g.Distance = lbp.ChiSquare32

	labels := make([]int, len(samples))
	for i, sample := range samples {
		if len(sample.Descriptor) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, []float32(sample.Descriptor)))
		labels[i] = sample.Label
	}

	h.graph = g
	h.labels = labels
	return nil
}

// Nearest returns the label and exact chi-square distance of the closest
// indexed sample. ok is false when the index is empty.
func (h *HNSWIndex) Nearest(desc lbp.Descriptor) (label int, distance float64, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return 0, 0, false
	}

	neighbors := h.graph.Search([]float32(desc), 1)
	if len(neighbors) == 0 {
		return 0, 0, false
	}

	n := neighbors[0]
	if n.Key < 0 || n.Key >= len(h.labels) {
		return 0, 0, false
	}
	// Recompute the exact distance from the stored vector so threshold
	// acceptance stays exact even though the search is approximate.
	return h.labels[n.Key], lbp.ChiSquare(desc, lbp.Descriptor(n.Value)), true
}

// Count returns the number of indexed samples.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.labels)
}

// Save persists the graph and its metadata next to it. A no-op without a
// configured path or an empty graph.
func (h *HNSWIndex) Save() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.path == "" {
		return nil
	}
	if h.graph == nil {
		_ = os.Remove(h.path)
		_ = os.Remove(h.path + ".meta")
		return nil
	}

	f, err := os.Create(h.path)
	if err != nil {
		return fmt.Errorf("creating HNSW index file: %w", err)
	}
	defer f.Close()

	if err := h.graph.Export(f); err != nil {
		return fmt.Errorf("exporting HNSW graph: %w", err)
	}

	meta := IndexMetadata{
		SampleCount: len(h.labels),
		BuildTime:   time.Now(),
		Version:     indexMetadataVersion,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling index metadata: %w", err)
	}
	if err := os.WriteFile(h.path+".meta", data, 0600); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	return nil
}

// LoadIndexMetadata reads the metadata file for a persisted index.
func LoadIndexMetadata(path string) (IndexMetadata, error) {
	var meta IndexMetadata

	data, err := os.ReadFile(path + ".meta")
	if err != nil {
		return meta, fmt.Errorf("reading index metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("unmarshaling index metadata: %w", err)
	}
	return meta, nil
}

// EnableHNSW attaches an approximate index to the gallery. The index is
// built on the next Retrain and rebuilt on every Retrain after that.
func (g *Gallery) EnableHNSW(path string) *HNSWIndex {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.index = NewHNSWIndex(path)
	return g.index
}

// Index returns the attached HNSW index, or nil when disabled.
func (g *Gallery) Index() *HNSWIndex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.index
}
