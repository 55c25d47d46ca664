package gallery

import "github.com/kozaktomas/face-attendance/internal/lbp"

// SentinelDistance is reported when no training sample was compared at
// all, i.e. the gallery is untrained. It sits far beyond any practical
// acceptance threshold.
const SentinelDistance = 999

// Result is the outcome of classifying one descriptor.
type Result struct {
	// Known is true when the nearest sample fell strictly inside the
	// acceptance threshold. Name and Label are only meaningful then.
	Known      bool    `json:"known"`
	Name       string  `json:"name,omitempty"`
	Label      int     `json:"label"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
}

// Classify runs nearest-neighbor classification of a query descriptor
// against the trained match set: the globally closest single sample wins,
// not a per-identity average, so one good sample for X beats many mediocre
// samples for Y. Acceptance is strict (distance < threshold); a query at
// exactly the threshold is rejected. Ties on equal minimum distance go to
// the earliest enrolled sample.
func (g *Gallery) Classify(desc lbp.Descriptor, threshold float64) Result {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.trained || len(g.matchSet) == 0 {
		return Result{Known: false, Label: -1, Distance: SentinelDistance}
	}

	bestLabel := -1
	bestDist := 0.0

	if g.index != nil {
		if label, dist, ok := g.index.Nearest(desc); ok {
			bestLabel, bestDist = label, dist
		}
	}
	if bestLabel < 0 {
		for _, sample := range g.matchSet {
			dist := lbp.ChiSquare(desc, sample.Descriptor)
			if bestLabel < 0 || dist < bestDist {
				bestLabel = sample.Label
				bestDist = dist
			}
		}
	}

	if bestDist < threshold {
		confidence := 1 - bestDist/threshold
		if confidence < 0 {
			confidence = 0
		}
		return Result{
			Known:      true,
			Name:       g.names[bestLabel],
			Label:      bestLabel,
			Confidence: confidence,
			Distance:   bestDist,
		}
	}

	return Result{Known: false, Label: -1, Distance: bestDist}
}
