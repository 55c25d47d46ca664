package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/config"
)

// ConfigHandler exposes the effective non-secret configuration.
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// Get returns the tuning parameters the server is running with.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"detector": map[string]any{
			"scale_factor":      h.config.Detector.ScaleFactor,
			"shift_factor":      h.config.Detector.ShiftFactor,
			"min_size":          h.config.Detector.MinSize,
			"max_size":          h.config.Detector.MaxSize,
			"quality_threshold": h.config.Detector.QualityThreshold,
		},
		"encoder": map[string]any{
			"patch_size": h.config.Encoder.PatchSize,
			"grid_x":     h.config.Encoder.GridX,
			"grid_y":     h.config.Encoder.GridY,
		},
		"matcher": map[string]any{
			"threshold": h.config.Matcher.Threshold,
			"index":     h.config.Matcher.Index,
		},
	})
}
