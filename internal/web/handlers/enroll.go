package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// EnrollHandler handles enrollment endpoints.
type EnrollHandler struct {
	system *recognizer.System
}

// NewEnrollHandler creates a new enrollment handler.
func NewEnrollHandler(system *recognizer.System) *EnrollHandler {
	return &EnrollHandler{system: system}
}

// EnrollResponse reports the gallery state after a successful enrollment.
type EnrollResponse struct {
	Name    string `json:"name"`
	Label   int    `json:"label"`
	Samples int    `json:"samples"`
}

// Enroll adds one face sample for a person from an uploaded image.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	img, err := decodeUploadedImage(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := r.FormValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.system.Enroll(name, img); err != nil {
		if errors.Is(err, recognizer.ErrNoFace) {
			respondError(w, http.StatusUnprocessableEntity, "no face found in image")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	label, _ := h.system.Gallery().LabelOf(name)
	log.WithField("name", sanitizeForLog(name)).Info("face enrolled")

	respondJSON(w, http.StatusOK, EnrollResponse{
		Name:    name,
		Label:   label,
		Samples: h.system.Gallery().SampleCount(),
	})
}
