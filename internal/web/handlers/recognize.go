package handlers

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// RecognizeHandler handles face recognition endpoints.
type RecognizeHandler struct {
	system *recognizer.System
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(system *recognizer.System) *RecognizeHandler {
	return &RecognizeHandler{system: system}
}

// MarkOutcome reports the attendance side effect for one recognized face.
type MarkOutcome struct {
	Name string `json:"name"`
	ledger.MarkResult
}

// RecognizeResponse lists every located face and, when marking was
// requested, the attendance outcome per recognized person.
type RecognizeResponse struct {
	Faces  []recognizer.Detection `json:"faces"`
	Marked []MarkOutcome          `json:"marked,omitempty"`
}

// Recognize classifies every face in the uploaded image. With ?mark=true
// every recognized person is also marked present for today.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	img, err := decodeUploadedImage(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold := h.system.Threshold()
	if raw := r.FormValue("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t <= 0 {
			respondError(w, http.StatusBadRequest, "threshold must be a positive number")
			return
		}
		threshold = t
	}

	detections := h.system.RecognizeWithThreshold(img, threshold)

	resp := RecognizeResponse{Faces: detections}
	if r.FormValue("mark") == "true" {
		for _, det := range detections {
			if !det.Match.Known {
				continue
			}
			result := h.system.MarkAttendance(det.Match.Name)
			resp.Marked = append(resp.Marked, MarkOutcome{Name: det.Match.Name, MarkResult: result})
			log.WithFields(log.Fields{
				"name":     sanitizeForLog(det.Match.Name),
				"accepted": result.Accepted,
			}).Info("attendance mark attempted")
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
