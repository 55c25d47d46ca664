package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// PeopleHandler handles gallery listing endpoints.
type PeopleHandler struct {
	system *recognizer.System
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(system *recognizer.System) *PeopleHandler {
	return &PeopleHandler{system: system}
}

// List returns every enrolled identity together with gallery stats.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	g := h.system.Gallery()

	people := g.Identities()
	if people == nil {
		people = []gallery.Identity{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"people":  people,
		"samples": g.SampleCount(),
		"trained": g.IsTrained(),
	})
}
