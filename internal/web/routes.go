package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	recognizeHandler := handlers.NewRecognizeHandler(s.system)
	enrollHandler := handlers.NewEnrollHandler(s.system)
	attendanceHandler := handlers.NewAttendanceHandler(s.system)
	peopleHandler := handlers.NewPeopleHandler(s.system)
	configHandler := handlers.NewConfigHandler(s.config)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Recognition
		r.Post("/recognize", recognizeHandler.Recognize)

		// Enrollment
		r.Post("/enroll", enrollHandler.Enroll)
		r.Get("/people", peopleHandler.List)

		// Attendance ledger
		r.Get("/attendance", attendanceHandler.Range)
		r.Get("/attendance/dates", attendanceHandler.Dates)
		r.Get("/attendance/{date}", attendanceHandler.Show)
		r.Post("/attendance/{name}", attendanceHandler.Mark)

		// Config
		r.Get("/config", configHandler.Get)
	})
}
