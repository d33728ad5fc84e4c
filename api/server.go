// Package api exposes the enrollment service over HTTP.
//
// Every endpoint answers with the same envelope: a success flag, a
// human-readable message, an optional data payload and, for validation
// failures, a field→message map. Domain error kinds map to status codes
// (validation, duplicate email and bad requests to 400, missing records
// to 404, anything unexpected to 500).
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jacentio/roster/enrollment"
)

// Server handles HTTP traffic for the roster service.
type Server struct {
	coord *enrollment.Coordinator
	log   *slog.Logger
	debug bool
}

// NewServer creates a Server around the coordinator. A nil logger falls
// back to [slog.Default]. With debug enabled, 500 responses carry the
// underlying error text instead of a generic message.
func NewServer(coord *enrollment.Coordinator, log *slog.Logger, debug bool) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{coord: coord, log: log, debug: debug}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/schools", func(r chi.Router) {
		r.Post("/", s.handleCreateSchool)
		r.Get("/", s.handleListSchools)
		r.Get("/{schoolID}", s.handleGetSchool)
		r.Put("/{schoolID}", s.handleUpdateSchool)
		r.Delete("/{schoolID}", s.handleDeleteSchool)
		r.Get("/{schoolID}/students", s.handleSchoolStudents)
	})

	r.Route("/students", func(r chi.Router) {
		r.Post("/", s.handleCreateStudent)
		r.Get("/", s.handleListStudents)
		r.Get("/{studentID}", s.handleGetStudent)
		r.Put("/{studentID}", s.handleUpdateStudent)
		r.Delete("/{studentID}", s.handleDeleteStudent)
		r.Post("/{studentID}/enroll", s.handleEnroll)
		r.Post("/{studentID}/unenroll", s.handleUnenroll)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, "ok", nil)
}

// requestLogger logs one line per request with the final status code.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
