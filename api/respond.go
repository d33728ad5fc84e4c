package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jacentio/roster/enrollment"
	"github.com/jacentio/roster/store"
)

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Message: message})
}

// respondError maps a domain error to a status code and envelope. Errors
// outside the known kinds are logged and answered with a generic 500; the
// underlying text is exposed only in debug mode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Message: "validation failed", Errors: verr.Fields})
	case errors.Is(err, store.ErrDuplicateEmail):
		s.badRequest(w, "email already in use")
	case errors.Is(err, enrollment.ErrSchoolRequired):
		s.badRequest(w, "school id is required")
	case errors.Is(err, enrollment.ErrNotEnrolled):
		s.badRequest(w, "student is not enrolled in any school")
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: "record not found"})
	default:
		s.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		message := "internal server error"
		if s.debug {
			message = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, envelope{Message: message})
	}
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}
