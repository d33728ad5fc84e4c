package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jacentio/roster/store"
)

type createSchoolRequest struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	EstablishedYear int    `json:"establishedYear"`
	Principal       string `json:"principal"`
}

func (s *Server) handleCreateSchool(w http.ResponseWriter, r *http.Request) {
	var req createSchoolRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	school := store.School{
		Name:            req.Name,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           req.Email,
		EstablishedYear: req.EstablishedYear,
		Principal:       req.Principal,
	}
	view, err := s.coord.CreateSchool(r.Context(), &school)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "school created", view)
}

func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	views, err := s.coord.ListSchools(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "", views)
}

func (s *Server) handleGetSchool(w http.ResponseWriter, r *http.Request) {
	view, err := s.coord.GetSchool(r.Context(), chi.URLParam(r, "schoolID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "", view)
}

func (s *Server) handleUpdateSchool(w http.ResponseWriter, r *http.Request) {
	var upd store.SchoolUpdate
	if err := decodeJSON(r, &upd); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	view, err := s.coord.UpdateSchool(r.Context(), chi.URLParam(r, "schoolID"), upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "school updated", view)
}

func (s *Server) handleDeleteSchool(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.DeleteSchool(r.Context(), chi.URLParam(r, "schoolID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "school deleted", nil)
}

func (s *Server) handleSchoolStudents(w http.ResponseWriter, r *http.Request) {
	views, err := s.coord.SchoolStudents(r.Context(), chi.URLParam(r, "schoolID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "", views)
}
