package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jacentio/roster/store"
)

type createStudentRequest struct {
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	DateOfBirth    time.Time         `json:"dateOfBirth"`
	Grade          string            `json:"grade"`
	Address        *store.Address    `json:"address"`
	ParentInfo     *store.ParentInfo `json:"parentInfo"`
	EnrollmentDate *time.Time        `json:"enrollmentDate"`
	IsActive       *bool             `json:"isActive"`
	School         string            `json:"school"`
}

type enrollRequest struct {
	School string `json:"school"`
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	student := store.Student{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Grade:       req.Grade,
		Address:     req.Address,
		ParentInfo:  req.ParentInfo,
		IsActive:    true,
		SchoolID:    req.School,
	}
	if req.EnrollmentDate != nil {
		student.EnrollmentDate = *req.EnrollmentDate
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	detail, err := s.coord.CreateStudent(r.Context(), &student)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "student created", detail)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.StudentFilter{
		School: query.Get("school"),
		Grade:  query.Get("grade"),
	}
	if raw := query.Get("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			s.badRequest(w, "isActive must be a boolean")
			return
		}
		filter.IsActive = &active
	}

	views, err := s.coord.ListStudents(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "", views)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	detail, err := s.coord.GetStudent(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "", detail)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var upd store.StudentUpdate
	if err := decodeJSON(r, &upd); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	detail, err := s.coord.UpdateStudent(r.Context(), chi.URLParam(r, "studentID"), upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "student updated", detail)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.DeleteStudent(r.Context(), chi.URLParam(r, "studentID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "student deleted", nil)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	detail, err := s.coord.Enroll(r.Context(), chi.URLParam(r, "studentID"), req.School)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "student enrolled", detail)
}

func (s *Server) handleUnenroll(w http.ResponseWriter, r *http.Request) {
	detail, err := s.coord.Unenroll(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "student unenrolled", detail)
}
