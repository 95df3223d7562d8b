package api

import (
	"net/http"

	"shareit/internal/dto"
)

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UserCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := s.svc.Users.CreateUser(r.Context(), req.Model())
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewUserResponse(user))
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := dto.ParsePage(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	users, err := s.svc.Users.ListUsers(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponses(users))
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := s.svc.Users.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req dto.UserPatch
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := s.svc.Users.UpdateUser(r.Context(), id, req.Model())
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := s.svc.Users.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
