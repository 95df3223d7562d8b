package api

import (
	"net/http"

	"shareit/internal/dto"
)

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req dto.RequestCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	request, err := s.svc.Requests.CreateRequest(r.Context(), userID, req.Description)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewRequestResponse(request))
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	page, err := dto.ParsePage(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	requests, err := s.svc.Requests.ListOwnRequests(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewRequestResponses(requests))
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	page, err := dto.ParsePage(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	requests, err := s.svc.Requests.ListOtherRequests(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewRequestResponses(requests))
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	request, err := s.svc.Requests.GetRequest(r.Context(), userID, requestID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewRequestResponse(request))
}
