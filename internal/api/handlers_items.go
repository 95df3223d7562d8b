package api

import (
	"net/http"

	"shareit/internal/dto"
)

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req dto.ItemCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	item, err := s.svc.Items.CreateItem(r.Context(), userID, req.Model())
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewItemResponse(item))
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req dto.ItemPatch
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	item, err := s.svc.Items.UpdateItem(r.Context(), userID, itemID, req.Model())
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewItemResponse(item))
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	details, err := s.svc.Items.GetItem(r.Context(), userID, itemID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewItemDetailsResponse(details))
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
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

	items, err := s.svc.Items.ListOwnerItems(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewItemDetailsResponses(items))
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	page, err := dto.ParsePage(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	items, err := s.svc.Items.SearchItems(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewItemResponses(items))
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := s.svc.Items.DeleteItem(r.Context(), userID, itemID); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req dto.CommentCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	comment, err := s.svc.Items.AddComment(r.Context(), userID, itemID, req.Text)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewCommentResponse(comment))
}
