package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/dto"
	"shareit/internal/export"
	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req dto.BookingCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	booking, err := s.svc.Bookings.CreateBooking(r.Context(), userID, req.Model())
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewBookingResponse(booking))
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeBadRequest(w, fmt.Errorf("approved must be true or false, got %q", r.URL.Query().Get("approved")))
		return
	}

	booking, err := s.svc.Bookings.ApproveBooking(r.Context(), userID, bookingID, approved)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBookingResponse(booking))
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	booking, err := s.svc.Bookings.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBookingResponse(booking))
}

func (s *HTTPServer) handleListUserBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.svc.Bookings.ListUserBookings)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.svc.Bookings.ListOwnerBookings)
}

type bookingLister func(ctx context.Context, userID int64, state models.BookingState, page *models.Page) ([]*models.Booking, error)

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	state, err := parseState(r)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	page, err := dto.ParsePage(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	bookings, err := list(r.Context(), userID, state, page)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBookingResponses(bookings))
}

// handleExportOwnerBookings streams every owner booking in the requested
// state as an XLSX workbook.
func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	state, err := parseState(r)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}

	bookings, err := s.svc.Bookings.ListOwnerBookings(r.Context(), userID, state, nil)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings, now); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(state, now)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
