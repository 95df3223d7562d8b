package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

const (
	errLabelValidation = "validation error"
	errLabelNotFound   = "Not Found"
	errLabelConflict   = "Conflict"
	errLabelInternal   = "Internal Server Error"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, label, message string) {
	writeJSON(w, statusCode, dto.ErrorResponse{Error: label, ErrorMessage: message})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, errLabelValidation, err.Error())
}

// writeServiceError maps a domain error kind onto its HTTP status. Anything
// unclassified is logged and reported as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	msg := domain.Message(err)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, errLabelNotFound, msg)
	case errors.Is(err, domain.ErrInvalidArgument):
		// Clients match on the message itself, e.g. "Unknown state: X".
		writeError(w, http.StatusBadRequest, msg, msg)
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, errLabelValidation, msg)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, errLabelConflict, msg)
	default:
		logger.Error().Err(err).
			Str("request_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, errLabelInternal, "unexpected error")
	}
}

// decodeBody reads a JSON body into dst and runs its validate tags.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return dto.Validate(dst)
}

// callerID reads the X-Sharer-User-Id header.
func callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if raw == "" {
		return 0, fmt.Errorf("%s header is required", models.HeaderUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s header must be an integer, got %q", models.HeaderUserID, raw)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	return dto.ParseID(name, r.PathValue(name))
}

func parseState(r *http.Request) (models.BookingState, error) {
	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		return "", domain.InvalidArgument("%s", err.Error())
	}
	return state, nil
}
