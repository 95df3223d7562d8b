package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/dto"
	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

const errLabelValidation = "validation error"

// check inspects a request before it is proxied. A non-nil error rejects it.
type check func(r *http.Request) error

func writeCheckError(w http.ResponseWriter, err error) {
	var unknown *models.UnknownStateError
	if errors.As(err, &unknown) {
		writeError(w, http.StatusBadRequest, err.Error(), err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, errLabelValidation, err.Error())
}

func sharer(r *http.Request) error {
	raw := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if raw == "" {
		return fmt.Errorf("%s header is required", models.HeaderUserID)
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return fmt.Errorf("%s header must be an integer, got %q", models.HeaderUserID, raw)
	}
	return nil
}

func page(r *http.Request) error {
	_, err := dto.ParsePage(r.URL.Query())
	return err
}

func state(r *http.Request) error {
	_, err := models.ParseBookingState(r.URL.Query().Get("state"))
	return err
}

func approvedFlag(r *http.Request) error {
	raw := r.URL.Query().Get("approved")
	if _, err := strconv.ParseBool(raw); err != nil {
		return fmt.Errorf("approved must be true or false, got %q", raw)
	}
	return nil
}

func pathID(name string) check {
	return func(r *http.Request) error {
		_, err := dto.ParseID(name, chi.URLParam(r, name))
		return err
	}
}

// jsonBody decodes and validates the body as T, then restores it so the
// proxy forwards the same bytes. extra runs request-specific rules.
func jsonBody[T any](extra func(*T) error) check {
	return func(r *http.Request) error {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		_ = r.Body.Close()
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if len(raw) > maxBodyBytes {
			return errors.New("request body is too large")
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		r.ContentLength = int64(len(raw))

		if len(bytes.TrimSpace(raw)) == 0 {
			return errors.New("request body is required")
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("invalid JSON body: %w", err)
		}
		if err := dto.Validate(&v); err != nil {
			return err
		}
		if extra != nil {
			return extra(&v)
		}
		return nil
	}
}
