package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mycloudbox/mycloudbox/internal/service"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error  string                 `json:"error"`
	Result *service.CascadeResult `json:"result,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a single JSON object from a size limited body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("request body is required")
	}
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

// handleServiceError maps service errors to status codes. Messages of
// unexpected errors are logged, never returned.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var cascadeErr *service.CascadeError
	if errors.As(err, &cascadeErr) {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrStorageDeleteFailed) {
			status = http.StatusBadGateway
		}
		slog.Warn("folder delete incomplete", "error", err, "path", r.URL.Path)
		writeJSON(w, status, errorResponse{
			Error:  "some files could not be deleted, the folder was kept",
			Result: cascadeErr.Result,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, "email already exists")
	case errors.Is(err, service.ErrUploadFailed):
		writeError(w, http.StatusBadGateway, "upload failed")
	case errors.Is(err, service.ErrStorageDeleteFailed):
		writeError(w, http.StatusBadGateway, "storage delete failed")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
