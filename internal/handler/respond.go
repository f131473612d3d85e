package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fitspace/avatar-service/internal/auth"
	"github.com/fitspace/avatar-service/internal/models"
	"github.com/fitspace/avatar-service/internal/normalize"
	"github.com/fitspace/avatar-service/internal/storage"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeDomainError maps service and storage errors onto HTTP responses.
// Unrecognized errors collapse to a generic 500 so driver internals never
// reach the client.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *normalize.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_error", verr.Message)
	case errors.Is(err, auth.ErrInvalidAPIKey):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, storage.ErrAvatarNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Avatar not found.")
	case errors.Is(err, storage.ErrDuplicateName):
		writeError(w, http.StatusConflict, "duplicate_name", "An avatar with this name already exists.")
	case errors.Is(err, storage.ErrQuotaExceeded):
		writeError(w, http.StatusConflict, "quota_exceeded",
			fmt.Sprintf("Avatar limit of %d reached.", models.MaxAvatarsPerUser))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred.")
	}
}

// decodeBody decodes a JSON object body. An empty body is treated as an
// empty object so that all-default payloads work.
func decodeBody(r *http.Request) (map[string]any, error) {
	payload := map[string]any{}
	if r.Body == nil {
		return payload, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, normalize.Errorf("Request body must be a JSON object.")
	}
	return payload, nil
}
