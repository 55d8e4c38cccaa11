package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/neocities"
)

// Error types sent in the error_type field.
const (
	ErrorTypeInvalidAuth       = "invalid_auth"
	ErrorTypeNotFound          = "not_found"
	ErrorTypeSiteNotFound      = "site_not_found"
	ErrorTypeMissingFiles      = "missing_files"
	ErrorTypeInvalidFileType   = "invalid_file_type"
	ErrorTypeInvalidPath       = "invalid_path"
	ErrorTypeCannotDeleteIndex = "cannot_delete_index"
	ErrorTypeTooLarge          = "too_large"
	ErrorTypeServerError       = "server_error"
)

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errorType, message string) {
	if err := WriteJSON(w, code, neocities.ErrorResponse(errorType, message)); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, neocities.ErrInternal):
		slog.Error("internal error", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrorTypeServerError, "Internal server error")
		return
	case errors.Is(err, ErrUnauthorized), errors.Is(err, neocities.ErrUnauthorized):
		WriteError(w, http.StatusForbidden, ErrorTypeInvalidAuth,
			"Invalid API key or username/password, please check your credentials and try again.")
	case errors.Is(err, neocities.ErrCannotDeleteIndex):
		WriteError(w, http.StatusBadRequest, ErrorTypeCannotDeleteIndex, "index.html cannot be deleted")
	case errors.Is(err, neocities.ErrMissingFiles):
		WriteError(w, http.StatusBadRequest, ErrorTypeMissingFiles, err.Error())
	case errors.Is(err, neocities.ErrInvalidFileType):
		WriteError(w, http.StatusBadRequest, ErrorTypeInvalidFileType, err.Error())
	case errors.Is(err, neocities.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, ErrorTypeInvalidPath, err.Error())
	case errors.Is(err, neocities.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrorTypeNotFound, "not found")
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrorTypeServerError, "Internal server error")
		return
	}
	slog.Debug("request rejected", "error", err)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
