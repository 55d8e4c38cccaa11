package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/neocities"
	nchttp "github.com/sagarc03/neocities/http"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
	}{
		{"unauthorized", nchttp.ErrUnauthorized, http.StatusForbidden, "invalid_auth"},
		{"bad credentials", neocities.ErrUnauthorized, http.StatusForbidden, "invalid_auth"},
		{"cannot delete index", neocities.ErrCannotDeleteIndex, http.StatusBadRequest, "cannot_delete_index"},
		{"missing files", neocities.ErrMissingFiles, http.StatusBadRequest, "missing_files"},
		{"invalid file type", neocities.ErrInvalidFileType, http.StatusBadRequest, "invalid_file_type"},
		{"invalid input", neocities.ErrInvalidInput, http.StatusBadRequest, "invalid_path"},
		{"not found", neocities.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped", fmt.Errorf("delete x: %w", neocities.ErrMissingFiles), http.StatusBadRequest, "missing_files"},
		{"joined", errors.Join(errors.New("context"), neocities.ErrNotFound), http.StatusNotFound, "not_found"},
		{"internal", errors.New("some unexpected error"), http.StatusInternalServerError, "server_error"},
		{"storage failure", fmt.Errorf("upload a.html: %w: %w", neocities.ErrInternal, neocities.ErrNotFound), http.StatusInternalServerError, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			nchttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), `"result":"error"`)
			assert.Contains(t, rec.Body.String(), `"error_type":"`+tt.wantError+`"`)
		})
	}
}

func TestHandleError_InternalHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	nchttp.HandleError(rec, errors.New("open /var/secret: permission denied"))

	assert.NotContains(t, rec.Body.String(), "/var/secret")
}

func TestWriteError_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	nchttp.WriteError(rec, http.StatusBadRequest, "bad_request", "Invalid request")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"result":"error","error_type":"bad_request","message":"Invalid request"}`, rec.Body.String())
}

func TestWriteJSON_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	err := nchttp.WriteJSON(rec, http.StatusOK, map[string]string{"key": "value"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"key":"value"`)
}

func TestWriteJSON_EncodingError(t *testing.T) {
	rec := httptest.NewRecorder()

	err := nchttp.WriteJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Error(t, err)
}
