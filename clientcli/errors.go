package clientcli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sagarc03/neocities"
)

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration and input validation.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrEmptyPath        = errors.New("path is required")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// APIError is returned for every failed remote call: a non-200 status, a
// transport failure, or an undecodable body. It always matches
// neocities.ErrAPI.
type APIError struct {
	StatusCode int    // 0 when no response was received
	ErrorType  string // error_type from the body, when present
	Message    string // message from the body, when present
	Body       string // raw response body
	Err        error  // transport or decode failure
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("api error: %v", e.Err)
	case e.ErrorType != "" || e.Message != "":
		return fmt.Sprintf("api error (%d %s): %s", e.StatusCode, e.ErrorType, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("api error (%d): %v", e.StatusCode, e.Err)
	case e.Body != "":
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches neocities.ErrAPI, and *APIError targets whose non-zero
// StatusCode and non-empty ErrorType both agree with e.
func (e *APIError) Is(target error) bool {
	if target == neocities.ErrAPI {
		return true
	}

	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	if t.StatusCode != 0 && t.StatusCode != e.StatusCode {
		return false
	}
	if t.ErrorType != "" && t.ErrorType != e.ErrorType {
		return false
	}
	return t.StatusCode != 0 || t.ErrorType != ""
}

// Sentinel API errors for use with errors.Is.
var (
	ErrInvalidAuth       = &APIError{ErrorType: "invalid_auth"}
	ErrSiteNotFound      = &APIError{ErrorType: "site_not_found"}
	ErrMissingFiles      = &APIError{ErrorType: "missing_files"}
	ErrCannotDeleteIndex = &APIError{ErrorType: "cannot_delete_index"}
	ErrInvalidFileType   = &APIError{ErrorType: "invalid_file_type"}
	ErrNotFound          = &APIError{StatusCode: http.StatusNotFound}
)
