package neocities

import "errors"

// Client-side error taxonomy.
var (
	// ErrCredentialsRequired is returned when neither an API key nor a
	// username/password pair can be resolved.
	ErrCredentialsRequired = errors.New("api key or username and password are required")
	// ErrAPI is matched by every error produced by a remote call.
	ErrAPI = errors.New("api error")
	// ErrInvalidArgument is returned for caller precondition violations.
	ErrInvalidArgument = errors.New("invalid argument")
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal wraps storage failures that are not the caller's fault
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSiteExists is returned when creating a site whose name is taken
	ErrSiteExists = errors.New("site already exists")
	// ErrInvalidFileType is returned when an upload uses a disallowed extension
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrMissingFiles is returned when a request names no files or unknown files
	ErrMissingFiles = errors.New("missing files")
	// ErrCannotDeleteIndex is returned when a delete names index.html
	ErrCannotDeleteIndex = errors.New("cannot delete index.html")
)
