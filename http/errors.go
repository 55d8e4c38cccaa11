package http

import "errors"

// ErrUnauthorized is returned when a request carries no usable credentials.
var ErrUnauthorized = errors.New("unauthorized")
