package keybackend

import "errors"

// ErrAccountNotFound is returned when no seed account has the sitename.
var ErrAccountNotFound = errors.New("seed account not found")
