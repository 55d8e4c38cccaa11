package neocities

import (
	_ "embed"
)

// IndexFile is the only file a site can never delete.
const IndexFile = "index.html"

// DefaultIndexHTML is the page a new or wiped site starts with.
//
//go:embed index.html
var DefaultIndexHTML []byte
