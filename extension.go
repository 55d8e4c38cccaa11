package neocities

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
)

var validExtensions = map[string]struct{}{
	".html": {}, ".htm": {}, ".txt": {}, ".text": {}, ".css": {}, ".js": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {}, ".md": {},
	".markdown": {}, ".eot": {}, ".ttf": {}, ".woff": {}, ".woff2": {},
	".json": {}, ".geojson": {}, ".csv": {}, ".tsv": {}, ".mf": {}, ".ico": {},
	".pdf": {}, ".asc": {}, ".key": {}, ".pgp": {}, ".xml": {}, ".mid": {},
	".midi": {}, ".manifest": {}, ".otf": {}, ".webapp": {}, ".less": {},
	".sass": {}, ".rss": {}, ".kml": {}, ".dae": {}, ".obj": {}, ".mtl": {},
	".scss": {}, ".webp": {}, ".xcf": {}, ".epub": {}, ".gltf": {}, ".bin": {},
	".webmanifest": {}, ".knowl": {}, ".atom": {}, ".opml": {}, ".rdf": {},
}

// Extension returns the extension of the base name of name, including the
// leading dot. A name without a dot, or ending in one, has no extension.
//
//	Extension("file.tar.gz") == ".gz"
//	Extension(".txt")        == ".txt"
//	Extension("file.")       == ""
//	Extension("dir/")        == ""
//	Extension("a/b.c/")      == ".c"
func Extension(name string) string {
	name = path.Base(filepath.ToSlash(name))

	i := strings.LastIndexByte(name, '.')
	if i < 0 || i >= len(name)-1 {
		return ""
	}
	return name[i:]
}

// IsValidExtension reports whether name carries an extension the hosting
// service accepts. Matching is case-sensitive.
func IsValidExtension(name string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	_, ok := validExtensions[ext]
	return ok
}

// ValidExtensions returns the accepted extensions in sorted order.
func ValidExtensions() []string {
	exts := make([]string, 0, len(validExtensions))
	for ext := range validExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
