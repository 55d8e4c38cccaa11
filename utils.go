package neocities

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidPath reports whether p is usable as a file path inside a site.
// A valid path:
//   - is relative and non-empty, with no empty, "." or ".." segments
//   - does not contain the characters \ ? # ~
//   - is valid UTF-8 without control characters or whitespace
func IsValidPath(p string) bool {
	if p == "" || !utf8.ValidString(p) {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) || strings.Contains(p, "..") {
		return false
	}

	for seg := range strings.SplitSeq(p, "/") {
		if seg == "" || seg == "." {
			return false
		}
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

var sitenameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// IsValidSitename reports whether name can be used as a sitename, which is
// also the site's subdomain and basic auth username.
func IsValidSitename(name string) bool {
	return sitenameRegex.MatchString(name)
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}
