// Package routepath normalizes the fragment paths served by the router.
package routepath

import (
	"net/url"
	"strings"
)

// Separator splits a path into segments.
const Separator = "/"

// Normalize strips exactly one leading "#" and then exactly one leading "/".
//
//	"#/api/docs" → "api/docs"
//	"#api"       → "api"
//	"//x"        → "/x"
//	""           → ""
func Normalize(path string) string {
	path = strings.TrimPrefix(path, "#")
	return strings.TrimPrefix(path, "/")
}

// Split splits a normalized path into segments. The empty path yields a
// single empty segment, so "" and "/" patterns compare against it cleanly.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// FromURL returns the normalized fragment of a full URL.
// Inputs without a fragment yield "".
func FromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.RawFragment != "" {
		return Normalize(u.RawFragment), nil
	}
	return Normalize(u.Fragment), nil
}

// Join builds a hash for navigation from path segments: Join("api", "docs")
// returns "#/api/docs".
func Join(segments ...string) string {
	return "#/" + strings.Join(segments, Separator)
}
