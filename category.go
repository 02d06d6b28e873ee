package iconstage

import (
	"strings"

	"golang.org/x/text/cases"
)

// Well-known key segments.
const (
	UnknownAPI = "Unknown"
	VanillaMod = "Vanilla"
)

// invalidKeyRunes cannot appear in a key segment; they are not portable in
// file names and the dump writes one file per key.
const invalidKeyRunes = `<>:"/\|?*`

// ItemKey builds the category path api/mod/name used to identify an item
// in overrides, list filters and dumps. Empty api and mod become
// [UnknownAPI] and [VanillaMod].
func ItemKey(api, mod, name string) string {
	if api == "" {
		api = UnknownAPI
	}
	if mod == "" {
		mod = VanillaMod
	}
	return sanitizeSegment(api) + "/" + sanitizeSegment(mod) + "/" + sanitizeSegment(name)
}

// sanitizeSegment replaces characters that are not valid in a path
// element with '_' and trims trailing dots.
func sanitizeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(invalidKeyRunes, r) {
			return '_'
		}
		return r
	}, s)
	s = strings.TrimRight(s, ".")
	if s == "" {
		return "_"
	}
	return s
}

// foldKey normalizes a key for case-insensitive comparison.
func foldKey(key string) string {
	return cases.Fold().String(key)
}
