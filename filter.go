package iconstage

import (
	"fmt"
	"strings"
)

// ListMode selects how a ListFilter treats listed items.
type ListMode uint8

const (
	// ListNone renders every item.
	ListNone ListMode = iota
	// ListBlack skips listed items.
	ListBlack
	// ListWhite renders only listed items.
	ListWhite
)

// String returns the configuration name of the mode.
func (m ListMode) String() string {
	switch m {
	case ListNone:
		return "none"
	case ListBlack:
		return "blacklist"
	case ListWhite:
		return "whitelist"
	default:
		return fmt.Sprintf("ListMode(%d)", m)
	}
}

// ParseListMode parses "none", "blacklist" or "whitelist" in any case.
func ParseListMode(s string) (ListMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return ListNone, nil
	case "blacklist", "black":
		return ListBlack, nil
	case "whitelist", "white":
		return ListWhite, nil
	}
	return ListNone, fmt.Errorf("iconstage: unknown list mode %q", s)
}

// ListFilter is an allow or deny list of item keys.
type ListFilter struct {
	Mode ListMode
	keys map[string]struct{}
}

// NewListFilter returns a filter over keys, compared case-insensitively.
func NewListFilter(mode ListMode, keys ...string) ListFilter {
	f := ListFilter{Mode: mode, keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			f.keys[foldKey(k)] = struct{}{}
		}
	}
	return f
}

// ParseItemList splits a comma separated list of item keys.
func ParseItemList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Contains reports whether key is listed.
func (f ListFilter) Contains(key string) bool {
	_, ok := f.keys[foldKey(key)]
	return ok
}

// Skips reports whether the item must not be rendered.
func (f ListFilter) Skips(key string) bool {
	switch f.Mode {
	case ListBlack:
		return f.Contains(key)
	case ListWhite:
		return !f.Contains(key)
	}
	return false
}
