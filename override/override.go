// Package override loads per-item icon overrides from directories.
//
// A directory may contain, at any depth:
//
//   - icon images (*.png, *.webp) used verbatim as an item's icon; the key
//     is the path relative to the directory without the extension
//   - per-key *.json files
//   - an overrides.json object mapping keys to override objects
//
// Override objects accept:
//
//	{
//	  "priority": 10,
//	  "item_rotation": [0, 90, 0],
//	  "stage_rotation": [-80, 0, 0],
//	  "icon_path": "mymod/items/shovel"
//	}
//
// Only keys that contain a '/' are kept. When two directories define the
// same key the higher priority wins; ties go to the later directory.
// Keys are matched without regard to case.
package override

import (
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/cases"
)

// Entry is the override for one key.
type Entry struct {
	// Source names the directory the entry came from.
	Source string
	// Priority resolves conflicts between sources.
	Priority int
	// ItemRotation replaces the item's resting rotation (Euler degrees).
	ItemRotation *mgl64.Vec3
	// StageRotation replaces the computed display rotation (Euler degrees).
	StageRotation *mgl64.Vec3
	// Icon, when set, is used instead of rendering.
	Icon image.Image
}

// Set is a case-insensitive collection of overrides. It is safe for
// concurrent use.
type Set struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{entries: make(map[string]*Entry)}
}

// Fold normalizes a key for case-insensitive matching.
func Fold(key string) string {
	return cases.Fold().String(key)
}

// Lookup returns the override for key.
func (s *Set) Lookup(key string) (*Entry, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[Fold(key)]
	return e, ok
}

// Put stores e under key if the key is eligible and e does not lose to an
// existing entry with higher priority. It reports whether e was stored.
func (s *Set) Put(key string, e *Entry) bool {
	if !validKey(key) || e == nil {
		return false
	}
	k := Fold(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[k]; ok && old.Priority > e.Priority {
		return false
	}
	s.entries[k] = e
	return true
}

// Merge puts every entry of a directory listing.
func (s *Set) Merge(source string, entries map[string]*Entry) int {
	n := 0
	for key, e := range entries {
		if s.Put(key, e) {
			slogger().Debug("override: applied", "source", source, "key", key, "priority", e.Priority)
			n++
		}
	}
	return n
}

// Len returns the number of entries.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns the folded keys in no particular order.
func (s *Set) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

func validKey(key string) bool {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return true
		}
	}
	return false
}
