package iconstage

import (
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Icon is an image shown for an item.
type Icon struct {
	Name  string
	Image image.Image
}

// Item is the logical identity that icons are computed for. Many objects
// share one Item; at most one render per Item is in flight at a time.
type Item struct {
	// Name is the display name.
	Name string
	// Key is the category path, see [ItemKey].
	Key string
	// RestingRotation is the Euler rotation, in degrees, the item lies at.
	RestingRotation mgl64.Vec3
	// FloorYOffset is the yaw, in degrees, the item is dropped with.
	FloorYOffset float64

	mu   sync.RWMutex
	icon *Icon
}

// NewItem returns an item without an icon.
func NewItem(name, key string) *Item {
	return &Item{Name: name, Key: key}
}

// Icon returns the current icon, nil if there is none.
func (it *Item) Icon() *Icon {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.icon
}

// SetIcon replaces the current icon.
func (it *Item) SetIcon(icon *Icon) {
	it.mu.Lock()
	it.icon = icon
	it.mu.Unlock()
}

// Object is one instance of an Item in the host scene.
//
// The compute worker calls every method, and Scale when the object is a
// Scaler, from its own goroutine while the frame loop keeps running.
// Implementations must be safe for that concurrent use.
type Object interface {
	// ID is stable for the lifetime of the instance.
	ID() uint64
	Item() *Item
	// Alive is false once the instance is destroyed.
	Alive() bool
	// Pocketed is true while the instance is held out of sight.
	Pocketed() bool
}

// Scaler is implemented by objects with a non-unit scale.
type Scaler interface {
	Scale() mgl64.Vec3
}
