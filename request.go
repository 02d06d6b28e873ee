package iconstage

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gogpu/iconstage/fit"
	"github.com/gogpu/iconstage/override"
)

// Overrides looks up per-item overrides by item key.
// *override.Set implements it.
type Overrides interface {
	Lookup(key string) (*override.Entry, bool)
}

// Icon names that never count as a real icon.
var placeholderNames = map[string]bool{
	"ScrapItemIcon":  true,
	"ScrapItemIcon2": true,
}

// Request asks for one object's icon. It is immutable once created.
type Request struct {
	ID       uuid.UUID
	Object   Object
	Item     *Item
	Key      string
	Fallback *Icon
	// Override is nil when the item has none.
	Override *override.Entry
}

func newRequest(obj Object, fallback *Icon, overrides Overrides) *Request {
	item := obj.Item()
	r := &Request{
		ID:       uuid.New(),
		Object:   obj,
		Item:     item,
		Key:      item.Key,
		Fallback: fallback,
	}
	if overrides != nil {
		if e, ok := overrides.Lookup(item.Key); ok {
			r.Override = e
		}
	}
	return r
}

// overrideIcon returns the fixed replacement image, if any.
func (r *Request) overrideIcon() image.Image {
	if r.Override == nil {
		return nil
	}
	return r.Override.Icon
}

// hasIcon reports whether the item must not be rendered: it is filtered
// out, or it already shows a real icon.
func (r *Request) hasIcon(filter ListFilter, ph Placeholders) bool {
	if filter.Skips(r.Key) {
		return true
	}
	icon := r.Item.Icon()
	if icon == nil {
		return false
	}
	if ph.Loading != nil && icon.Name == ph.Loading.Name {
		return false
	}
	if placeholderNames[icon.Name] {
		return false
	}
	if img := r.overrideIcon(); img != nil && icon.Image != img {
		return false
	}
	return true
}

// eligible reports whether the request may still be rendered.
func (r *Request) eligible(filter ListFilter, ph Placeholders) bool {
	return r.Object.Alive() && !r.Object.Pocketed() && !r.hasIcon(filter, ph)
}

// samplePose returns the rotation the object is sampled with and the
// matching pose matrix.
func (r *Request) samplePose() (mgl64.Quat, mgl64.Mat4) {
	var rot mgl64.Quat
	if r.Override != nil && r.Override.ItemRotation != nil {
		rot = fit.Euler(r.Override.ItemRotation.Add(mgl64.Vec3{0, 90, 0}))
	} else {
		rest := r.Item.RestingRotation
		rot = fit.Euler(mgl64.Vec3{rest.X(), r.Item.FloorYOffset + 90, rest.Z()})
	}

	scale := mgl64.Vec3{1, 1, 1}
	if s, ok := r.Object.(Scaler); ok {
		scale = s.Scale()
	}
	return rot, rot.Mat4().Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// stageRotation returns the fixed display rotation, if any.
func (r *Request) stageRotation() *mgl64.Vec3 {
	if r.Override == nil {
		return nil
	}
	return r.Override.StageRotation
}
