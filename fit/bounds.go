package fit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max mgl64.Vec3
}

// BoundsOf returns the bounds of the points. ok is false for an empty slice.
func BoundsOf(points []mgl64.Vec3) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b.Min = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	b.Max = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for i := 0; i < 3; i++ {
			b.Min[i] = math.Min(b.Min[i], p[i])
			b.Max[i] = math.Max(b.Max[i], p[i])
		}
	}
	return b, true
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Extents returns half the size.
func (b Bounds) Extents() mgl64.Vec3 {
	return b.Size().Mul(0.5)
}

// translate adds offset to every point in place.
func translate(points []mgl64.Vec3, offset mgl64.Vec3) {
	for i := range points {
		points[i] = points[i].Add(offset)
	}
}

// rotate applies q to every point in place.
func rotate(points []mgl64.Vec3, q mgl64.Quat) {
	for i := range points {
		points[i] = q.Rotate(points[i])
	}
}
