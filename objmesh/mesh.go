// Package objmesh loads triangle meshes from Wavefront OBJ files and
// builds simple primitive shapes. A Library serves them to a stage as a
// mesh sampler and to the soft host as a model.
package objmesh

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/iconstage/fit"
)

// ErrEmptyMesh is returned for meshes without triangles.
var ErrEmptyMesh = errors.New("objmesh: mesh has no triangles")

// Mesh is an indexed triangle mesh in local space.
type Mesh struct {
	Name     string
	Vertices []mgl64.Vec3
	Faces    [][3]int
}

// Bounds returns the bounding box of the vertices.
func (m *Mesh) Bounds() (fit.Bounds, bool) {
	return fit.BoundsOf(m.Vertices)
}

// Transform applies t to every vertex in place.
func (m *Mesh) Transform(t mgl64.Mat4) {
	for i, v := range m.Vertices {
		m.Vertices[i] = mgl64.TransformCoordinate(v, t)
	}
}

// Normalize centers the mesh and scales its largest side to size.
func (m *Mesh) Normalize(size float64) {
	b, ok := m.Bounds()
	if !ok {
		return
	}
	s := b.Size()
	longest := max(s.X(), s.Y(), s.Z())
	if longest == 0 {
		return
	}
	k := size / longest
	c := b.Center()
	m.Transform(mgl64.Scale3D(k, k, k).Mul4(mgl64.Translate3D(-c.X(), -c.Y(), -c.Z())))
}

func (m *Mesh) validate() error {
	if len(m.Faces) == 0 {
		return ErrEmptyMesh
	}
	return nil
}
