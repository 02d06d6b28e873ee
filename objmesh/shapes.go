package objmesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box returns an axis-aligned box centered on the origin.
func Box(name string, size mgl64.Vec3) *Mesh {
	h := size.Mul(0.5)
	m := &Mesh{Name: name}
	for i := 0; i < 8; i++ {
		v := mgl64.Vec3{-h.X(), -h.Y(), -h.Z()}
		if i&1 != 0 {
			v[0] = h.X()
		}
		if i&2 != 0 {
			v[1] = h.Y()
		}
		if i&4 != 0 {
			v[2] = h.Z()
		}
		m.Vertices = append(m.Vertices, v)
	}
	quads := [6][4]int{
		{0, 2, 3, 1}, {4, 5, 7, 6}, // -z, +z
		{0, 1, 5, 4}, {2, 6, 7, 3}, // -y, +y
		{0, 4, 6, 2}, {1, 3, 7, 5}, // -x, +x
	}
	for _, q := range quads {
		m.Faces = append(m.Faces, [3]int{q[0], q[1], q[2]}, [3]int{q[0], q[2], q[3]})
	}
	return m
}

// Cylinder returns a capped cylinder along Y with the given segment count.
func Cylinder(name string, radius, height float64, segments int) *Mesh {
	segments = max(segments, 3)
	m := &Mesh{Name: name}
	h := height / 2
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		x, z := radius*math.Cos(a), radius*math.Sin(a)
		m.Vertices = append(m.Vertices, mgl64.Vec3{x, -h, z}, mgl64.Vec3{x, h, z})
	}
	bottom, top := len(m.Vertices), len(m.Vertices)+1
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, -h, 0}, mgl64.Vec3{0, h, 0})
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b0, t0, b1, t1 := 2*i, 2*i+1, 2*j, 2*j+1
		m.Faces = append(m.Faces,
			[3]int{b0, t0, t1}, [3]int{b0, t1, b1},
			[3]int{bottom, b1, b0}, [3]int{top, t0, t1})
	}
	return m
}

// Sphere returns a UV sphere.
func Sphere(name string, radius float64, rings, segments int) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)
	m := &Mesh{Name: name}
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		y, rr := radius*math.Cos(phi), radius*math.Sin(phi)
		for s := 0; s < segments; s++ {
			th := 2 * math.Pi * float64(s) / float64(segments)
			m.Vertices = append(m.Vertices, mgl64.Vec3{rr * math.Cos(th), y, rr * math.Sin(th)})
		}
	}
	at := func(r, s int) int { return r*segments + s%segments }
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a, b, c, d := at(r, s), at(r, s+1), at(r+1, s), at(r+1, s+1)
			if r > 0 {
				m.Faces = append(m.Faces, [3]int{a, c, b})
			}
			if r < rings-1 {
				m.Faces = append(m.Faces, [3]int{b, c, d})
			}
		}
	}
	return m
}

// Shape builds one of the named primitives: box, plate, rod or ball.
func Shape(kind string) (*Mesh, error) {
	switch kind {
	case "box":
		return Box(kind, mgl64.Vec3{1, 1, 1}), nil
	case "plate":
		return Box(kind, mgl64.Vec3{1.2, 0.1, 0.8}), nil
	case "rod":
		return Cylinder(kind, 0.08, 1.5, 16), nil
	case "ball":
		return Sphere(kind, 0.5, 12, 24), nil
	}
	return nil, fmt.Errorf("objmesh: unknown shape %q", kind)
}
