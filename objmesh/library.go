package objmesh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/iconstage"
	"github.com/gogpu/iconstage/capture/soft"
)

// ErrUnknownItem is returned for objects whose item has no mesh.
var ErrUnknownItem = errors.New("objmesh: no mesh for item")

// Library maps item keys to meshes. It implements iconstage.MeshSampler
// and soft.Model and is safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	meshes   map[string]*Mesh
	fallback *Mesh
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{meshes: make(map[string]*Mesh)}
}

// Add registers m for the item key. The mesh must not be modified
// afterwards.
func (l *Library) Add(key string, m *Mesh) error {
	if err := m.validate(); err != nil {
		return fmt.Errorf("%w: %s", err, key)
	}
	l.mu.Lock()
	l.meshes[key] = m
	l.mu.Unlock()
	return nil
}

// SetFallback sets the mesh used for items without their own. nil removes
// it.
func (l *Library) SetFallback(m *Mesh) {
	l.mu.Lock()
	l.fallback = m
	l.mu.Unlock()
}

// Len returns the number of registered meshes.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.meshes)
}

// Mesh returns the mesh drawn for obj.
func (l *Library) Mesh(obj iconstage.Object) (*Mesh, error) {
	key := obj.Item().Key
	l.mu.RLock()
	m, ok := l.meshes[key]
	if !ok {
		m = l.fallback
	}
	l.mu.RUnlock()
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, key)
	}
	return m, nil
}

// Sample implements iconstage.MeshSampler.
func (l *Library) Sample(obj iconstage.Object, pose mgl64.Mat4) ([]mgl64.Vec3, error) {
	m, err := l.Mesh(obj)
	if err != nil {
		return nil, err
	}
	out := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = mgl64.TransformCoordinate(v, pose)
	}
	return out, nil
}

// Triangles implements soft.Model.
func (l *Library) Triangles(obj iconstage.Object) ([]soft.Triangle, error) {
	m, err := l.Mesh(obj)
	if err != nil {
		return nil, err
	}
	tris := make([]soft.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = soft.Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
	}
	return tris, nil
}
