package objmesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ParseError reports a malformed line of an OBJ file.
type ParseError struct {
	Name string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("objmesh: %s:%d: %v", e.Name, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads an OBJ file. The mesh is named after the file without its
// extension.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("objmesh: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(f, name)
}

// Parse reads vertex positions and faces from OBJ text. Polygons are split
// into triangle fans; texture coordinates, normals, groups and materials
// are ignored.
func Parse(r io.Reader, name string) (*Mesh, error) {
	m := &Mesh{Name: name}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			err = m.parseVertex(fields[1:])
		case "f":
			err = m.parseFace(fields[1:])
		}
		if err != nil {
			return nil, &ParseError{Name: name, Line: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("objmesh: read %s: %w", name, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, name)
	}
	return m, nil
}

func (m *Mesh) parseVertex(f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("vertex has %d coordinates, want 3", len(f))
	}
	var v mgl64.Vec3
	for i := 0; i < 3; i++ {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return fmt.Errorf("vertex coordinate %q: %w", f[i], err)
		}
		v[i] = x
	}
	m.Vertices = append(m.Vertices, v)
	return nil
}

func (m *Mesh) parseFace(f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("face has %d vertices, want at least 3", len(f))
	}
	idx := make([]int, len(f))
	for i, ref := range f {
		if j := strings.IndexByte(ref, '/'); j >= 0 {
			ref = ref[:j]
		}
		n, err := strconv.Atoi(ref)
		if err != nil {
			return fmt.Errorf("face index %q: %w", f[i], err)
		}
		// OBJ indices are 1-based; negative ones count back from the
		// last vertex read so far.
		switch {
		case n > 0:
			n--
		case n < 0:
			n += len(m.Vertices)
		default:
			return fmt.Errorf("face index 0")
		}
		if n < 0 || n >= len(m.Vertices) {
			return fmt.Errorf("face index %s out of range (%d vertices)", f[i], len(m.Vertices))
		}
		idx[i] = n
	}
	for i := 1; i+1 < len(idx); i++ {
		m.Faces = append(m.Faces, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return nil
}
