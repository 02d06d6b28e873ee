package objmesh

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const quadOBJ = `# a unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1 4/1/1
`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(m.Vertices))
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}}
	if len(m.Faces) != len(want) {
		t.Fatalf("faces = %v, want %v", m.Faces, want)
	}
	for i := range want {
		if m.Faces[i] != want[i] {
			t.Errorf("face %d = %v, want %v", i, m.Faces[i], want[i])
		}
	}
}

func TestParseNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := Parse(strings.NewReader(src), "neg")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want [0 1 2]", m.Faces[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"short vertex", "v 1 2\n", 1},
		{"bad coordinate", "v 1 x 2\n", 1},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", 4},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 a 3\n", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), "bad")
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader("v 0 0 0\n# nothing else\n"), "empty")
	if !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("err = %v, want ErrEmptyMesh", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Crate.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "Crate" {
		t.Errorf("Name = %q, want Crate", m.Name)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestShapes(t *testing.T) {
	for _, kind := range []string{"box", "plate", "rod", "ball"} {
		t.Run(kind, func(t *testing.T) {
			m, err := Shape(kind)
			if err != nil {
				t.Fatalf("Shape: %v", err)
			}
			if err := m.validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}
			for i, f := range m.Faces {
				for _, v := range f {
					if v < 0 || v >= len(m.Vertices) {
						t.Fatalf("face %d index %d out of range", i, v)
					}
				}
			}
			b, _ := m.Bounds()
			c := b.Center()
			if c.Len() > 1e-9 {
				t.Errorf("center = %v, want origin", c)
			}
		})
	}
	if _, err := Shape("cone"); err == nil {
		t.Error("Shape(cone) succeeded")
	}
}

func TestNormalize(t *testing.T) {
	m := Box("b", mgl64.Vec3{4, 2, 1})
	m.Transform(mgl64.Translate3D(3, 3, 3))
	m.Normalize(1)
	b, _ := m.Bounds()
	s := b.Size()
	if math.Abs(s.X()-1) > 1e-9 || math.Abs(s.Y()-0.5) > 1e-9 {
		t.Errorf("size = %v, want [1 0.5 0.25]", s)
	}
	if b.Center().Len() > 1e-9 {
		t.Errorf("center = %v, want origin", b.Center())
	}
}
