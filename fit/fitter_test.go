package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

// box returns the eight corners of an axis-aligned box.
func box(min, max mgl64.Vec3) []mgl64.Vec3 {
	var pts []mgl64.Vec3
	for _, x := range []float64{min.X(), max.X()} {
		for _, y := range []float64{min.Y(), max.Y()} {
			for _, z := range []float64{min.Z(), max.Z()} {
				pts = append(pts, mgl64.Vec3{x, y, z})
			}
		}
	}
	return pts
}

// near compares vectors with an absolute tolerance. The mgl64 approximate
// comparisons turn relative near zero and reject rounding residue.
func near(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

func nearQuat(a, b mgl64.Quat, tol float64) bool {
	return math.Abs(a.W-b.W) <= tol && near(a.V, b.V, tol)
}

func unitCube() []mgl64.Vec3 {
	return box(mgl64.Vec3{-0.5, -0.5, -0.5}, mgl64.Vec3{0.5, 0.5, 0.5})
}

func noRotation() *mgl64.Vec3 {
	return &mgl64.Vec3{}
}

func TestCenterOnPivot(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/box", box(mgl64.Vec3{1, -2, 5}, mgl64.Vec3{3, 0, 7}), mgl64.QuatIdent(), DefaultCamera())

	pos, rot, err := f.CenterOnPivot(job)
	if err != nil {
		t.Fatalf("CenterOnPivot: %v", err)
	}
	want := mgl64.Vec3{-2, 1, -6}
	if !near(pos, want, eps) {
		t.Errorf("position = %v, want %v", pos, want)
	}
	if !nearQuat(rot, mgl64.QuatIdent(), eps) {
		t.Errorf("rotation = %v, want identity", rot)
	}
	if job.State != StateCentered {
		t.Errorf("state = %s, want Centered", job.State)
	}
	b, _ := BoundsOf(job.Vertices)
	if !near(b.Center(), mgl64.Vec3{}, eps) {
		t.Errorf("center after CenterOnPivot = %v, want origin", b.Center())
	}
}

func TestCenterOnPivotEmpty(t *testing.T) {
	f := DefaultFitter()
	job := &Job{Label: "test/empty", State: StateVertices}
	if _, _, err := f.CenterOnPivot(job); !errors.Is(err, ErrNoRenders) {
		t.Errorf("err = %v, want ErrNoRenders", err)
	}
	if job.State != StateVertices {
		t.Errorf("state = %s, want Vertices", job.State)
	}
}

func TestNewJobEmptyIsNone(t *testing.T) {
	job := NewJob("test/none", nil, mgl64.QuatIdent(), DefaultCamera())
	if job.State != StateNone {
		t.Errorf("state = %s, want None", job.State)
	}
}

func TestStagesTwiceAreSafe(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/twice", unitCube(), mgl64.QuatIdent(), DefaultCamera())

	if _, _, err := f.CenterOnPivot(job); err != nil {
		t.Fatal(err)
	}
	snapshot := append([]mgl64.Vec3(nil), job.Vertices...)
	pos, rot, err := f.CenterOnPivot(job)
	if err != nil {
		t.Fatal(err)
	}
	if pos != (mgl64.Vec3{}) || rot != mgl64.QuatIdent() {
		t.Errorf("second CenterOnPivot = (%v, %v), want neutral", pos, rot)
	}
	for i := range snapshot {
		if snapshot[i] != job.Vertices[i] {
			t.Fatalf("vertex %d changed on second call", i)
		}
	}

	if _, _, err := f.FindOptimalRotation(job); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.FindOptimalRotation(job); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.ComputeCameraFraming(job); err != nil {
		t.Fatal(err)
	}
	offset, fov, err := f.ComputeCameraFraming(job)
	if err != nil {
		t.Fatal(err)
	}
	if offset != (mgl64.Vec3{}) || fov != 0 {
		t.Errorf("second ComputeCameraFraming = (%v, %v), want neutral", offset, fov)
	}
	if job.State != StateCameraValues {
		t.Errorf("state = %s, want CameraValues", job.State)
	}
}

func TestFramingBeforeRotatedIsNoop(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/early", unitCube(), mgl64.QuatIdent(), DefaultCamera())
	if _, _, err := f.CenterOnPivot(job); err != nil {
		t.Fatal(err)
	}
	before := append([]mgl64.Vec3(nil), job.Vertices...)
	position := job.Position

	offset, fov, err := f.ComputeCameraFraming(job)
	if err != nil {
		t.Fatal(err)
	}
	if offset != (mgl64.Vec3{}) || fov != 0 {
		t.Errorf("got (%v, %v), want neutral result", offset, fov)
	}
	if job.Position != position {
		t.Errorf("position changed to %v", job.Position)
	}
	for i := range before {
		if before[i] != job.Vertices[i] {
			t.Fatalf("vertex %d mutated", i)
		}
	}
	if job.State != StateCentered {
		t.Errorf("state = %s, want Centered", job.State)
	}
}

func TestOptimalRotation(t *testing.T) {
	q := angleAxis
	tests := []struct {
		name string
		size mgl64.Vec3
		want mgl64.Quat
	}{
		{"cube", mgl64.Vec3{1, 1, 1}, q(-25, Right)},
		{"flat square", mgl64.Vec3{2, 0.1, 2}, q(-15, Up).Mul(q(-80, Right))},
		{"flat wide", mgl64.Vec3{4, 0.1, 1}, q(-15, Up).Mul(q(-80, Right)).Mul(q(-45, Up))},
		{"flat slightly wide", mgl64.Vec3{2, 0.1, 1.5}, q(-15, Up).Mul(q(-80, Right)).Mul(q(-90, Up))},
		{"flat deep", mgl64.Vec3{1, 0.1, 4}, q(-15, Up).Mul(q(-80, Right)).Mul(q(-45, Up))},
		{"deep", mgl64.Vec3{1, 1, 2}, q(-45, Up).Mul(q(-25, Right))},
		{"wide cube face", mgl64.Vec3{2, 1, 1}, q(-45, Up).Mul(q(25, Forward))},
		{"tall", mgl64.Vec3{1, 3, 1}, q(25, Up).Mul(q(45, Forward))},
		{"wide", mgl64.Vec3{3, 1.4, 2.8}, q(25, Up).Mul(q(45, Forward))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OptimalRotation("test", tt.size)
			if !nearQuat(got, tt.want, eps) {
				t.Errorf("OptimalRotation(%v) = %v, want %v", tt.size, got, tt.want)
			}
			again := OptimalRotation("test", tt.size)
			if got != again {
				t.Errorf("OptimalRotation not deterministic: %v vs %v", got, again)
			}
		})
	}
}

func TestFindOptimalRotationRecenters(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/rod", box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.2, 3, 0.4}), mgl64.QuatIdent(), DefaultCamera())
	if _, _, err := f.CenterOnPivot(job); err != nil {
		t.Fatal(err)
	}
	_, r, err := f.FindOptimalRotation(job)
	if err != nil {
		t.Fatal(err)
	}
	if !nearQuat(job.Rotation, r, eps) {
		t.Errorf("job rotation = %v, want %v", job.Rotation, r)
	}
	b, _ := BoundsOf(job.Vertices)
	if !near(b.Center(), mgl64.Vec3{}, 1e-9) {
		t.Errorf("center after rotation = %v, want origin", b.Center())
	}
	if job.State != StateRotated {
		t.Errorf("state = %s, want Rotated", job.State)
	}
}

func TestFindOptimalRotationOverride(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/override", box(mgl64.Vec3{-1, -0.1, -1}, mgl64.Vec3{1, 0.1, 1}), mgl64.QuatIdent(), DefaultCamera())
	job.StageRotation = &mgl64.Vec3{0, 90, 0}
	if _, _, err := f.CenterOnPivot(job); err != nil {
		t.Fatal(err)
	}
	_, r, err := f.FindOptimalRotation(job)
	if err != nil {
		t.Fatal(err)
	}
	if !nearQuat(r, Euler(mgl64.Vec3{0, 90, 0}), eps) {
		t.Errorf("rotation = %v, want Euler(0, 90, 0)", r)
	}
}

func TestFindOptimalRotationZeroSize(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/point", []mgl64.Vec3{{1, 1, 1}, {1, 1, 1}}, mgl64.QuatIdent(), DefaultCamera())
	if _, _, err := f.CenterOnPivot(job); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.FindOptimalRotation(job); !errors.Is(err, ErrNoBounds) {
		t.Errorf("err = %v, want ErrNoBounds", err)
	}
}

func TestEuler(t *testing.T) {
	got := Euler(mgl64.Vec3{0, 90, 0}).Rotate(Forward)
	if !near(got, Right, eps) {
		t.Errorf("Euler(0,90,0) * forward = %v, want %v", got, Right)
	}
	got = Euler(mgl64.Vec3{90, 0, 0}).Rotate(Up)
	if !near(got, Forward, eps) {
		t.Errorf("Euler(90,0,0) * up = %v, want %v", got, Forward)
	}
}

func TestComputeCameraFramingOrthographic(t *testing.T) {
	f := DefaultFitter()
	cam := DefaultCamera()
	cam.Orthographic = true
	job := NewJob("test/ortho", unitCube(), mgl64.QuatIdent(), cam)
	job.StageRotation = noRotation()

	fr, err := f.Run(job)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fr.Job() != job {
		t.Fatal("Run returned a different job")
	}
	wantOffset := mgl64.Vec3{0, 0, 3}
	if !near(job.CameraOffset, wantOffset, eps) {
		t.Errorf("camera offset = %v, want %v", job.CameraOffset, wantOffset)
	}
	scale := 1 / (1 - 32.0/256.0)
	if want := 0.5 * scale; math.Abs(job.CameraFOV-want) > eps {
		t.Errorf("ortho size = %v, want %v", job.CameraFOV, want)
	}
}

func TestComputeCameraFramingPerspective(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/persp", unitCube(), mgl64.QuatIdent(), DefaultCamera())
	job.StageRotation = noRotation()

	if _, err := f.Run(job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !nearQuat(job.CameraRotation, mgl64.QuatIdent(), 1e-9) {
		t.Errorf("camera rotation = %v, want identity for a symmetric object", job.CameraRotation)
	}
	scale := 1 / (1 - 32.0/256.0)
	half := math.Atan(0.5 / 2.5)
	want := mgl64.RadToDeg(2 * half * scale)
	if math.Abs(job.CameraFOV-want) > 1e-6 {
		t.Errorf("fov = %v, want %v", job.CameraFOV, want)
	}
	for i, v := range job.Vertices {
		if v.Z() <= 0 {
			t.Fatalf("vertex %d at %v is behind the camera", i, v)
		}
	}
}

func TestComputeCameraFramingDistance(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/long", box(mgl64.Vec3{-0.5, -0.5, -4}, mgl64.Vec3{0.5, 0.5, 4}), mgl64.QuatIdent(), DefaultCamera())
	job.StageRotation = noRotation()
	if _, err := f.Run(job); err != nil {
		t.Fatal(err)
	}
	if want := 0.1 + 8; math.Abs(job.CameraOffset.Z()-want) > eps {
		t.Errorf("camera distance = %v, want %v", job.CameraOffset.Z(), want)
	}
}

func TestPerspectiveOffCenterIsReaimed(t *testing.T) {
	f := NewFitter(256, 32, 2)
	pts := append(box(mgl64.Vec3{-0.5, -0.5, -0.5}, mgl64.Vec3{0.5, 0.5, 0.5}),
		mgl64.Vec3{1.5, 0.2, 0.3})
	job := NewJob("test/aim", pts, mgl64.QuatIdent(), DefaultCamera())
	job.StageRotation = noRotation()
	if _, err := f.Run(job); err != nil {
		t.Fatal(err)
	}
	if nearQuat(job.CameraRotation, mgl64.QuatIdent(), 1e-6) {
		t.Error("camera rotation stayed identity for an asymmetric object")
	}
	if job.CameraFOV <= 0 || job.CameraFOV >= 180 {
		t.Errorf("fov = %v, want within (0, 180)", job.CameraFOV)
	}
}

func TestTypedPipelineRejectsStaleHandles(t *testing.T) {
	f := DefaultFitter()
	job := NewJob("test/typed", unitCube(), mgl64.QuatIdent(), DefaultCamera())

	s, err := f.Begin(job)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Center(s); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Center(s); !errors.Is(err, ErrStaleStage) {
		t.Errorf("reusing Sampled: err = %v, want ErrStaleStage", err)
	}
	if _, err := f.Begin(NewJob("test/none", nil, mgl64.QuatIdent(), DefaultCamera())); !errors.Is(err, ErrNoRenders) {
		t.Errorf("Begin on empty job: err = %v, want ErrNoRenders", err)
	}
	if _, err := f.Frame(Rotated{}); !errors.Is(err, ErrStaleStage) {
		t.Errorf("Frame on zero handle: err = %v, want ErrStaleStage", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateNone, "None"},
		{StateVertices, "Vertices"},
		{StateCentered, "Centered"},
		{StateRotated, "Rotated"},
		{StateCameraValues, "CameraValues"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
