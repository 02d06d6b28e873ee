package fit

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Fitter holds the image parameters the framing is solved against.
// A Fitter has no mutable state and may be shared.
type Fitter struct {
	// Resolution of the captured image in pixels.
	Resolution mgl64.Vec2
	// Margin is the transparent border in pixels, split across both sides.
	Margin mgl64.Vec2
	// Iterations of the perspective re-aim loop. Values below 1 mean 1.
	Iterations int
}

// NewFitter returns a Fitter for a square image of the given size and
// pixel margin.
func NewFitter(resolution, margin float64, iterations int) *Fitter {
	return &Fitter{
		Resolution: mgl64.Vec2{resolution, resolution},
		Margin:     mgl64.Vec2{margin, margin},
		Iterations: iterations,
	}
}

// DefaultFitter returns a Fitter for 256x256 images with a 32 pixel margin.
func DefaultFitter() *Fitter {
	return NewFitter(256, 32, 1)
}

// wrongState logs a skipped stage.
func wrongState(job *Job, stage string, want State) {
	slogger().Warn("fit: wrong state for job, skipping",
		"item", job.Label,
		"stage", stage,
		"expected", want.String(),
		"got", job.State.String())
}

// CenterOnPivot moves the vertex cloud so its bounding-box center is the
// origin and returns the applied position and the current rotation.
//
// The job must be in StateVertices. Otherwise the call is skipped and the
// zero vector and identity rotation are returned.
func (f *Fitter) CenterOnPivot(job *Job) (mgl64.Vec3, mgl64.Quat, error) {
	if job.State != StateVertices {
		wrongState(job, "CenterOnPivot", StateVertices)
		return mgl64.Vec3{}, mgl64.QuatIdent(), nil
	}
	if err := f.center(job); err != nil {
		return mgl64.Vec3{}, mgl64.QuatIdent(), err
	}
	return job.Position, job.Rotation, nil
}

func (f *Fitter) center(job *Job) error {
	b, ok := BoundsOf(job.Vertices)
	if !ok {
		return ErrNoRenders
	}
	job.Position = b.Center().Mul(-1)
	translate(job.Vertices, job.Position)
	job.State = StateCentered
	return nil
}

// FindOptimalRotation rotates the centered cloud to a display angle chosen
// from its bounds, re-centers it and returns the re-centering offset and
// the applied rotation.
//
// The job must be in StateCentered. Otherwise the call is skipped and the
// zero vector and identity rotation are returned.
func (f *Fitter) FindOptimalRotation(job *Job) (mgl64.Vec3, mgl64.Quat, error) {
	if job.State != StateCentered {
		wrongState(job, "FindOptimalRotation", StateCentered)
		return mgl64.Vec3{}, mgl64.QuatIdent(), nil
	}
	return f.rotate(job)
}

func (f *Fitter) rotate(job *Job) (mgl64.Vec3, mgl64.Quat, error) {
	var r mgl64.Quat
	if job.StageRotation != nil {
		r = Euler(*job.StageRotation)
	} else {
		b, ok := BoundsOf(job.Vertices)
		if !ok {
			return mgl64.Vec3{}, mgl64.QuatIdent(), ErrNoRenders
		}
		size := b.Size()
		if size == (mgl64.Vec3{}) {
			return mgl64.Vec3{}, mgl64.QuatIdent(), ErrNoBounds
		}
		r = OptimalRotation(job.Label, size)
	}

	job.Position = r.Rotate(job.Position)
	job.Rotation = r.Mul(job.Rotation)
	rotate(job.Vertices, r)

	b, _ := BoundsOf(job.Vertices)
	recenter := b.Center().Mul(-1)
	job.Position = job.Position.Add(recenter)
	translate(job.Vertices, recenter)

	job.State = StateRotated
	return recenter, r, nil
}

// OptimalRotation returns the display rotation for an object whose
// bounds have the given size. It depends only on size.
//
// Flat objects are tipped towards the camera; everything else gets a
// three-quarter view. Each step is applied after the previous one.
func OptimalRotation(label string, size mgl64.Vec3) mgl64.Quat {
	x, y, z := size.X(), size.Y(), size.Z()
	r := mgl64.QuatIdent()
	turn := func(deg float64, axis mgl64.Vec3, name string) {
		slogger().Debug("fit: rotated", "item", label, "axis", name, "degrees", deg)
		r = angleAxis(deg, axis).Mul(r)
	}

	if y < x/2 && y < z/2 {
		switch {
		case z < x*0.5:
			turn(-45, Up, "y")
		case z < x*0.85:
			turn(-90, Up, "y")
		case x < z*0.5:
			turn(-45, Up, "y")
		}
		turn(-80, Right, "x")
		turn(-15, Up, "y")
		return r
	}

	switch {
	case x < z*0.85:
		turn(-25, Right, "x")
		turn(-45, Up, "y")
	case abs(y-x)/x < 0.01 && x < z*0.85:
		turn(-25, Right, "x")
		turn(45, Up, "y")
	case abs(y-z)/z < 0.01 && z < x*0.85:
		turn(25, Forward, "z")
		turn(-45, Up, "y")
	case y < x/2 || x < y/2:
		turn(45, Forward, "z")
		turn(25, Up, "y")
	default:
		turn(-25, Right, "x")
	}
	return r
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
