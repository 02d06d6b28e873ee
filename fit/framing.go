package fit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minCameraDistance is the closest the object pivot is placed to the camera.
const minCameraDistance = 3.0

// ComputeCameraFraming places the rotated cloud in front of the camera and
// solves the field of view (degrees) or orthographic size that fits it into
// the image minus the margin. It returns the camera offset and that value.
//
// The job must be in StateRotated. Otherwise the call is skipped and the
// zero vector and 0 are returned.
func (f *Fitter) ComputeCameraFraming(job *Job) (mgl64.Vec3, float64, error) {
	if job.State != StateRotated {
		wrongState(job, "ComputeCameraFraming", StateRotated)
		return mgl64.Vec3{}, 0, nil
	}
	if err := f.frame(job); err != nil {
		return mgl64.Vec3{}, 0, err
	}
	return job.CameraOffset, job.CameraFOV, nil
}

func (f *Fitter) frame(job *Job) error {
	b, ok := BoundsOf(job.Vertices)
	if !ok {
		return ErrNoRenders
	}

	distance := math.Max(job.Camera.NearClip+b.Size().Z(), minCameraDistance)
	job.CameraOffset = b.Center().Mul(-1).Add(Forward.Mul(distance))
	translate(job.Vertices, job.CameraOffset)

	scale := f.fovScale()
	aspect := job.Camera.Aspect
	if aspect <= 0 {
		aspect = 1
	}

	if job.Camera.Orthographic {
		ext := b.Extents()
		job.CameraFOV = math.Max(ext.X()*scale.X()*aspect, ext.Y()*scale.Y())
		job.State = StateCameraValues
		return nil
	}

	rotation := mgl64.QuatIdent()
	iterations := max(f.Iterations, 1)
	for i := 0; i < iterations; i++ {
		minY, maxY := cameraAngles(rotation.Rotate(Forward), rotation.Rotate(Right), job.Vertices)
		rotation = mgl64.QuatRotate((minY+maxY)/2, Up).Mul(rotation)

		minX, maxX := cameraAngles(rotation.Rotate(Forward), rotation.Rotate(Down), job.Vertices)
		rotation = rotation.Mul(mgl64.QuatRotate((minX+maxX)/2, Right))
	}
	job.CameraRotation = rotation

	forward := rotation.Rotate(Forward)
	minY, maxY := cameraAngles(forward, rotation.Rotate(Right), job.Vertices)
	minX, maxX := cameraAngles(forward, rotation.Rotate(Down), job.Vertices)

	fovX := math.Max(-minX, maxX) * 2 * scale.Y()
	fovY := horizontalToVertical(math.Max(-minY, maxY)*2, aspect) * scale.X()
	job.CameraFOV = mgl64.RadToDeg(math.Max(fovX, fovY))

	job.State = StateCameraValues
	return nil
}

// fovScale widens the view so Margin pixels stay empty.
func (f *Fitter) fovScale() mgl64.Vec2 {
	var s mgl64.Vec2
	for i := 0; i < 2; i++ {
		frac := 0.0
		if f.Resolution[i] > 0 {
			frac = f.Margin[i] / f.Resolution[i]
		}
		s[i] = 1 / (1 - frac)
	}
	return s
}

// cameraAngles returns the smallest and largest angle, in radians, between
// forward and the points as seen along direction.
func cameraAngles(forward, direction mgl64.Vec3, points []mgl64.Vec3) (lo, hi float64) {
	tmin, tmax := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		t := p.Dot(direction) / p.Dot(forward)
		tmin = math.Min(t, tmin)
		tmax = math.Max(t, tmax)
	}
	return math.Atan(tmin), math.Atan(tmax)
}

func horizontalToVertical(fov, aspect float64) float64 {
	return 2 * math.Atan(math.Tan(fov*0.5)/aspect)
}
