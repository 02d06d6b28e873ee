package fit

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// Sentinel errors returned by the fitting stages.
var (
	// ErrNoRenders is returned when the vertex cloud is empty.
	ErrNoRenders = errors.New("fit: object has no renders")

	// ErrNoBounds is returned when the vertex cloud has zero extent.
	ErrNoBounds = errors.New("fit: object has no bounds")

	// ErrStaleStage is returned by the typed pipeline when a handle is
	// used after its job already moved on.
	ErrStaleStage = errors.New("fit: stage handle is stale")
)

// Axes of the stage.
var (
	Right   = mgl64.Vec3{1, 0, 0}
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
	Down    = mgl64.Vec3{0, -1, 0}
)

// Camera describes the projection the framing is solved for.
type Camera struct {
	// Orthographic selects an orthographic size instead of a field of view.
	Orthographic bool
	// Aspect is width divided by height.
	Aspect float64
	// NearClip is the distance of the near plane.
	NearClip float64
}

// DefaultCamera returns a square perspective camera with a 0.1 near plane.
func DefaultCamera() Camera {
	return Camera{Aspect: 1, NearClip: 0.1}
}

// Job is the mutable fitting record of one request.
//
// A Job is owned by exactly one goroutine at a time; it is handed between
// goroutines through queues and never shared.
type Job struct {
	// Label identifies the job in log output.
	Label string

	State State

	// Vertices is updated in place by every stage.
	Vertices []mgl64.Vec3

	// Position is the offset applied to the object's pivot.
	Position mgl64.Vec3
	// Rotation is the object rotation, starting at the sample pose.
	Rotation mgl64.Quat

	// CameraOffset is where the object pivot sits relative to the camera.
	CameraOffset mgl64.Vec3
	// CameraFOV is the vertical field of view in degrees, or the
	// orthographic half-height.
	CameraFOV float64
	// CameraRotation is the perspective camera orientation.
	CameraRotation mgl64.Quat

	// StageRotation replaces the rotation heuristic with fixed Euler
	// angles in degrees.
	StageRotation *mgl64.Vec3

	Camera Camera
}

// NewJob returns a job in StateVertices when vertices is non-empty and in
// StateNone otherwise. rotation is the pose the vertices were sampled with.
func NewJob(label string, vertices []mgl64.Vec3, rotation mgl64.Quat, camera Camera) *Job {
	state := StateVertices
	if len(vertices) == 0 {
		state = StateNone
	}
	return &Job{
		Label:          label,
		State:          state,
		Vertices:       vertices,
		Rotation:       rotation,
		CameraRotation: mgl64.QuatIdent(),
		Camera:         camera,
	}
}

// Euler converts Euler angles in degrees to a rotation applied around Z,
// then X, then Y.
func Euler(degrees mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(degrees.X()), Right)
	qy := mgl64.QuatRotate(mgl64.DegToRad(degrees.Y()), Up)
	qz := mgl64.QuatRotate(mgl64.DegToRad(degrees.Z()), Forward)
	return qy.Mul(qx).Mul(qz)
}

// angleAxis returns a rotation of deg degrees around axis.
func angleAxis(deg float64, axis mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), axis)
}
