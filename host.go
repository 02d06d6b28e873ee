package iconstage

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MeshSampler returns the world-space vertices of an object drawn with the
// given pose. Sample is called from the compute worker goroutine and must
// be safe to call concurrently with the frame loop.
type MeshSampler interface {
	Sample(obj Object, pose mgl64.Mat4) ([]mgl64.Vec3, error)
}

// MeshSamplerFunc adapts a function to MeshSampler.
type MeshSamplerFunc func(obj Object, pose mgl64.Mat4) ([]mgl64.Vec3, error)

// Sample calls f.
func (f MeshSamplerFunc) Sample(obj Object, pose mgl64.Mat4) ([]mgl64.Vec3, error) {
	return f(obj, pose)
}

// Framing is everything the host needs to stage and shoot one object.
//
// A point p of the object (in its local space, scaled) ends up in camera
// space at CameraRotation⁻¹ · (Rotation·p + Position + CameraOffset),
// with the camera at the origin looking along +Z.
type Framing struct {
	Key string

	Position mgl64.Vec3
	Rotation mgl64.Quat

	CameraOffset   mgl64.Vec3
	CameraRotation mgl64.Quat
	// FOV is the vertical field of view in degrees, or the orthographic
	// half-height when Orthographic is set.
	FOV          float64
	Orthographic bool
	Near, Far    float64
	Resolution   int
}

// Camera is the host camera reserved for icon shots.
type Camera interface {
	// Aim configures and enables the camera for the next frame.
	Aim(f Framing)
	// Disable stops the camera from rendering.
	Disable()
}

// Scene stages objects in front of the camera.
type Scene interface {
	// Place moves obj onto the stage. The returned func restores it.
	// Place fails with ErrStageOccupied while another object is staged.
	Place(obj Object, f Framing) (restore func(), err error)
	// IsolateLights limits lighting to the stage. The returned func
	// undoes it.
	IsolateLights(obj Object) (restore func())
}

// Capturer grabs what the camera rendered this frame.
type Capturer interface {
	// Capture copies the camera target and starts the transparent pixel
	// count. It must not block on the GPU.
	Capture(cam Camera, label string) (Frame, error)
}

// Rig bundles the host collaborators of a Stage.
type Rig struct {
	Camera   Camera
	Scene    Scene
	Capturer Capturer
}

// Frame is one captured image whose pixels and count arrive later.
type Frame interface {
	// Fence reports GPU completion of the copy.
	Fence() Fence
	// Count reports the number of fully transparent pixels.
	Count() Readback
	// Size returns the image dimensions in pixels.
	Size() (width, height int)
	// Image returns the captured pixels. Valid once the fence passed.
	Image() image.Image
	// Release frees the capture.
	Release()
}

// Fence is a GPU completion token. Passed becomes true once and stays true.
type Fence interface {
	Passed() bool
}

// Readback is an asynchronously produced transparent pixel count.
type Readback interface {
	// TransparentCount returns the count and whether it is available.
	TransparentCount() (uint32, bool)
}

// NoCount is the count reported when the transparency pass could not run.
// It is always available and classifies the frame as empty.
const NoCount = math.MaxUint32

// NoReadback is a Readback that is always available with NoCount.
var NoReadback Readback = noReadback{}

type noReadback struct{}

func (noReadback) TransparentCount() (uint32, bool) { return NoCount, true }

// PassedFence is a Fence that has already passed.
var PassedFence Fence = passedFence{}

type passedFence struct{}

func (passedFence) Passed() bool { return true }

// IconSink is told about every icon that is final for an item: rendered,
// fallback or override.
type IconSink interface {
	IconChanged(obj Object, icon *Icon)
}

// IconSinkFunc adapts a function to IconSink.
type IconSinkFunc func(obj Object, icon *Icon)

// IconChanged calls f.
func (f IconSinkFunc) IconChanged(obj Object, icon *Icon) { f(obj, icon) }

// FrameClock reports the host frame number.
type FrameClock interface {
	Frame() int64
}

// Dumper writes captured frames for debugging.
type Dumper interface {
	Dump(key string, img image.Image) error
}
