package soft

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/iconstage"
)

// ErrNoModel is returned by Place when the model has no triangles for the
// object.
var ErrNoModel = errors.New("soft: object has no triangles")

// Triangle is three points in an object's local space.
type Triangle [3]mgl64.Vec3

// Model supplies the triangles an object is drawn with.
type Model interface {
	Triangles(obj iconstage.Object) ([]Triangle, error)
}

// Hooks receives the render callbacks of a frame. *iconstage.Stage
// implements it.
type Hooks interface {
	OnRenderBegin(cam iconstage.Camera)
	OnRenderEnd(cam iconstage.Camera)
}

// Host is a headless camera, stage and capturer. It is driven from the
// frame loop and is not safe for concurrent use.
type Host struct {
	model Model
	opts  options

	framing iconstage.Framing
	enabled bool

	staged   iconstage.Object
	tris     []Triangle // camera space
	color    [3]float64
	isolated bool

	target *image.RGBA
	frames uint64
}

// NewHost returns a host drawing objects with model.
func NewHost(model Model, opts ...Option) *Host {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Host{model: model, opts: o}
}

// Rig returns the host as the collaborators of a stage.
func (h *Host) Rig() iconstage.Rig {
	return iconstage.Rig{Camera: h, Scene: h, Capturer: h}
}

// Aim implements iconstage.Camera.
func (h *Host) Aim(f iconstage.Framing) {
	if f.Resolution <= 0 {
		f.Resolution = h.opts.resolution
	}
	if f.FOV <= 0 {
		f.FOV = h.opts.fov
	}
	h.framing = f
	h.enabled = true
}

// Disable implements iconstage.Camera.
func (h *Host) Disable() {
	h.enabled = false
}

// Enabled reports whether the camera renders this frame.
func (h *Host) Enabled() bool {
	return h.enabled
}

// Place implements iconstage.Scene. The object's triangles are moved into
// camera space with the framing.
func (h *Host) Place(obj iconstage.Object, f iconstage.Framing) (func(), error) {
	if h.staged != nil {
		return nil, iconstage.ErrStageOccupied
	}
	tris, err := h.model.Triangles(obj)
	if err != nil {
		return nil, fmt.Errorf("soft: triangles of %s: %w", obj.Item().Key, err)
	}
	if len(tris) == 0 {
		return nil, ErrNoModel
	}

	scale := mgl64.Vec3{1, 1, 1}
	if s, ok := obj.(iconstage.Scaler); ok {
		scale = s.Scale()
	}
	toCamera := f.CameraRotation.Inverse()
	offset := f.Position.Add(f.CameraOffset)

	h.tris = make([]Triangle, len(tris))
	for i, t := range tris {
		for j, p := range t {
			p = mgl64.Vec3{p.X() * scale.X(), p.Y() * scale.Y(), p.Z() * scale.Z()}
			h.tris[i][j] = toCamera.Rotate(f.Rotation.Rotate(p).Add(offset))
		}
	}
	h.staged = obj
	h.color = h.opts.palette(obj.Item().Key)

	return func() {
		h.staged = nil
		h.tris = nil
	}, nil
}

// IsolateLights implements iconstage.Scene. While isolated, only the stage
// light reaches the object.
func (h *Host) IsolateLights(iconstage.Object) func() {
	h.isolated = true
	return func() { h.isolated = false }
}

// Staged returns the object on the stage, nil if there is none.
func (h *Host) Staged() iconstage.Object {
	return h.staged
}

// RenderFrame renders one frame of the icon camera between the hooks'
// callbacks. A disabled camera does not render and fires no callbacks.
func (h *Host) RenderFrame(hooks Hooks) {
	if !h.enabled {
		return
	}
	hooks.OnRenderBegin(h)
	h.target = h.render()
	h.frames++
	hooks.OnRenderEnd(h)
}

// Capture implements iconstage.Capturer. It snapshots the last rendered
// target and starts counting its transparent pixels.
func (h *Host) Capture(cam iconstage.Camera, label string) (iconstage.Frame, error) {
	if cam != iconstage.Camera(h) {
		return nil, fmt.Errorf("soft: capture of %s: foreign camera", label)
	}
	if h.target == nil {
		return nil, fmt.Errorf("soft: capture of %s: nothing rendered", label)
	}

	snap := image.NewRGBA(h.target.Rect)
	copy(snap.Pix, h.target.Pix)

	fr := &frame{img: snap}
	c, err := h.opts.counter.Start(snap)
	if err != nil {
		slogger().Error("soft: transparency count unavailable", "item", label, "err", err)
		return fr, nil
	}
	fr.counting = c
	slogger().Debug("soft: captured", "item", label, "frame", h.frames)
	return fr, nil
}
