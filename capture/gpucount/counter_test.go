// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucount

import (
	"errors"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/iconstage"
	"github.com/gogpu/iconstage/capture/soft"
)

var _ soft.Counter = (*Counter)(nil)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func TestShaderCompiles(t *testing.T) {
	spirv, err := naga.Compile(countShaderWGSL)
	if err != nil {
		t.Fatalf("naga.Compile: %v", err)
	}
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		t.Errorf("SPIR-V length = %d, want a non-empty multiple of 4", len(spirv))
	}
}

func TestCounterLifecycle(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	k, err := c.Start(image.NewRGBA(image.Rect(0, 0, 16, 16)))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n, ok := k.TransparentCount(); ok && n != iconstage.NoCount && n > 16*16 {
		t.Errorf("count = %d, more than the image has pixels", n)
	}
	k.Release()
	k.Release()

	c.Close()
	c.Close()
	if _, err := c.Start(image.NewRGBA(image.Rect(0, 0, 8, 8))); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
}

func TestStartRejectsUnaligned(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 10, 16),
		image.Rect(0, 0, 16, 12),
		image.Rect(0, 0, 0, 0),
	} {
		if _, err := c.Start(image.NewRGBA(r)); !errors.Is(err, ErrUnaligned) {
			t.Errorf("Start(%v) = %v, want ErrUnaligned", r, err)
		}
	}
}

func TestTightPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	if got := tightPixels(img); &got[0] != &img.Pix[0] {
		t.Error("tight image was copied")
	}

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	got := tightPixels(sub)
	if len(got) != 2*2*4 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	// Row 1, column 1 of a 4 pixel wide image starts at byte 20.
	if got[0] != 20 || got[8] != 36 {
		t.Errorf("rows start with %d, %d, want 20, 36", got[0], got[8])
	}
}

type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

type halProvider struct {
	plainProvider
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestFromProvider(t *testing.T) {
	if _, err := FromProvider(plainProvider{}); !errors.Is(err, ErrNoHAL) {
		t.Errorf("FromProvider(no HAL) = %v, want ErrNoHAL", err)
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := FromProvider(halProvider{device: device}); !errors.Is(err, ErrNoHAL) {
		t.Errorf("FromProvider(no queue) = %v, want ErrNoHAL", err)
	}
	c, err := FromProvider(halProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("FromProvider: %v", err)
	}
	c.Close()
}

func TestOpenNoop(t *testing.T) {
	c, err := Open(&noop.API{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.release == nil {
		t.Error("standalone counter does not own its device")
	}
	k, err := c.Start(image.NewRGBA(image.Rect(0, 0, 16, 16)))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	k.Release()
	c.Close()
	c.Close()
}

type nopHooks struct{}

func (nopHooks) OnRenderBegin(iconstage.Camera) {}
func (nopHooks) OnRenderEnd(iconstage.Camera)   {}

func TestSoftHostUsesCounter(t *testing.T) {
	c, err := Open(&noop.API{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	host := soft.NewHost(nil, soft.WithCounter(c))
	host.Aim(iconstage.Framing{
		Rotation:       mgl64.QuatIdent(),
		CameraRotation: mgl64.QuatIdent(),
		CameraOffset:   mgl64.Vec3{0, 0, 3},
		FOV:            45,
		Near:           0.1,
		Far:            10,
		Resolution:     16,
	})
	host.RenderFrame(nopHooks{})

	fr, err := host.Capture(host, "Vanilla/Vanilla/Nothing")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	defer fr.Release()
	if _, ok := fr.Fence().(*Count); !ok {
		t.Errorf("fence = %T, want the GPU count", fr.Fence())
	}
	if w, h := fr.Size(); w != 16 || h != 16 {
		t.Errorf("size = %dx%d, want 16x16", w, h)
	}
}
