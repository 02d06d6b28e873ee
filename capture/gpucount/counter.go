// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucount

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/iconstage"
	"github.com/gogpu/iconstage/capture/soft"
)

var (
	// ErrUnaligned is returned by Start for images whose size is not a
	// multiple of the workgroup size.
	ErrUnaligned = errors.New("gpucount: image size is not tile aligned")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("gpucount: counter is closed")

	// ErrNoHAL is returned by FromProvider when the provider does not
	// expose HAL device and queue.
	ErrNoHAL = errors.New("gpucount: provider does not expose HAL types")
)

// Counter counts transparent pixels with a compute pass.
// It implements soft.Counter.
type Counter struct {
	device hal.Device
	queue  hal.Queue

	mu       sync.Mutex
	closed   bool
	module   hal.ShaderModule
	bgl      hal.BindGroupLayout
	layout   hal.PipelineLayout
	pipeline hal.ComputePipeline

	// release destroys a device opened by the counter itself.
	release func()
}

// New compiles the count shader and builds its pipeline on device.
func New(device hal.Device, queue hal.Queue) (*Counter, error) {
	if _, err := naga.Compile(countShaderWGSL); err != nil {
		return nil, fmt.Errorf("gpucount: compile shader: %w", err)
	}

	c := &Counter{device: device, queue: queue}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	slogger().Info("gpucount: pipeline ready", "workgroup", workgroupSize)
	return c, nil
}

// FromProvider builds a counter on the device of a host that shares its
// GPU.
func FromProvider(p gpucontext.DeviceProvider) (*Counter, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue)
}

func (c *Counter) init() error {
	var err error
	c.module, err = c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "transparent_count",
		Source: hal.ShaderSource{WGSL: countShaderWGSL},
	})
	if err != nil {
		return fmt.Errorf("gpucount: create shader module: %w", err)
	}

	c.bgl, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "transparent_count_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpucount: create bind group layout: %w", err)
	}

	c.layout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "transparent_count_pl",
		BindGroupLayouts: []hal.BindGroupLayout{c.bgl},
	})
	if err != nil {
		return fmt.Errorf("gpucount: create pipeline layout: %w", err)
	}

	c.pipeline, err = c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "transparent_count",
		Layout: c.layout,
		Compute: hal.ComputeState{
			Module:     c.module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("gpucount: create compute pipeline: %w", err)
	}
	return nil
}

// Close destroys the pipeline. Counts already started stay valid until
// released.
func (c *Counter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	if c.pipeline != nil {
		c.device.DestroyComputePipeline(c.pipeline)
	}
	if c.layout != nil {
		c.device.DestroyPipelineLayout(c.layout)
	}
	if c.bgl != nil {
		c.device.DestroyBindGroupLayout(c.bgl)
	}
	if c.module != nil {
		c.device.DestroyShaderModule(c.module)
	}
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

// Start uploads img, dispatches the count and submits it with a fence.
// It does not wait for the GPU.
func (c *Counter) Start(img *image.RGBA) (soft.Counting, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 || w%workgroupSize != 0 || h%workgroupSize != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrUnaligned, w, h)
	}

	k := &Count{device: c.device, queue: c.queue}
	if err := c.encode(k, img, uint32(w), uint32(h)); err != nil {
		k.Release()
		return nil, err
	}
	return k, nil
}

func (c *Counter) encode(k *Count, img *image.RGBA, w, h uint32) error {
	var err error
	create := func(label string, size uint64, usage gputypes.BufferUsage) hal.Buffer {
		if err != nil {
			return nil
		}
		var b hal.Buffer
		b, err = c.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
		if err == nil {
			k.buffers = append(k.buffers, b)
		}
		return b
	}

	params := create("count_params", 16, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	pixels := create("count_pixels", uint64(w)*uint64(h)*4, gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	result := create("count_result", 4, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	k.staging = create("count_staging", 4, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("gpucount: create buffer: %w", err)
	}

	var p [16]byte
	binary.LittleEndian.PutUint32(p[0:], w)
	binary.LittleEndian.PutUint32(p[4:], h)
	c.queue.WriteBuffer(params, 0, p[:])
	c.queue.WriteBuffer(pixels, 0, tightPixels(img))
	c.queue.WriteBuffer(result, 0, make([]byte, 4))

	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding:  binding,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: 0},
		}
	}
	k.bindGroup, err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "transparent_count_bg",
		Layout:  c.bgl,
		Entries: []gputypes.BindGroupEntry{entry(0, params), entry(1, pixels), entry(2, result)},
	})
	if err != nil {
		return fmt.Errorf("gpucount: create bind group: %w", err)
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "transparent_count"})
	if err != nil {
		return fmt.Errorf("gpucount: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("transparent_count"); err != nil {
		return fmt.Errorf("gpucount: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "transparent_count"})
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, k.bindGroup, nil)
	pass.Dispatch(w/workgroupSize, h/workgroupSize, 1)
	pass.End()

	encoder.CopyBufferToBuffer(result, k.staging, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: 4}})

	k.cmdBuf, err = encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpucount: end encoding: %w", err)
	}

	k.fence, err = c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpucount: create fence: %w", err)
	}
	if err := c.queue.Submit([]hal.CommandBuffer{k.cmdBuf}, k.fence, 1); err != nil {
		return fmt.Errorf("gpucount: submit: %w", err)
	}

	slogger().Debug("gpucount: dispatched",
		"width", w, "height", h,
		"workgroups", (w/workgroupSize)*(h/workgroupSize))
	return nil
}

// tightPixels returns the pixel rows of img without stride padding.
func tightPixels(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	row := w * 4
	if img.Stride == row && img.Rect.Min == (image.Point{}) {
		return img.Pix[:row*h]
	}
	out := make([]byte, row*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*row:], img.Pix[off:off+row])
	}
	return out
}

// Count is one submitted count. Its fence is polled without blocking and
// the result is read back once, after the fence passed. Count belongs to
// the frame loop.
type Count struct {
	device hal.Device
	queue  hal.Queue

	buffers   []hal.Buffer
	staging   hal.Buffer
	bindGroup hal.BindGroup
	cmdBuf    hal.CommandBuffer
	fence     hal.Fence

	passed   bool
	failed   bool
	read     bool
	n        uint32
	released bool
}

// Passed reports whether the GPU finished the count. A failed wait counts
// as passed so the result can be resolved.
func (k *Count) Passed() bool {
	if k.passed || k.released {
		return k.passed
	}
	ok, err := k.device.Wait(k.fence, 1, 0)
	if err != nil {
		slogger().Error("gpucount: fence wait failed", "err", err)
		k.failed = true
		ok = true
	}
	k.passed = ok
	return ok
}

// TransparentCount implements iconstage.Readback. A failed wait or
// readback yields iconstage.NoCount.
func (k *Count) TransparentCount() (uint32, bool) {
	if k.read {
		return k.n, true
	}
	if !k.Passed() {
		return 0, false
	}

	k.n = iconstage.NoCount
	if !k.failed && !k.released {
		var buf [4]byte
		if err := k.queue.ReadBuffer(k.staging, 0, buf[:]); err != nil {
			slogger().Error("gpucount: readback failed", "err", err)
		} else {
			k.n = binary.LittleEndian.Uint32(buf[:])
		}
	}
	k.read = true
	k.free()
	return k.n, true
}

// Release frees the GPU resources of the count. It is idempotent.
func (k *Count) Release() {
	k.free()
	k.released = true
}

func (k *Count) free() {
	if k.fence != nil {
		k.device.DestroyFence(k.fence)
		k.fence = nil
	}
	if k.cmdBuf != nil {
		k.device.FreeCommandBuffer(k.cmdBuf)
		k.cmdBuf = nil
	}
	if k.bindGroup != nil {
		k.device.DestroyBindGroup(k.bindGroup)
		k.bindGroup = nil
	}
	for _, b := range k.buffers {
		k.device.DestroyBuffer(b)
	}
	k.buffers = nil
	k.staging = nil
}
