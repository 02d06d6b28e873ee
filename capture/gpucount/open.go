// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucount

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoAdapter is returned by Open when the backend exposes no GPU.
var ErrNoAdapter = errors.New("gpucount: no GPU adapters found")

// Backend creates HAL instances. Registered wgpu backends and noop.API
// implement it.
type Backend interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Open creates a standalone device on backend and builds a counter on it.
// Discrete and integrated GPUs are preferred over other adapters. Close
// destroys the device.
func Open(backend Backend) (*Counter, error) {
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpucount: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpucount: open device: %w", err)
	}
	release := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}

	c, err := New(openDev.Device, openDev.Queue)
	if err != nil {
		release()
		return nil, err
	}
	c.release = release
	slogger().Info("gpucount: standalone device opened", "adapter", selected.Info.Name)
	return c, nil
}

// OpenVulkan opens a standalone counter on the registered Vulkan backend.
// The caller must link the backend, for example with a blank import of
// github.com/gogpu/wgpu/hal/vulkan.
func OpenVulkan() (*Counter, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("gpucount: vulkan backend not available")
	}
	return Open(backend)
}
