// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/atelier"
	"github.com/gogpu/atelier/render"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Session owns the GPU device and queue used by the renderers in this
// package. A session either creates a standalone device (Open) or wraps a
// shared one (FromProvider); Close only destroys what the session created.
type Session struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapterName string
	caps        render.DeviceCapabilities
	external    bool
}

// sessionCapabilities summarizes what renderers can rely on for a device
// opened with the given limits. Vulkan devices always carry compute and
// storage texture support.
func sessionCapabilities(deviceName string, limits gputypes.Limits) render.DeviceCapabilities {
	return render.DeviceCapabilities{
		MaxTextureSize:          limits.MaxTextureDimension2D,
		MaxBindGroups:           limits.MaxBindGroups,
		SupportsCompute:         true,
		SupportsStorageTextures: true,
		DeviceName:              deviceName,
	}
}

// Open creates a standalone Vulkan device. This is the headless path used
// when atelier runs without a host GPU framework.
func Open() (*Session, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	s := &Session{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
		caps:        sessionCapabilities(selected.Info.Name, limits),
	}
	atelier.Logger().Info("wgpu: GPU initialized (standalone)", "adapter", s.adapterName)
	return s, nil
}

// FromProvider wraps a shared GPU device from an external provider (e.g.
// gogpu). The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func FromProvider(provider any) (*Session, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	atelier.Logger().Debug("wgpu: using shared GPU device")
	return &Session{
		device: device,
		queue:  queue,
		// The shared device was opened by the host; assume at least the
		// WebGPU default limits.
		caps:     sessionCapabilities("", gputypes.DefaultLimits()),
		external: true,
	}, nil
}

// Device returns the HAL device.
func (s *Session) Device() hal.Device { return s.device }

// Queue returns the HAL queue.
func (s *Session) Queue() hal.Queue { return s.queue }

// AdapterName returns the selected adapter's name, or "" for shared
// devices.
func (s *Session) AdapterName() string { return s.adapterName }

// Capabilities reports the device limits the session's renderers validate
// against.
func (s *Session) Capabilities() render.DeviceCapabilities { return s.caps }

// Close releases the device and instance if the session owns them. Shared
// resources are left alone.
func (s *Session) Close() {
	if s.external {
		s.device = nil
		s.queue = nil
		return
	}
	if s.device != nil {
		s.device.Destroy()
		s.device = nil
	}
	if s.instance != nil {
		s.instance.Destroy()
		s.instance = nil
	}
	s.queue = nil
}
