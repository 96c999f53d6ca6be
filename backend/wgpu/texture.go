// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/atelier"
	"github.com/gogpu/atelier/render"
)

// TrailTexture maintains the GPU texture form of the trail field for hosts
// that sample it from their own shaders. The texture is RGBA32Float with
// one texel per cell; the paired sampler uses nearest min/mag filtering,
// which the cell encoding requires (interpolating direction vectors across
// cells produces meaningless values).
//
// TrailTexture implements render.Texture.
type TrailTexture struct {
	device hal.Device
	queue  hal.Queue

	n       uint32
	format  gputypes.TextureFormat
	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

var _ render.Texture = (*TrailTexture)(nil)

// halTextureUsage converts render-layer usage flags to HAL usage bits.
func halTextureUsage(u render.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&render.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&render.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&render.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&render.TextureUsageStorageBinding != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	if u&render.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

// NewTrailTexture creates the n×n field texture and its nearest-filter
// sampler.
func NewTrailTexture(s *Session, n int) (*TrailTexture, error) {
	if s == nil || s.device == nil || s.queue == nil {
		return nil, fmt.Errorf("wgpu: session with device and queue is required")
	}
	if n <= 0 {
		return nil, fmt.Errorf("wgpu: grid size %d must be positive", n)
	}

	if caps := s.Capabilities(); caps.MaxTextureSize > 0 && uint32(n) > caps.MaxTextureSize {
		return nil, fmt.Errorf("wgpu: grid size %d exceeds device texture limit %d", n, caps.MaxTextureSize)
	}

	desc := render.TrailTextureDescriptor(uint32(n))
	t := &TrailTexture{device: s.device, queue: s.queue, n: uint32(n), format: desc.Format}

	texture, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         halTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create trail texture: %w", err)
	}
	t.texture = texture

	view, err := s.device.CreateTextureView(texture, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        desc.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("wgpu: create trail texture view: %w", err)
	}
	t.view = view

	sampler, err := s.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("wgpu: create trail sampler: %w", err)
	}
	t.sampler = sampler

	return t, nil
}

// Upload re-writes the texture from the field buffer if it is dirty.
// Returns true when an upload happened.
func (t *TrailTexture) Upload(buf *render.Buffer) bool {
	if !buf.TakeDirty() {
		return false
	}
	t.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.texture, MipLevel: 0},
		buf.Bytes(),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  t.n * 16, // 4 channels x float32 per texel
			RowsPerImage: t.n,
		},
		&hal.Extent3D{Width: t.n, Height: t.n, DepthOrArrayLayers: 1},
	)
	return true
}

// Texture returns the HAL texture.
func (t *TrailTexture) Texture() hal.Texture { return t.texture }

// View returns the HAL texture view for binding.
func (t *TrailTexture) View() hal.TextureView { return t.view }

// Sampler returns the nearest-filter sampler.
func (t *TrailTexture) Sampler() hal.Sampler { return t.sampler }

// Width returns the texture width in texels.
func (t *TrailTexture) Width() uint32 { return t.n }

// Height returns the texture height in texels.
func (t *TrailTexture) Height() uint32 { return t.n }

// Format returns the texture pixel format.
func (t *TrailTexture) Format() gputypes.TextureFormat { return t.format }

// CreateView creates an additional view onto the field texture. The caller
// owns the returned view and releases it with Destroy; a creation failure
// returns nil.
func (t *TrailTexture) CreateView() render.TextureView {
	view, err := t.device.CreateTextureView(t.texture, &hal.TextureViewDescriptor{
		Label:         "trail_field_host_view",
		Format:        t.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		atelier.Logger().Warn("wgpu: create trail field view", "error", err)
		return nil
	}
	return &halTextureView{device: t.device, view: view}
}

// halTextureView adapts an hal.TextureView to render.TextureView.
type halTextureView struct {
	device hal.Device
	view   hal.TextureView
}

// View returns the wrapped HAL view.
func (v *halTextureView) View() hal.TextureView { return v.view }

// Destroy releases the view.
func (v *halTextureView) Destroy() {
	if v.view != nil {
		v.device.DestroyTextureView(v.view)
		v.view = nil
	}
}

// Destroy releases the texture, view, and sampler.
func (t *TrailTexture) Destroy() {
	if t.device == nil {
		return
	}
	if t.sampler != nil {
		t.device.DestroySampler(t.sampler)
		t.sampler = nil
	}
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
