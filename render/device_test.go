// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
}

func TestTrailTextureDescriptor(t *testing.T) {
	desc := TrailTextureDescriptor(128)

	if desc.Width != 128 {
		t.Errorf("Width = %d, want 128", desc.Width)
	}
	if desc.Height != 128 {
		t.Errorf("Height = %d, want 128", desc.Height)
	}
	if desc.MipLevelCount != 1 {
		t.Errorf("MipLevelCount = %d, want 1", desc.MipLevelCount)
	}
	if desc.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", desc.SampleCount)
	}
	if desc.Format != gputypes.TextureFormatRGBA32Float {
		t.Errorf("Format = %v, want RGBA32Float", desc.Format)
	}

	expectedUsage := TextureUsageTextureBinding | TextureUsageCopyDst
	if desc.Usage != expectedUsage {
		t.Errorf("Usage = %v, want %v", desc.Usage, expectedUsage)
	}
}

func TestTrailTextureDescriptorUsage(t *testing.T) {
	// The field texture is written from the CPU and sampled by shaders;
	// it is never a render attachment or a storage image.
	usage := TrailTextureDescriptor(64).Usage

	if usage&TextureUsageCopyDst == 0 {
		t.Error("field texture must accept CPU uploads (CopyDst)")
	}
	if usage&TextureUsageTextureBinding == 0 {
		t.Error("field texture must be bindable for sampling")
	}
	if usage&(TextureUsageRenderAttachment|TextureUsageStorageBinding|TextureUsageCopySrc) != 0 {
		t.Errorf("field texture usage = %v carries flags the upload path never uses", usage)
	}
}
