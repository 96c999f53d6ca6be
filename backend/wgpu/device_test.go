package wgpu

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestSessionCapabilities(t *testing.T) {
	caps := sessionCapabilities("Test Adapter", gputypes.DefaultLimits())

	if caps.DeviceName != "Test Adapter" {
		t.Errorf("DeviceName = %q, want %q", caps.DeviceName, "Test Adapter")
	}
	if caps.MaxTextureSize == 0 {
		t.Error("MaxTextureSize = 0; default limits must allow some texture size")
	}
	if caps.MaxBindGroups == 0 {
		t.Error("MaxBindGroups = 0; default limits must allow bind groups")
	}
	if !caps.SupportsCompute {
		t.Error("vulkan sessions always support compute")
	}
	if !caps.SupportsStorageTextures {
		t.Error("vulkan sessions always support storage textures")
	}
}
