// Package wgpu renders the trail field and slot pool on the GPU via the
// gogpu/wgpu HAL.
//
// The package has two integration modes:
//
//   - Standalone: Open creates its own Vulkan instance, adapter, and
//     device. Used by the demo binaries and headless rendering.
//   - Shared: FromProvider borrows an hal.Device/hal.Queue from a host
//     framework (gogpu) through a device provider, so atelier shares GPU
//     resources with the surrounding application.
//
// TrailRenderer implements atelier.Renderer: each frame it re-uploads
// dirty buffers, draws the field with the slot overlay into an offscreen
// target, applies an optional gamma post pass, and reads the pixels back
// into a CPU pixmap.
//
// TrailTexture maintains the RGBA32Float field texture for hosts that
// sample the field from their own shaders; it carries the nearest-filter
// sampler the field's cell encoding requires.
package wgpu
