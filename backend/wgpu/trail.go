// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	_ "embed"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/atelier"
	"github.com/gogpu/atelier/anim"
	"github.com/gogpu/atelier/field"
	"github.com/gogpu/atelier/render"
)

//go:embed shaders/trail.wgsl
var trailShaderWGSL string

//go:embed shaders/post.wgsl
var postShaderWGSL string

// trailUniformSize is the byte size of the trail pass uniform buffer.
// Layout: viewport (vec2<f32>) + grid_size (f32) + slot_count (f32) +
// pointer_ndc (vec2<f32>) + padding (vec2<f32>) = 32 bytes.
// Must match TrailUniforms in trail.wgsl.
const trailUniformSize = 32

// postUniformSize is the byte size of the post pass uniform buffer.
// Layout: gamma (f32) + exposure (f32) + padding (vec2<f32>) = 16 bytes.
// Must match PostUniforms in post.wgsl.
const postUniformSize = 16

// slotStride is the byte size of one packed slot: active, value,
// position X, position Y as float32. Must match the slots array element
// in trail.wgsl.
const slotStride = 16

// vertexStride is the byte stride per vertex: 2 x float32 (x, y).
const vertexStride = 8

// positionChannel is the payload channel consulted for slot placement.
// Slots without it render at the center.
const positionChannel = "position"

// TrailRenderer draws the trail field with the slot pool overlay into a
// CPU pixmap. It implements atelier.Renderer.
//
// Per frame, dirty buffers are re-uploaded (fire-and-forget: the only
// synchronization with the simulation is the dirty flag), then two render
// passes run: the composite pass and an optional gamma post pass. The
// final target is copied back into the pixmap.
type TrailRenderer struct {
	device hal.Device
	queue  hal.Queue
	target render.RenderTarget

	gridSize  int
	slotCount int
	width     uint32
	height    uint32

	// Post-pass parameters. Gamma 1 with exposure 1 still runs the pass
	// but leaves colors untouched; SetPostEnabled(false) skips it.
	gamma       float32
	exposure    float32
	postEnabled bool

	trailShader hal.ShaderModule
	postShader  hal.ShaderModule

	trailBindLayout hal.BindGroupLayout
	trailPipeLayout hal.PipelineLayout
	trailPipeline   hal.RenderPipeline
	postBindLayout  hal.BindGroupLayout
	postPipeLayout  hal.PipelineLayout
	postPipeline    hal.RenderPipeline

	vertBuf        hal.Buffer
	uniformBuf     hal.Buffer
	postUniformBuf hal.Buffer
	gridBuf        hal.Buffer
	slotBuf        hal.Buffer

	sceneTex  hal.Texture
	sceneView hal.TextureView
	finalTex  hal.Texture
	finalView hal.TextureView

	trailBind hal.BindGroup
	postBind  hal.BindGroup

	slotScratch []byte

	initialized bool
}

var _ atelier.Renderer = (*TrailRenderer)(nil)

// NewTrailRenderer creates a renderer for a gridSize×gridSize field and a
// slotCount-slot pool, drawing into target. The target must be
// CPU-accessible: the frame is read back into its pixel buffer.
func NewTrailRenderer(s *Session, gridSize, slotCount int, target render.RenderTarget) (*TrailRenderer, error) {
	if target == nil {
		return nil, fmt.Errorf("wgpu: target is required")
	}
	if target.Pixels() == nil {
		return nil, fmt.Errorf("wgpu: target must be CPU-accessible for readback")
	}
	if gridSize <= 0 || slotCount <= 0 {
		return nil, fmt.Errorf("wgpu: grid size %d and slot count %d must be positive", gridSize, slotCount)
	}
	if s == nil || s.device == nil || s.queue == nil {
		return nil, fmt.Errorf("wgpu: session with device and queue is required")
	}
	if caps := s.Capabilities(); caps.MaxTextureSize > 0 {
		if uint32(target.Width()) > caps.MaxTextureSize || uint32(target.Height()) > caps.MaxTextureSize {
			return nil, fmt.Errorf("wgpu: target %dx%d exceeds device texture limit %d",
				target.Width(), target.Height(), caps.MaxTextureSize)
		}
	}

	r := &TrailRenderer{
		device:      s.device,
		queue:       s.queue,
		target:      target,
		gridSize:    gridSize,
		slotCount:   slotCount,
		width:       uint32(target.Width()),
		height:      uint32(target.Height()),
		gamma:       2.2,
		exposure:    1.0,
		postEnabled: true,
		slotScratch: make([]byte, slotCount*slotStride),
	}
	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// SetPost configures the color-correction pass.
func (r *TrailRenderer) SetPost(gamma, exposure float32) {
	if gamma > 0 {
		r.gamma = gamma
	}
	if exposure > 0 {
		r.exposure = exposure
	}
	r.uploadPostUniform()
}

// SetPostEnabled toggles the post pass. Disabled, the composite pass
// output is read back directly.
func (r *TrailRenderer) SetPostEnabled(enabled bool) { r.postEnabled = enabled }

func (r *TrailRenderer) init() error {
	if err := r.createShaders(); err != nil {
		return err
	}
	if err := r.createPipelines(); err != nil {
		return err
	}
	if err := r.createBuffers(); err != nil {
		return err
	}
	if err := r.createTextures(); err != nil {
		return err
	}
	if err := r.createBindGroups(); err != nil {
		return err
	}
	r.uploadPostUniform()
	r.initialized = true
	atelier.Logger().Debug("wgpu: trail renderer ready",
		"grid", r.gridSize, "slots", r.slotCount, "width", r.width, "height", r.height)
	return nil
}

// spirvWords converts naga's SPIR-V byte output to the uint32 words the
// HAL expects. SPIR-V is little-endian 32-bit words.
func spirvWords(spirvBytes []byte) []uint32 {
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words
}

func (r *TrailRenderer) createShaders() error {
	trailSPIRV, err := naga.Compile(trailShaderWGSL)
	if err != nil {
		return fmt.Errorf("wgpu: compile trail shader: %w", err)
	}
	trailShader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "trail_shader",
		Source: hal.ShaderSource{SPIRV: spirvWords(trailSPIRV)},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create trail shader module: %w", err)
	}
	r.trailShader = trailShader

	postSPIRV, err := naga.Compile(postShaderWGSL)
	if err != nil {
		return fmt.Errorf("wgpu: compile post shader: %w", err)
	}
	postShader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "post_shader",
		Source: hal.ShaderSource{SPIRV: spirvWords(postSPIRV)},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create post shader module: %w", err)
	}
	r.postShader = postShader
	return nil
}

func (r *TrailRenderer) createPipelines() error {
	// Trail pass bind group layout:
	//   Binding 0: TrailUniforms (uniform, vertex+fragment)
	//   Binding 1: grid cells (read-only storage, fragment)
	//   Binding 2: slots (read-only storage, fragment)
	trailBindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "trail_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create trail bind layout: %w", err)
	}
	r.trailBindLayout = trailBindLayout

	trailPipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "trail_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.trailBindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create trail pipeline layout: %w", err)
	}
	r.trailPipeLayout = trailPipeLayout

	// Post pass bind group layout:
	//   Binding 0: scene texture (texture_2d, fragment)
	//   Binding 1: PostUniforms (uniform, fragment)
	postBindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "post_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create post bind layout: %w", err)
	}
	r.postBindLayout = postBindLayout

	postPipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "post_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.postBindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create post pipeline layout: %w", err)
	}
	r.postPipeLayout = postPipeLayout

	// Shared vertex buffer layout: float32x2 position at location(0).
	vertexBufferLayout := []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{
					Format:         gputypes.VertexFormatFloat32x2,
					Offset:         0,
					ShaderLocation: 0,
				},
			},
		},
	}

	primitive := gputypes.PrimitiveState{
		Topology: gputypes.PrimitiveTopologyTriangleList,
		CullMode: gputypes.CullModeNone,
	}
	multisample := gputypes.MultisampleState{
		Count: 1,
		Mask:  0xFFFFFFFF,
	}

	trailPipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "trail_pipeline",
		Layout: r.trailPipeLayout,
		Vertex: hal.VertexState{
			Module:     r.trailShader,
			EntryPoint: "vs_main",
			Buffers:    vertexBufferLayout,
		},
		Fragment: &hal.FragmentState{
			Module:     r.trailShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive:   primitive,
		Multisample: multisample,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create trail pipeline: %w", err)
	}
	r.trailPipeline = trailPipeline

	postPipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "post_pipeline",
		Layout: r.postPipeLayout,
		Vertex: hal.VertexState{
			Module:     r.postShader,
			EntryPoint: "vs_main",
			Buffers:    vertexBufferLayout,
		},
		Fragment: &hal.FragmentState{
			Module:     r.postShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive:   primitive,
		Multisample: multisample,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create post pipeline: %w", err)
	}
	r.postPipeline = postPipeline
	return nil
}

func (r *TrailRenderer) createBuffers() error {
	vertBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_verts",
		Size:  uint64(len(fullscreenQuad()) * 4),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create vertex buffer: %w", err)
	}
	r.vertBuf = vertBuf
	r.queue.WriteBuffer(r.vertBuf, 0, floatBytes(fullscreenQuad()))

	uniformBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_uniform",
		Size:  trailUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	r.uniformBuf = uniformBuf

	postUniformBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "post_uniform",
		Size:  postUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create post uniform buffer: %w", err)
	}
	r.postUniformBuf = postUniformBuf

	gridBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_grid",
		Size:  uint64(r.gridSize * r.gridSize * 16),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create grid buffer: %w", err)
	}
	r.gridBuf = gridBuf

	slotBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_slots",
		Size:  uint64(r.slotCount * slotStride),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create slot buffer: %w", err)
	}
	r.slotBuf = slotBuf
	return nil
}

func (r *TrailRenderer) createTextures() error {
	size := hal.Extent3D{Width: r.width, Height: r.height, DepthOrArrayLayers: 1}

	sceneTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "trail_scene",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create scene texture: %w", err)
	}
	r.sceneTex = sceneTex

	sceneView, err := r.device.CreateTextureView(sceneTex, &hal.TextureViewDescriptor{
		Label:         "trail_scene_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create scene view: %w", err)
	}
	r.sceneView = sceneView

	finalTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "trail_final",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create final texture: %w", err)
	}
	r.finalTex = finalTex

	finalView, err := r.device.CreateTextureView(finalTex, &hal.TextureViewDescriptor{
		Label:         "trail_final_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create final view: %w", err)
	}
	r.finalView = finalView
	return nil
}

func (r *TrailRenderer) createBindGroups() error {
	trailBind, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "trail_bind",
		Layout: r.trailBindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: r.uniformBuf.NativeHandle(), Offset: 0, Size: trailUniformSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: r.gridBuf.NativeHandle(), Offset: 0, Size: uint64(r.gridSize * r.gridSize * 16),
			}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: r.slotBuf.NativeHandle(), Offset: 0, Size: uint64(r.slotCount * slotStride),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create trail bind group: %w", err)
	}
	r.trailBind = trailBind

	postBind, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "post_bind",
		Layout: r.postBindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: r.sceneView.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: r.postUniformBuf.NativeHandle(), Offset: 0, Size: postUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create post bind group: %w", err)
	}
	r.postBind = postBind
	return nil
}

// RenderFrame uploads dirty buffers and draws one frame into the pixmap.
func (r *TrailRenderer) RenderFrame(f *field.TrailField, p *anim.Pool) error {
	if !r.initialized {
		return fmt.Errorf("wgpu: renderer not initialized")
	}
	if f.Resolution() != r.gridSize {
		return fmt.Errorf("wgpu: field resolution %d does not match renderer grid %d", f.Resolution(), r.gridSize)
	}
	if p.Size() != r.slotCount {
		return fmt.Errorf("wgpu: pool size %d does not match renderer slots %d", p.Size(), r.slotCount)
	}

	if f.Buffer().TakeDirty() {
		r.queue.WriteBuffer(r.gridBuf, 0, f.Buffer().Bytes())
	}
	if r.slotsDirty(p) {
		r.queue.WriteBuffer(r.slotBuf, 0, r.packSlots(p))
	}
	r.queue.WriteBuffer(r.uniformBuf, 0, r.makeTrailUniform())

	return r.encodeAndReadback()
}

// slotsDirty consumes the dirty flags of every pool buffer the slot
// packing reads. All flags are taken so a single dirty channel does not
// re-trigger uploads forever.
func (r *TrailRenderer) slotsDirty(p *anim.Pool) bool {
	dirty := p.Active().TakeDirty()
	dirty = p.Values().TakeDirty() || dirty
	if ch := p.Channel(positionChannel); ch != nil {
		dirty = ch.TakeDirty() || dirty
	}
	return dirty
}

// packSlots interleaves the pool's parallel arrays into the GPU slot
// layout: active, value, position X, position Y per slot.
func (r *TrailRenderer) packSlots(p *anim.Pool) []byte {
	active := p.Active().Data()
	values := p.Values().Data()
	pos := p.Channel(positionChannel)

	for i := 0; i < r.slotCount; i++ {
		px, py := float32(0.5), float32(0.5)
		if pos != nil {
			stride := pos.Len() / r.slotCount
			if stride >= 2 {
				px = pos.Data()[i*stride]
				py = pos.Data()[i*stride+1]
			}
		}
		base := i * slotStride
		putFloat32(r.slotScratch, base, active[i])
		putFloat32(r.slotScratch, base+4, values[i])
		putFloat32(r.slotScratch, base+8, px)
		putFloat32(r.slotScratch, base+12, py)
	}
	return r.slotScratch
}

func (r *TrailRenderer) makeTrailUniform() []byte {
	buf := make([]byte, trailUniformSize)
	putFloat32(buf, 0, float32(r.width))
	putFloat32(buf, 4, float32(r.height))
	putFloat32(buf, 8, float32(r.gridSize))
	putFloat32(buf, 12, float32(r.slotCount))
	// pointer_ndc and padding stay zero; the composite pass does not use
	// them yet.
	return buf
}

func (r *TrailRenderer) uploadPostUniform() {
	if r.postUniformBuf == nil {
		return
	}
	buf := make([]byte, postUniformSize)
	putFloat32(buf, 0, r.gamma)
	putFloat32(buf, 4, r.exposure)
	r.queue.WriteBuffer(r.postUniformBuf, 0, buf)
}

func (r *TrailRenderer) encodeAndReadback() error {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "trail_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("trail_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	// Composite pass.
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "trail_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       r.sceneView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	rp.SetPipeline(r.trailPipeline)
	rp.SetBindGroup(0, r.trailBind, nil)
	rp.SetVertexBuffer(0, r.vertBuf, 0)
	rp.Draw(6, 1, 0, 0)
	rp.End()

	readbackTex := r.sceneTex
	if r.postEnabled {
		// The scene texture moves from color attachment to sampled input
		// for the post pass.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: r.sceneTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageTextureBinding,
			},
		}})

		pp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "post_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{
				{
					View:       r.finalView,
					LoadOp:     gputypes.LoadOpClear,
					StoreOp:    gputypes.StoreOpStore,
					ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
				},
			},
		})
		pp.SetPipeline(r.postPipeline)
		pp.SetBindGroup(0, r.postBind, nil)
		pp.SetVertexBuffer(0, r.vertBuf, 0)
		pp.Draw(6, 1, 0, 0)
		pp.End()

		readbackTex = r.finalTex
	}

	// The readback texture needs TRANSFER_SRC layout for the copy.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: readbackTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(r.width) * uint64(r.height) * 4
	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(readbackTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: r.width * 4, RowsPerImage: r.height},
		TextureBase:  hal.ImageCopyTexture{Texture: readbackTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: r.width, Height: r.height, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	copyToPixmap(readback, r.target)
	return nil
}

// Destroy releases all GPU resources. Safe on a partially initialized
// renderer.
func (r *TrailRenderer) Destroy() {
	if r.device == nil {
		return
	}
	if r.postBind != nil {
		r.device.DestroyBindGroup(r.postBind)
		r.postBind = nil
	}
	if r.trailBind != nil {
		r.device.DestroyBindGroup(r.trailBind)
		r.trailBind = nil
	}
	if r.finalView != nil {
		r.device.DestroyTextureView(r.finalView)
		r.finalView = nil
	}
	if r.finalTex != nil {
		r.device.DestroyTexture(r.finalTex)
		r.finalTex = nil
	}
	if r.sceneView != nil {
		r.device.DestroyTextureView(r.sceneView)
		r.sceneView = nil
	}
	if r.sceneTex != nil {
		r.device.DestroyTexture(r.sceneTex)
		r.sceneTex = nil
	}
	for _, buf := range []hal.Buffer{r.slotBuf, r.gridBuf, r.postUniformBuf, r.uniformBuf, r.vertBuf} {
		if buf != nil {
			r.device.DestroyBuffer(buf)
		}
	}
	r.slotBuf, r.gridBuf, r.postUniformBuf, r.uniformBuf, r.vertBuf = nil, nil, nil, nil, nil
	if r.postPipeline != nil {
		r.device.DestroyRenderPipeline(r.postPipeline)
		r.postPipeline = nil
	}
	if r.trailPipeline != nil {
		r.device.DestroyRenderPipeline(r.trailPipeline)
		r.trailPipeline = nil
	}
	if r.postPipeLayout != nil {
		r.device.DestroyPipelineLayout(r.postPipeLayout)
		r.postPipeLayout = nil
	}
	if r.trailPipeLayout != nil {
		r.device.DestroyPipelineLayout(r.trailPipeLayout)
		r.trailPipeLayout = nil
	}
	if r.postBindLayout != nil {
		r.device.DestroyBindGroupLayout(r.postBindLayout)
		r.postBindLayout = nil
	}
	if r.trailBindLayout != nil {
		r.device.DestroyBindGroupLayout(r.trailBindLayout)
		r.trailBindLayout = nil
	}
	if r.postShader != nil {
		r.device.DestroyShaderModule(r.postShader)
		r.postShader = nil
	}
	if r.trailShader != nil {
		r.device.DestroyShaderModule(r.trailShader)
		r.trailShader = nil
	}
	r.initialized = false
}

// fullscreenQuad returns two NDC triangles covering the viewport.
func fullscreenQuad() []float32 {
	return []float32{
		-1, -1, 1, -1, 1, 1,
		-1, -1, 1, 1, -1, 1,
	}
}

// copyToPixmap writes RGBA8 readback rows into the target, respecting its
// stride.
func copyToPixmap(readback []byte, target render.RenderTarget) {
	w, h := target.Width(), target.Height()
	pix, stride := target.Pixels(), target.Stride()
	for y := 0; y < h; y++ {
		src := readback[y*w*4 : (y+1)*w*4]
		dst := pix[y*stride : y*stride+w*4]
		copy(dst, src)
	}
}

func floatBytes(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		putFloat32(buf, i*4, v)
	}
	return buf
}

func putFloat32(buf []byte, offset int, v float32) {
	bits := math.Float32bits(v)
	buf[offset] = byte(bits)
	buf[offset+1] = byte(bits >> 8)
	buf[offset+2] = byte(bits >> 16)
	buf[offset+3] = byte(bits >> 24)
}
