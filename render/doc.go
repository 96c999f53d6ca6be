// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the GPU-facing resource abstractions for atelier.
//
// # Key Principle
//
// atelier RECEIVES a GPU device from the host application, it does NOT create
// its own at this layer. Hosts hand atelier a [DeviceHandle] (an alias for
// gpucontext.DeviceProvider) and the GPU layer in backend/wgpu consumes it.
//
// Everything else here is CPU-side plumbing shared by the simulation
// packages:
//
//   - [Buffer]: a mutable float32 array with a "needs re-upload" flag.
//     The trail field and the slot pool write into Buffers every frame; the
//     GPU layer re-uploads a Buffer before the next draw when its dirty flag
//     is set. The flag is fire-and-forget: nothing acknowledges when a read
//     actually happened.
//   - [RenderTarget] / [PixmapTarget]: render destinations, including the
//     CPU-backed pixmap used for headless PNG output.
//   - [GridImage]: a nearest-neighbor snapshot of a trail field buffer,
//     matching the shader's nearest min/mag sampling contract.
//
// # Thread Safety
//
// All types in this package assume single-threaded, run-to-completion frame
// callbacks. The only writer of a Buffer is the component that owns it, and
// all mutation happens on the frame-advance path.
package render
