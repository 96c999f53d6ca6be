// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package field implements the trail field accumulator: a fixed-resolution
// 2D grid of decaying direction+speed cells fed by pointer motion and
// sampled by shaders as a texture.
//
// Each frame the grid fades uniformly by a decay factor; when a pointer
// sample is available, a radial brush deposits the pointer's velocity into
// every cell within the influence radius with an inverse-square-root
// falloff. The grid lives in a [render.Buffer] so the GPU layer re-uploads
// it (with nearest min/mag filtering) before the next draw.
package field
