// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// GridImage renders an n×n trail field buffer as an RGBA image scaled up by
// the given factor. The buffer layout is 4 float32 channels per cell:
// direction X (inverted), direction Y, speed magnitude, unused.
//
// Directions are mapped around mid-gray (0.5 + 0.5·d) and the speed
// magnitude fills the blue channel directly. Scaling uses nearest-neighbor
// interpolation, matching the shader sampling contract for the field
// texture: each cell stays a crisp block, never a gradient.
//
// GridImage is the CPU fallback path: headless demos use it when no GPU is
// available, and tests use it to inspect field state visually.
func GridImage(b *Buffer, n, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := image.NewRGBA(image.Rect(0, 0, n, n))
	cells := b.Data()
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			idx := (j*n + i) * 4
			if idx+2 >= len(cells) {
				break
			}
			o := src.PixOffset(i, j)
			src.Pix[o+0] = channelByte(0.5 + 0.5*float64(cells[idx+0]))
			src.Pix[o+1] = channelByte(0.5 + 0.5*float64(cells[idx+1]))
			src.Pix[o+2] = channelByte(float64(cells[idx+2]))
			src.Pix[o+3] = 0xFF
		}
	}
	if scale == 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, n*scale, n*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// channelByte clamps a [0,1] value to an 8-bit channel.
func channelByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xFF
	default:
		return uint8(v*255 + 0.5)
	}
}
