// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "testing"

func TestGridImageDimensions(t *testing.T) {
	b := NewBuffer(4 * 4 * 4)

	img := GridImage(b, 4, 1)
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("size = %v, want 4x4", img.Bounds())
	}

	img = GridImage(b, 4, 8)
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("scaled size = %v, want 32x32", img.Bounds())
	}
}

func TestGridImageNearestScaling(t *testing.T) {
	// One cell with full speed; after 4x nearest scaling the whole 4x4
	// block must carry the same value with no gradient at the edges.
	b := NewBuffer(2 * 2 * 4)
	b.Data()[2] = 1.0 // cell (0,0) speed channel

	img := GridImage(b, 2, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := img.RGBAAt(x, y).B; got != 0xFF {
				t.Fatalf("pixel (%d,%d).B = %d, want 255", x, y, got)
			}
		}
	}
	// The neighboring block is untouched.
	if got := img.RGBAAt(5, 0).B; got != 0 {
		t.Errorf("pixel (5,0).B = %d, want 0", got)
	}
}

func TestGridImageDirectionMapping(t *testing.T) {
	b := NewBuffer(1 * 1 * 4)
	// Zero direction maps to mid-gray.
	img := GridImage(b, 1, 1)
	px := img.RGBAAt(0, 0)
	if px.R != 128 || px.G != 128 {
		t.Errorf("zero direction = (%d,%d), want (128,128)", px.R, px.G)
	}

	// Saturated directions clamp to the channel extremes.
	b.Data()[0] = -2
	b.Data()[1] = 2
	img = GridImage(b, 1, 1)
	px = img.RGBAAt(0, 0)
	if px.R != 0 {
		t.Errorf("negative X direction R = %d, want 0", px.R)
	}
	if px.G != 255 {
		t.Errorf("positive Y direction G = %d, want 255", px.G)
	}
}

func TestChannelByte(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{3, 255},
	}
	for _, tt := range tests {
		if got := channelByte(tt.in); got != tt.want {
			t.Errorf("channelByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
