// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package field

import (
	"fmt"
	"math"

	"github.com/gogpu/atelier/render"
)

const (
	// maxForce caps the inverse-square-root brush falloff so cells near the
	// pointer center do not blow up.
	maxForce = 10.0

	// velocityEpsilon is the per-axis threshold below which the decaying
	// pointer velocity snaps to exactly zero, preventing an infinite tail
	// of vanishing deposits.
	velocityEpsilon = 1e-3
)

// Source supplies the pointer sample for a frame. ok is false when no
// sample is available (before the first move, or after up/leave/blur);
// the field then falls back to pure decay. x and y are normalized to
// [0,2] per axis. *pointer.Tracker satisfies Source.
type Source interface {
	Sample() (x, y float64, ok bool)
}

// Options configures a trail field.
type Options struct {
	// Resolution is the grid edge length N; the grid is N×N cells.
	Resolution int

	// Radius is the brush influence radius as a fraction of the grid edge.
	Radius float64

	// Strength scales every deposit.
	Strength float64

	// Decay multiplies the first three channels of every cell each frame.
	// Must be in [0,1]; 1 disables fading.
	Decay float64

	// Gain is an additional deposit multiplier, kept separate from
	// Strength so sketches can modulate it per-frame.
	Gain float64

	// Gamma is the exponent applied to velocity components and speed,
	// shaping the non-linear response to pointer motion. Must be > 0.
	Gamma float64
}

// DefaultOptions returns the options used by the starter sketches.
func DefaultOptions() Options {
	return Options{
		Resolution: 64,
		Radius:     0.12,
		Strength:   0.8,
		Decay:      0.925,
		Gain:       1.0,
		Gamma:      1.6,
	}
}

func (o Options) validate() error {
	if o.Resolution <= 0 {
		return fmt.Errorf("field: resolution %d out of range", o.Resolution)
	}
	if o.Decay < 0 || o.Decay > 1 {
		return fmt.Errorf("field: decay %v outside [0,1]", o.Decay)
	}
	if o.Radius <= 0 {
		return fmt.Errorf("field: radius %v must be positive", o.Radius)
	}
	if o.Gamma <= 0 {
		return fmt.Errorf("field: gamma %v must be positive", o.Gamma)
	}
	return nil
}

// TrailField accumulates decaying pointer motion on a fixed N×N grid.
//
// Cell layout is 4 float32 channels: direction X (inverted), direction Y,
// speed magnitude, unused. The field is the only writer of its buffer and
// mutates it exclusively on the Advance path; shader reads tolerate
// one-frame staleness through the buffer's dirty flag.
type TrailField struct {
	opts   Options
	source Source
	buf    *render.Buffer

	velX, velY   float64
	prevX, prevY float64
	hasPrev      bool
}

// New creates a trail field reading pointer samples from source.
// The grid resolution is fixed at creation.
func New(opts Options, source Source) (*TrailField, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &TrailField{
		opts:   opts,
		source: source,
		buf:    render.NewBuffer(opts.Resolution * opts.Resolution * 4),
	}, nil
}

// Buffer returns the GPU-visible grid buffer. The GPU layer uploads it as
// an RGBA32Float texture sampled with nearest min/mag filtering.
func (f *TrailField) Buffer() *render.Buffer { return f.buf }

// Resolution returns the grid edge length.
func (f *TrailField) Resolution() int { return f.opts.Resolution }

// Velocity returns the stored pointer velocity after the last Advance.
func (f *TrailField) Velocity() (x, y float64) { return f.velX, f.velY }

// Advance runs one frame of the accumulator. With no pointer sample the
// grid purely decays; otherwise the frame-to-frame pointer delta is
// deposited as a radial brush, then the stored velocity itself decays and
// snaps to zero below velocityEpsilon.
func (f *TrailField) Advance() {
	x, y, ok := f.source.Sample()
	if !ok {
		f.fade()
		f.buf.MarkDirty()
		return
	}

	if !f.hasPrev {
		f.prevX, f.prevY = x, y
		f.hasPrev = true
	}
	f.velX = x - f.prevX
	f.velY = y - f.prevY
	f.prevX, f.prevY = x, y

	f.fade()
	f.deposit(x, y)
	f.buf.MarkDirty()

	f.velX *= f.opts.Decay
	f.velY *= f.opts.Decay
	if math.Abs(f.velX) < velocityEpsilon {
		f.velX = 0
	}
	if math.Abs(f.velY) < velocityEpsilon {
		f.velY = 0
	}
}

// fade multiplies the first three channels of every cell by the decay
// factor. The fourth channel is unused and stays untouched.
func (f *TrailField) fade() {
	decay := float32(f.opts.Decay)
	cells := f.buf.Data()
	for i := 0; i < len(cells); i += 4 {
		cells[i] *= decay
		cells[i+1] *= decay
		cells[i+2] *= decay
	}
}

// deposit stamps the velocity brush centered on the pointer position
// (normalized [0,2] per axis). Deposits accumulate, so overlapping brush
// passes within the same frame add up.
func (f *TrailField) deposit(x, y float64) {
	n := f.opts.Resolution
	cells := f.buf.Data()

	px := x / 2 * float64(n)
	py := y / 2 * float64(n)
	radius := f.opts.Radius * float64(n)
	r2 := radius * radius

	speed := math.Hypot(f.velX, f.velY)
	dirX := -signedPow(f.velX, f.opts.Gamma) // inverted X by convention
	dirY := signedPow(f.velY, f.opts.Gamma)
	mag := math.Pow(speed, f.opts.Gamma)

	i0 := clampIndex(int(math.Floor(px-radius))-1, n)
	i1 := clampIndex(int(math.Ceil(px+radius))+1, n)
	j0 := clampIndex(int(math.Floor(py-radius))-1, n)
	j1 := clampIndex(int(math.Ceil(py+radius))+1, n)

	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			dx := px - float64(i)
			dy := py - float64(j)
			d2 := dx*dx + dy*dy
			// Strictly positive distance avoids the 1/sqrt singularity
			// at the exact brush center.
			if d2 >= r2 || d2 <= 0 {
				continue
			}
			force := 1 / math.Sqrt(d2)
			if force > maxForce {
				force = maxForce
			}
			power := f.opts.Gain * f.opts.Strength * force

			idx := (j*n + i) * 4
			cells[idx] += float32(dirX * power)
			cells[idx+1] += float32(dirY * power)
			cells[idx+2] += float32(mag * power)
		}
	}
}

// Cell returns the four channels of cell (i, j).
func (f *TrailField) Cell(i, j int) (r, g, b, a float32) {
	idx := (j*f.opts.Resolution + i) * 4
	cells := f.buf.Data()
	return cells[idx], cells[idx+1], cells[idx+2], cells[idx+3]
}

// Sample reads the cell under a normalized [0,2] position using the same
// nearest rule as the shader. Used by CPU fallback rendering and tests.
func (f *TrailField) Sample(x, y float64) (r, g, b float32) {
	n := f.opts.Resolution
	i := clampIndex(int(x/2*float64(n)), n)
	j := clampIndex(int(y/2*float64(n)), n)
	cr, cg, cb, _ := f.Cell(i, j)
	return cr, cg, cb
}

// signedPow raises |v| to the exponent while preserving the sign.
func signedPow(v, exp float64) float64 {
	if v == 0 {
		return 0
	}
	if v < 0 {
		return -math.Pow(-v, exp)
	}
	return math.Pow(v, exp)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
