// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/atelier/render"
)

// Default trigger parameters.
const (
	DefaultDuration = 2500 * time.Millisecond
	DefaultTarget   = 1.0
)

// Target returns a pointer to v for [TriggerOptions.Target].
func Target(v float64) *float64 { return &v }

// TriggerOptions parameterizes one animation. The zero value animates to
// DefaultTarget over DefaultDuration with a linear curve.
type TriggerOptions struct {
	// Target is the final value; nil means DefaultTarget. An explicit
	// Target(0) animates toward zero, it does not select the default.
	Target *float64

	// Duration bounds a time-based animation; 0 means DefaultDuration.
	// Ignored for EasingSpring.
	Duration time.Duration

	// Easing selects the curve, or EasingSpring for integrator-driven
	// evolution.
	Easing Easing

	// Spring configures the integrator when Easing is EasingSpring.
	// The zero value uses the integrator defaults.
	Spring SpringConfig

	// Data carries one-shot payload values copied into the pool's named
	// channels at the allocated slot. Each slice must match the channel's
	// stride.
	Data map[string][]float64
}

// recordKind tags the two animation variants.
type recordKind uint8

const (
	recordEased recordKind = iota
	recordSpring
)

// record is the per-slot animation state. Eased records advance on the
// frame tick; spring records exist only so the pool remembers the slot is
// integrator-owned.
type record struct {
	kind recordKind

	// eased fields
	started  bool
	start    time.Time
	duration time.Duration
	easing   Easing
	target   float64
}

// channel is one named auxiliary payload array.
type channel struct {
	buf    *render.Buffer
	stride int
}

// Pool is a fixed pool of animation slots backing GPU-visible arrays.
//
// The active and value arrays are parallel: active[i] is 1 while slot i is
// owned by a running animation and 0 otherwise; value[i] is the animation's
// current scalar. A slot index is reused only after being freed, and
// indices are not stable across allocations.
//
// All methods must be called from the frame goroutine.
type Pool struct {
	size     int
	active   *render.Buffer
	value    *render.Buffer
	channels map[string]channel
	records  []*record

	integrator Integrator
	logger     *slog.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithChannel declares a named payload channel of the given stride. The
// backing buffer holds size×stride float32 values.
func WithChannel(name string, stride int) PoolOption {
	return func(p *Pool) {
		p.channels[name] = channel{
			buf:    render.NewBuffer(p.size * stride),
			stride: stride,
		}
	}
}

// WithIntegrator replaces the spring integrator. Useful for tests and for
// hosts that run their own physics.
func WithIntegrator(i Integrator) PoolOption {
	return func(p *Pool) { p.integrator = i }
}

// WithLogger sets the pool's diagnostic logger. The default discards
// everything.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates a pool of size slots.
func NewPool(size int, opts ...PoolOption) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("anim: pool size %d must be positive", size)
	}
	p := &Pool{
		size:     size,
		active:   render.NewBuffer(size),
		value:    render.NewBuffer(size),
		channels: make(map[string]channel),
		records:  make([]*record, size),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.integrator == nil {
		p.integrator = NewHarmonicaIntegrator(60)
	}
	return p, nil
}

// Size returns the number of slots.
func (p *Pool) Size() int { return p.size }

// Active returns the GPU-visible active-flag buffer (0/1 per slot).
func (p *Pool) Active() *render.Buffer { return p.active }

// Values returns the GPU-visible value buffer.
func (p *Pool) Values() *render.Buffer { return p.value }

// Channel returns a named payload buffer, or nil if it was not declared.
func (p *Pool) Channel(name string) *render.Buffer {
	c, ok := p.channels[name]
	if !ok {
		return nil
	}
	return c.buf
}

// ActiveCount returns the number of occupied slots.
func (p *Pool) ActiveCount() int {
	n := 0
	for _, a := range p.active.Data() {
		if a != 0 {
			n++
		}
	}
	return n
}

// Trigger starts one animation in the first free slot, scanning from index
// 0. It returns the allocated slot index. A saturated pool drops the
// trigger and returns ok=false; this is the intended saturation policy, not
// an error, so only a warning is logged.
func (p *Pool) Trigger(opts TriggerOptions) (slot int, ok bool) {
	slot = -1
	for i, a := range p.active.Data() {
		if a == 0 {
			slot = i
			break
		}
	}
	if slot < 0 {
		p.logger.Warn("anim: slot pool saturated, trigger dropped", "size", p.size)
		return -1, false
	}

	target := DefaultTarget
	if opts.Target != nil {
		target = *opts.Target
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}

	p.active.Data()[slot] = 1
	p.active.MarkDirty()
	p.copyPayload(slot, opts.Data)

	if opts.Easing == EasingSpring {
		p.records[slot] = &record{kind: recordSpring}
		idx := slot
		p.integrator.Animate(
			float64(p.value.Data()[idx]),
			target,
			opts.Spring,
			func(v float64) {
				p.value.Data()[idx] = float32(v)
				p.value.MarkDirty()
			},
			func() { p.free(idx) },
		)
		return slot, true
	}

	// Start time stays unset until the first frame tick observes the
	// record.
	p.records[slot] = &record{
		kind:     recordEased,
		duration: opts.Duration,
		easing:   opts.Easing,
		target:   target,
	}
	return slot, true
}

// copyPayload writes provided named payload values into the matching
// channels at the slot. Unknown channel names and mismatched strides are
// diagnostics, not failures.
func (p *Pool) copyPayload(slot int, data map[string][]float64) {
	for name, values := range data {
		c, ok := p.channels[name]
		if !ok {
			p.logger.Warn("anim: payload for undeclared channel", "channel", name)
			continue
		}
		if len(values) != c.stride {
			p.logger.Warn("anim: payload stride mismatch",
				"channel", name, "got", len(values), "want", c.stride)
		}
		base := slot * c.stride
		for i := 0; i < c.stride && i < len(values); i++ {
			c.buf.Data()[base+i] = float32(values[i])
		}
		c.buf.MarkDirty()
	}
}

// Advance steps every time-based animation to now. Spring-driven slots are
// skipped entirely: their value mutation happens solely in the integrator's
// callbacks. A record seen for the first time starts its clock at now.
// When progress reaches 1 the slot is freed and the record dropped.
func (p *Pool) Advance(now time.Time) {
	for i, rec := range p.records {
		if rec == nil || rec.kind != recordEased {
			continue
		}
		if !rec.started {
			rec.started = true
			rec.start = now
		}
		elapsed := now.Sub(rec.start)
		progress := float64(elapsed) / float64(rec.duration)
		if progress > 1 {
			progress = 1
		}
		eased := Ease(rec.easing, progress)
		p.value.Data()[i] = float32(eased * rec.target)
		p.value.MarkDirty()

		if progress >= 1 {
			p.free(i)
		}
	}
}

// free releases a slot: active and value reset to 0, buffers marked dirty,
// record dropped.
func (p *Pool) free(slot int) {
	p.active.Data()[slot] = 0
	p.value.Data()[slot] = 0
	p.active.MarkDirty()
	p.value.MarkDirty()
	p.records[slot] = nil
}
