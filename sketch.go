// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atelier

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/atelier/anim"
	"github.com/gogpu/atelier/field"
	"github.com/gogpu/atelier/frame"
	"github.com/gogpu/atelier/pointer"
)

// Renderer draws one frame from the sketch's current buffers. The sketch
// invokes it after all simulation for the frame has completed, so dirty
// buffers reflect this frame's state.
type Renderer interface {
	RenderFrame(f *field.TrailField, p *anim.Pool) error
}

// Sketch wires the starter-kit units onto a single frame loop: pointer
// samples feed the trail field, spring integration and the slot pool step
// at simulation priority, and an optional renderer runs last.
//
// Sketch is single-threaded. Deliver events, trigger animations, and step
// frames from one goroutine.
type Sketch struct {
	loop       *frame.Loop
	tracker    *pointer.Tracker
	field      *field.TrailField
	pool       *anim.Pool
	integrator *anim.HarmonicaIntegrator

	renderer     Renderer
	removeRender func()
}

// NewSketch constructs a sketch from cfg. Zero-valued Config fields take
// defaults; invalid field or pool parameters are reported as errors.
func NewSketch(cfg Config) (*Sketch, error) {
	cfg = cfg.withDefaults()

	tracker := pointer.NewTracker(cfg.Bounds)

	fld, err := field.New(cfg.Field, tracker)
	if err != nil {
		return nil, fmt.Errorf("atelier: %w", err)
	}

	integrator := anim.NewHarmonicaIntegrator(cfg.FPS)
	poolOpts := []anim.PoolOption{
		anim.WithIntegrator(integrator),
		anim.WithLogger(liveLogger()),
	}
	for name, stride := range cfg.Channels {
		poolOpts = append(poolOpts, anim.WithChannel(name, stride))
	}
	pool, err := anim.NewPool(cfg.PoolSize, poolOpts...)
	if err != nil {
		return nil, fmt.Errorf("atelier: %w", err)
	}

	s := &Sketch{
		loop:       frame.NewLoop(cfg.Clock),
		tracker:    tracker,
		field:      fld,
		pool:       pool,
		integrator: integrator,
	}
	s.loop.OnFrame(frame.PrioritySimulation, func(now time.Time, _ time.Duration) {
		s.integrator.Step()
		s.field.Advance()
		s.pool.Advance(now)
	})
	return s, nil
}

// Pointer delivers a pointer event to the tracker. The new sample takes
// effect on the next frame's field advance.
func (s *Sketch) Pointer(ev pointer.Event) error {
	return s.tracker.Deliver(ev)
}

// Trigger starts a slot animation. See [anim.Pool.Trigger].
func (s *Sketch) Trigger(opts anim.TriggerOptions) (slot int, ok bool) {
	return s.pool.Trigger(opts)
}

// SetRenderer installs (or, with nil, removes) the renderer invoked at the
// end of every frame. A render error is logged as a warning and does not
// stop the loop.
func (s *Sketch) SetRenderer(r Renderer) {
	if s.removeRender != nil {
		s.removeRender()
		s.removeRender = nil
	}
	s.renderer = r
	if r == nil {
		return
	}
	s.removeRender = s.loop.OnFrame(frame.PriorityRender, func(time.Time, time.Duration) {
		if err := r.RenderFrame(s.field, s.pool); err != nil {
			Logger().Warn("atelier: render failed", "error", err)
		}
	})
}

// Step advances one frame: simulation first, then rendering.
func (s *Sketch) Step() { s.loop.Step() }

// Run steps n frames, advancing a manual clock by interval between frames,
// or until ctx is canceled. See [frame.Loop.Run].
func (s *Sketch) Run(ctx context.Context, n int, interval time.Duration) error {
	return s.loop.Run(ctx, n, interval)
}

// Field returns the trail field.
func (s *Sketch) Field() *field.TrailField { return s.field }

// Pool returns the slot pool.
func (s *Sketch) Pool() *anim.Pool { return s.pool }

// Tracker returns the pointer tracker.
func (s *Sketch) Tracker() *pointer.Tracker { return s.tracker }

// Loop returns the frame loop, for registering additional callbacks.
func (s *Sketch) Loop() *frame.Loop { return s.loop }
