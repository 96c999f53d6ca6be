// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Spring defaults follow the common stiffness/damping convention of web
// animation libraries.
const (
	DefaultStiffness = 170.0
	DefaultDamping   = 26.0

	// Rest thresholds: a spring completes when both its distance to the
	// target and its velocity drop below these values.
	restDelta = 1e-3
	restSpeed = 1e-3
)

// SpringConfig parameterizes a spring-driven animation. Zero fields use
// the defaults.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
}

func (c SpringConfig) withDefaults() SpringConfig {
	if c.Stiffness <= 0 {
		c.Stiffness = DefaultStiffness
	}
	if c.Damping <= 0 {
		c.Damping = DefaultDamping
	}
	return c
}

// Integrator evolves spring-driven animation values outside the pool's
// per-frame easing path. Implementations invoke onUpdate with each new
// value and onComplete exactly once when the animation settles.
type Integrator interface {
	Animate(from, to float64, cfg SpringConfig, onUpdate func(float64), onComplete func())
}

// springState is one in-flight spring integration.
type springState struct {
	spring     harmonica.Spring
	pos, vel   float64
	target     float64
	onUpdate   func(float64)
	onComplete func()
}

// HarmonicaIntegrator advances spring animations with harmonica's
// damped-harmonic-oscillator solver at a fixed timestep. Register its Step
// method on the frame loop at simulation priority; each Step advances all
// in-flight springs by one frame.
type HarmonicaIntegrator struct {
	fps     int
	springs []*springState
}

// NewHarmonicaIntegrator creates an integrator stepping at the given frame
// rate. Non-positive rates default to 60.
func NewHarmonicaIntegrator(fps int) *HarmonicaIntegrator {
	if fps <= 0 {
		fps = 60
	}
	return &HarmonicaIntegrator{fps: fps}
}

// Animate starts one spring from the current value toward the target.
// The stiffness/damping pair converts to harmonica's angular frequency and
// damping ratio (ω = √k, ζ = c / 2√k for unit mass).
func (h *HarmonicaIntegrator) Animate(from, to float64, cfg SpringConfig, onUpdate func(float64), onComplete func()) {
	cfg = cfg.withDefaults()
	omega := math.Sqrt(cfg.Stiffness)
	zeta := cfg.Damping / (2 * math.Sqrt(cfg.Stiffness))

	h.springs = append(h.springs, &springState{
		spring:     harmonica.NewSpring(harmonica.FPS(h.fps), omega, zeta),
		pos:        from,
		target:     to,
		onUpdate:   onUpdate,
		onComplete: onComplete,
	})
}

// Step advances every in-flight spring by one frame, invoking update
// callbacks and retiring completed springs.
func (h *HarmonicaIntegrator) Step() {
	for i := 0; i < len(h.springs); {
		s := h.springs[i]
		s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)

		if math.Abs(s.pos-s.target) < restDelta && math.Abs(s.vel) < restSpeed {
			s.onUpdate(s.target)
			if s.onComplete != nil {
				s.onComplete()
			}
			// Swap-delete; spring order is not observable.
			last := len(h.springs) - 1
			h.springs[i] = h.springs[last]
			h.springs = h.springs[:last]
			continue
		}

		s.onUpdate(s.pos)
		i++
	}
}

// Len returns the number of in-flight springs.
func (h *HarmonicaIntegrator) Len() int { return len(h.springs) }
