// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

// Easing names a deterministic curve mapping normalized time progress
// [0,1] to eased progress [0,1]. EasingSpring is special: it selects the
// external spring integrator instead of a closed-form curve.
type Easing uint8

const (
	// EasingLinear maps progress unchanged.
	EasingLinear Easing = iota
	// EasingIn accelerates: p².
	EasingIn
	// EasingOut decelerates: p·(2−p).
	EasingOut
	// EasingInOut blends quadratics with a continuous midpoint at 0.5.
	EasingInOut
	// EasingSpring delegates value evolution to the spring integrator.
	EasingSpring
)

// String returns the curve name.
func (e Easing) String() string {
	switch e {
	case EasingLinear:
		return "linear"
	case EasingIn:
		return "easeIn"
	case EasingOut:
		return "easeOut"
	case EasingInOut:
		return "easeInOut"
	case EasingSpring:
		return "spring"
	default:
		return "unknown"
	}
}

// Ease applies the curve to a progress value. Progress outside [0,1] is
// clamped first; EasingSpring has no closed form and eases linearly if it
// ever reaches here.
func Ease(e Easing, p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	switch e {
	case EasingIn:
		return p * p
	case EasingOut:
		return p * (2 - p)
	case EasingInOut:
		if p < 0.5 {
			return 2 * p * p
		}
		return -1 + (4-2*p)*p
	default:
		return p
	}
}
