// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package anim implements the slot-based buffer animator: a fixed pool of
// animation slots backing GPU-visible arrays.
//
// A [Pool] owns parallel active/value buffers of fixed size plus optional
// named payload channels. [Pool.Trigger] allocates the first free slot by
// linear scan; a saturated pool drops the trigger with a warning, which is
// the intended policy rather than an error. Time-based slots advance once
// per frame through [Pool.Advance] with one of the closed-form easing
// curves; spring slots delegate their value evolution entirely to an
// [Integrator] (the harmonica-backed [HarmonicaIntegrator] by default) and
// are never touched by the per-frame advance path.
package anim
