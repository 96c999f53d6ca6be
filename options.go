// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atelier

import (
	"github.com/gogpu/atelier/field"
	"github.com/gogpu/atelier/frame"
	"github.com/gogpu/atelier/pointer"
)

// Default configuration values.
const (
	// DefaultPoolSize is the number of animation slots when Config.PoolSize
	// is zero.
	DefaultPoolSize = 64

	// DefaultFPS is the assumed frame rate for the spring integrator when
	// Config.FPS is zero.
	DefaultFPS = 60
)

// Config configures a Sketch. The zero value is usable for headless tests;
// interactive use needs at least Bounds so pointer events can be
// normalized.
type Config struct {
	// Field holds the trail field parameters. Zero-value fields take the
	// field package defaults.
	Field field.Options

	// PoolSize is the fixed number of animation slots.
	PoolSize int

	// Channels declares named per-slot payload buffers and their strides,
	// e.g. {"position": 3}.
	Channels map[string]int

	// FPS is the frame rate the spring integrator assumes.
	FPS int

	// Bounds resolves the target surface rectangle for pointer
	// normalization. Left nil, the first pointer move fails with
	// pointer.ErrNoBounds.
	Bounds pointer.BoundsFunc

	// Clock supplies frame time. Nil defaults to the system clock; tests
	// use frame.ManualClock.
	Clock frame.Clock
}

func (c Config) withDefaults() Config {
	if c.Field == (field.Options{}) {
		c.Field = field.DefaultOptions()
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	return c
}
