// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"context"
	"slices"
	"time"
)

// Callback is invoked once per frame with the frame's absolute time and the
// elapsed duration since the previous frame. The first frame reports a zero
// elapsed duration.
type Callback func(now time.Time, elapsed time.Duration)

// Well-known priorities. Lower values run earlier in the frame. The
// simulation units (spring integration, trail field, slot pool) register at
// PrioritySimulation so they observe tick time before any other consumer;
// rendering runs last.
const (
	PrioritySimulation = 0
	PriorityDefault    = 100
	PriorityRender     = 200
)

type handler struct {
	priority int
	seq      int // registration order, breaks priority ties
	fn       Callback
	removed  bool
}

// Loop invokes registered callbacks once per frame in priority order.
//
// Loop is strictly single-threaded: Step runs every callback to completion
// before returning, and all methods must be called from the same goroutine.
// Callbacks may register or remove other callbacks; changes take effect on
// the next frame.
type Loop struct {
	clock    Clock
	handlers []*handler
	nextSeq  int
	last     time.Time
	started  bool
	stepping bool
	pending  []*handler
}

// NewLoop creates a frame loop reading time from clock. A nil clock defaults
// to the system clock.
func NewLoop(clock Clock) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{clock: clock}
}

// OnFrame registers fn at the given priority and returns a removal function.
// Callbacks at equal priority run in registration order. The removal
// function is idempotent.
func (l *Loop) OnFrame(priority int, fn Callback) (remove func()) {
	h := &handler{priority: priority, seq: l.nextSeq, fn: fn}
	l.nextSeq++
	if l.stepping {
		l.pending = append(l.pending, h)
	} else {
		l.insert(h)
	}
	return func() { h.removed = true }
}

func (l *Loop) insert(h *handler) {
	at, _ := slices.BinarySearchFunc(l.handlers, h, func(a, b *handler) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return a.seq - b.seq
	})
	l.handlers = slices.Insert(l.handlers, at, h)
}

// Step advances the loop by one frame: reads the clock, computes the elapsed
// duration, and invokes every live callback in priority order.
func (l *Loop) Step() {
	now := l.clock.Now()
	var elapsed time.Duration
	if l.started {
		elapsed = now.Sub(l.last)
	}
	l.started = true
	l.last = now

	l.stepping = true
	for _, h := range l.handlers {
		if h.removed {
			continue
		}
		h.fn(now, elapsed)
	}
	l.stepping = false

	// Integrate registrations made during the frame and drop removals.
	for _, h := range l.pending {
		l.insert(h)
	}
	l.pending = l.pending[:0]
	l.handlers = slices.DeleteFunc(l.handlers, func(h *handler) bool { return h.removed })
}

// Run steps the loop until frames have elapsed or ctx is canceled. A
// non-positive frames value runs until cancellation. When the clock is a
// *ManualClock, Run advances it by interval each frame and never sleeps;
// otherwise it sleeps interval between frames.
func (l *Loop) Run(ctx context.Context, frames int, interval time.Duration) error {
	manual, isManual := l.clock.(*ManualClock)
	for i := 0; frames <= 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.Step()
		if isManual {
			manual.Advance(interval)
			continue
		}
		if interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}
