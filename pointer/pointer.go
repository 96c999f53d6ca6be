// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pointer

import "errors"

// ErrNoBounds reports that the target surface bounds could not be resolved
// when a move event arrived. This is a configuration error, not a runtime
// hiccup: every subsequent coordinate would be silently wrong, so the event
// is rejected instead of misplacing the brush.
var ErrNoBounds = errors.New("pointer: target surface bounds unavailable")

// Kind is the type of a pointer event.
type Kind uint8

const (
	// KindMove reports a pointer position change.
	KindMove Kind = iota
	// KindUp reports a button or touch release.
	KindUp
	// KindLeave reports the pointer leaving the target surface.
	KindLeave
	// KindBlur reports the target surface losing focus.
	KindBlur
)

// String returns the event kind name.
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindUp:
		return "up"
	case KindLeave:
		return "leave"
	case KindBlur:
		return "blur"
	default:
		return "unknown"
	}
}

// Event is one pointer notification with raw device coordinates.
type Event struct {
	Kind Kind
	X, Y float64
}

// Bounds is the target surface rectangle in device coordinates.
type Bounds struct {
	X, Y, W, H float64
}

// valid reports whether the rectangle can normalize coordinates.
func (b Bounds) valid() bool {
	return b.W > 0 && b.H > 0
}

// BoundsFunc resolves the current target surface bounds. The second return
// value reports whether resolution succeeded.
type BoundsFunc func() (Bounds, bool)

// FixedBounds returns a BoundsFunc for a surface that never moves.
func FixedBounds(b Bounds) BoundsFunc {
	return func() (Bounds, bool) { return b, true }
}

// Tracker turns raw pointer events into normalized samples.
//
// After a move event, [Tracker.Sample] reports the position scaled to [0,2]
// per axis (the trail field's symmetric grid addressing) and [Tracker.NDC]
// mirrors it in [-1,1] with Y up. Up, leave, and blur events clear the
// sample so the field falls back to pure decay; the NDC mirror keeps its
// last value, matching how a shader uniform holds between updates.
//
// Tracker is not safe for concurrent use; events must be delivered from the
// frame goroutine.
type Tracker struct {
	boundsFn BoundsFunc
	bounds   Bounds
	resolved bool

	x, y    float64 // normalized [0,2]
	ndcX    float64 // [-1,1]
	ndcY    float64 // [-1,1], positive up
	present bool
}

// NewTracker creates a tracker resolving surface geometry through boundsFn.
func NewTracker(boundsFn BoundsFunc) *Tracker {
	return &Tracker{boundsFn: boundsFn}
}

// Deliver processes one pointer event. Move events require resolvable
// bounds: if the cached geometry is unavailable it is recomputed on demand,
// and if resolution still fails Deliver returns [ErrNoBounds].
func (t *Tracker) Deliver(ev Event) error {
	switch ev.Kind {
	case KindMove:
		if !t.resolved {
			if err := t.resolveBounds(); err != nil {
				return err
			}
		}
		fx := (ev.X - t.bounds.X) / t.bounds.W
		fy := (ev.Y - t.bounds.Y) / t.bounds.H
		t.x = fx * 2
		t.y = fy * 2
		t.ndcX = fx*2 - 1
		t.ndcY = 1 - fy*2
		t.present = true
	case KindUp, KindLeave, KindBlur:
		t.present = false
	}
	return nil
}

func (t *Tracker) resolveBounds() error {
	b, ok := t.boundsFn()
	if !ok || !b.valid() {
		return ErrNoBounds
	}
	t.bounds = b
	t.resolved = true
	return nil
}

// InvalidateBounds drops the cached surface geometry. The host calls this
// when the surface is moved or resized; the next move event re-resolves.
func (t *Tracker) InvalidateBounds() {
	t.resolved = false
}

// Sample returns the current normalized position in [0,2] per axis. ok is
// false before the first move event and after an up, leave, or blur event.
func (t *Tracker) Sample() (x, y float64, ok bool) {
	return t.x, t.y, t.present
}

// NDC returns the pointer position in normalized device coordinates,
// [-1,1] per axis with Y pointing up. The value persists across sample
// clears so shader uniforms hold their last state.
func (t *Tracker) NDC() (x, y float64) {
	return t.ndcX, t.ndcY
}
