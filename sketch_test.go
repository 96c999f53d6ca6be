// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atelier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/atelier/anim"
	"github.com/gogpu/atelier/field"
	"github.com/gogpu/atelier/frame"
	"github.com/gogpu/atelier/pointer"
)

func testConfig(clock frame.Clock) Config {
	return Config{
		Bounds: pointer.FixedBounds(pointer.Bounds{W: 100, H: 100}),
		Clock:  clock,
	}
}

func TestNewSketchDefaults(t *testing.T) {
	sk, err := NewSketch(Config{})
	if err != nil {
		t.Fatalf("NewSketch(zero Config) = %v", err)
	}
	if got := sk.Pool().Size(); got != DefaultPoolSize {
		t.Errorf("pool size = %d, want %d", got, DefaultPoolSize)
	}
	if got := sk.Field().Resolution(); got != field.DefaultOptions().Resolution {
		t.Errorf("field resolution = %d, want %d", got, field.DefaultOptions().Resolution)
	}
}

func TestNewSketchInvalidField(t *testing.T) {
	cfg := Config{Field: field.Options{Resolution: -1, Radius: 0.1, Gamma: 1, Decay: 0.9}}
	if _, err := NewSketch(cfg); err == nil {
		t.Error("NewSketch with negative resolution = nil error, want failure")
	}
}

func TestPointerMotionDepositsOnStep(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	sk, err := NewSketch(testConfig(clock))
	if err != nil {
		t.Fatal(err)
	}

	// Two moves establish a velocity; the deposit lands on the next frame.
	if err := sk.Pointer(pointer.Event{Kind: pointer.KindMove, X: 40, Y: 50}); err != nil {
		t.Fatalf("Pointer() = %v", err)
	}
	sk.Step()
	clock.Advance(16 * time.Millisecond)
	sk.Pointer(pointer.Event{Kind: pointer.KindMove, X: 60, Y: 50})
	sk.Step()

	var total float32
	for _, v := range sk.Field().Buffer().Data() {
		total += abs32(v)
	}
	if total == 0 {
		t.Error("no energy in the field after pointer motion")
	}
	if !sk.Field().Buffer().Dirty() {
		t.Error("field buffer not dirty after deposit")
	}
}

func TestPointerWithoutBounds(t *testing.T) {
	sk, err := NewSketch(Config{})
	if err != nil {
		t.Fatal(err)
	}
	err = sk.Pointer(pointer.Event{Kind: pointer.KindMove, X: 1, Y: 1})
	if !errors.Is(err, pointer.ErrNoBounds) {
		t.Errorf("Pointer() without bounds = %v, want ErrNoBounds", err)
	}
}

func TestTriggerAdvancesWithFrames(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	sk, err := NewSketch(testConfig(clock))
	if err != nil {
		t.Fatal(err)
	}

	slot, ok := sk.Trigger(anim.TriggerOptions{Duration: time.Second})
	if !ok {
		t.Fatal("Trigger dropped on an empty pool")
	}

	if err := sk.Run(context.Background(), 31, 1*time.Second/60); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	got := sk.Pool().Values().Data()[slot]
	if got <= 0.4 || got >= 0.6 {
		t.Errorf("value after ~0.5s of frames = %v, want ≈ 0.5", got)
	}
}

func TestSpringTriggerSettlesViaFrames(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	sk, err := NewSketch(testConfig(clock))
	if err != nil {
		t.Fatal(err)
	}

	slot, ok := sk.Trigger(anim.TriggerOptions{Target: anim.Target(1), Easing: anim.EasingSpring})
	if !ok {
		t.Fatal("Trigger dropped")
	}

	// The sketch steps the integrator each frame; the default spring
	// settles within a few simulated seconds, freeing the slot.
	if err := sk.Run(context.Background(), 600, 1*time.Second/60); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if sk.Pool().Active().Data()[slot] != 0 {
		t.Error("spring slot still active after settling window")
	}
}

// orderRenderer records whether the pool had advanced before rendering.
type orderRenderer struct {
	frames int
	value  float32
	err    error
}

func (r *orderRenderer) RenderFrame(f *field.TrailField, p *anim.Pool) error {
	r.frames++
	r.value = p.Values().Data()[0]
	return r.err
}

func TestRendererRunsAfterSimulation(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	sk, err := NewSketch(testConfig(clock))
	if err != nil {
		t.Fatal(err)
	}

	r := &orderRenderer{}
	sk.SetRenderer(r)

	sk.Trigger(anim.TriggerOptions{Duration: time.Second})
	sk.Step() // frame 1: starts the clock
	clock.Advance(500 * time.Millisecond)
	sk.Step() // frame 2: pool advances to 0.5, then renderer runs

	if r.frames != 2 {
		t.Fatalf("renderer ran %d times, want 2", r.frames)
	}
	if r.value != 0.5 {
		t.Errorf("renderer observed value %v, want 0.5 (post-advance)", r.value)
	}
}

func TestSetRendererReplaceAndRemove(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	sk, err := NewSketch(testConfig(clock))
	if err != nil {
		t.Fatal(err)
	}

	first := &orderRenderer{}
	second := &orderRenderer{}
	sk.SetRenderer(first)
	sk.Step()
	sk.SetRenderer(second)
	sk.Step()
	sk.SetRenderer(nil)
	sk.Step()

	if first.frames != 1 {
		t.Errorf("replaced renderer ran %d times, want 1", first.frames)
	}
	if second.frames != 1 {
		t.Errorf("second renderer ran %d times, want 1", second.frames)
	}
}

func TestRenderErrorDoesNotStopLoop(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	sk, err := NewSketch(testConfig(clock))
	if err != nil {
		t.Fatal(err)
	}

	r := &orderRenderer{err: errors.New("device lost")}
	sk.SetRenderer(r)
	sk.Step()
	sk.Step()

	if r.frames != 2 {
		t.Errorf("renderer ran %d times after erroring, want 2", r.frames)
	}
}

func TestRunCancelled(t *testing.T) {
	clock := frame.NewManualClock(time.Unix(0, 0))
	sk, err := NewSketch(testConfig(clock))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sk.Run(ctx, 10, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Errorf("Run on canceled ctx = %v, want context.Canceled", err)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
