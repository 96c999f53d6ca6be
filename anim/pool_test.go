// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"
)

// fakeIntegrator records Animate calls without evolving anything, so tests
// can verify the spring path in isolation.
type fakeIntegrator struct {
	calls []fakeCall
}

type fakeCall struct {
	from, to   float64
	cfg        SpringConfig
	onUpdate   func(float64)
	onComplete func()
}

func (f *fakeIntegrator) Animate(from, to float64, cfg SpringConfig, onUpdate func(float64), onComplete func()) {
	f.calls = append(f.calls, fakeCall{from, to, cfg, onUpdate, onComplete})
}

func mustPool(t *testing.T, size int, opts ...PoolOption) *Pool {
	t.Helper()
	p, err := NewPool(size, opts...)
	if err != nil {
		t.Fatalf("NewPool() = %v", err)
	}
	return p
}

func TestNewPoolRejectsNonPositiveSize(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := NewPool(n); err == nil {
			t.Errorf("NewPool(%d) = nil error, want failure", n)
		}
	}
}

func TestTriggerAllocatesFirstFreeSlot(t *testing.T) {
	p := mustPool(t, 4)

	for want := 0; want < 4; want++ {
		slot, ok := p.Trigger(TriggerOptions{})
		if !ok || slot != want {
			t.Fatalf("Trigger #%d = (%d, %v), want (%d, true)", want, slot, ok, want)
		}
	}
	if p.ActiveCount() != 4 {
		t.Errorf("ActiveCount() = %d, want 4", p.ActiveCount())
	}
}

func TestTriggerSaturationIsDroppedNoOp(t *testing.T) {
	var logBuf bytes.Buffer
	p := mustPool(t, 3, WithLogger(slog.New(slog.NewTextHandler(&logBuf, nil))))

	for i := 0; i < 3; i++ {
		if _, ok := p.Trigger(TriggerOptions{}); !ok {
			t.Fatalf("Trigger #%d dropped before saturation", i)
		}
	}

	before := make([]float32, 3)
	copy(before, p.Active().Data())
	p.Active().TakeDirty()

	slot, ok := p.Trigger(TriggerOptions{})
	if ok || slot != -1 {
		t.Errorf("saturated Trigger = (%d, %v), want (-1, false)", slot, ok)
	}
	for i, a := range p.Active().Data() {
		if a != before[i] {
			t.Errorf("active[%d] changed on a dropped trigger", i)
		}
	}
	if p.Active().Dirty() {
		t.Error("dropped trigger marked the active buffer dirty")
	}
	if !strings.Contains(logBuf.String(), "saturated") {
		t.Errorf("no saturation warning logged, got %q", logBuf.String())
	}
}

func TestSlotReusedAfterFree(t *testing.T) {
	p := mustPool(t, 2)
	start := time.Unix(0, 0)

	p.Trigger(TriggerOptions{Duration: 100 * time.Millisecond})
	p.Trigger(TriggerOptions{Duration: time.Hour})

	p.Advance(start)                                // starts clocks
	p.Advance(start.Add(200 * time.Millisecond))    // frees slot 0
	if got := p.Active().Data()[0]; got != 0 {
		t.Fatalf("active[0] = %v after completion, want 0", got)
	}

	slot, ok := p.Trigger(TriggerOptions{})
	if !ok || slot != 0 {
		t.Errorf("Trigger after free = (%d, %v), want (0, true)", slot, ok)
	}
}

func TestManualAnimationReachesTargetAndFrees(t *testing.T) {
	p := mustPool(t, 1)
	start := time.Unix(50, 0)
	const duration = 2 * time.Second
	const target = 3.0

	p.Trigger(TriggerOptions{Target: Target(target), Duration: duration, Easing: EasingInOut})

	p.Advance(start) // lazy start: progress 0 this frame
	if got := p.Values().Data()[0]; got != 0 {
		t.Fatalf("value at start = %v, want 0", got)
	}

	// Just before the deadline, the value sits near the target.
	p.Advance(start.Add(duration - time.Millisecond))
	got := float64(p.Values().Data()[0])
	if math.Abs(got-target) > 0.01 {
		t.Errorf("value just before deadline = %v, want ≈ %v", got, target)
	}
	if p.Active().Data()[0] != 1 {
		t.Error("slot freed before duration elapsed")
	}

	// At the deadline the slot frees: active and value reset to zero.
	p.Advance(start.Add(duration))
	if p.Active().Data()[0] != 0 || p.Values().Data()[0] != 0 {
		t.Errorf("slot after deadline = (active=%v, value=%v), want (0, 0)",
			p.Active().Data()[0], p.Values().Data()[0])
	}
}

func TestLazyStartTime(t *testing.T) {
	p := mustPool(t, 1)
	p.Trigger(TriggerOptions{Duration: time.Second})

	// The clock starts at the first Advance that observes the record, not
	// at trigger time.
	first := time.Unix(100, 0)
	p.Advance(first)
	p.Advance(first.Add(500 * time.Millisecond))

	got := float64(p.Values().Data()[0])
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("value at half duration = %v, want 0.5 (lazy start)", got)
	}
}

func TestHalfwayEasingValues(t *testing.T) {
	tests := []struct {
		easing Easing
		want   float64
	}{
		{EasingLinear, 0.5},
		{EasingIn, 0.25},
		{EasingOut, 0.75},
		{EasingInOut, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.easing.String(), func(t *testing.T) {
			p := mustPool(t, 1)
			p.Trigger(TriggerOptions{Duration: time.Second, Easing: tt.easing})

			start := time.Unix(0, 0)
			p.Advance(start)
			p.Advance(start.Add(500 * time.Millisecond))

			got := float64(p.Values().Data()[0])
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("value at p=0.5 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPayloadCopy(t *testing.T) {
	p := mustPool(t, 2, WithChannel("position", 3))

	slot, ok := p.Trigger(TriggerOptions{
		Data: map[string][]float64{"position": {1.5, -2.0, 0.25}},
	})
	if !ok {
		t.Fatal("Trigger dropped")
	}

	ch := p.Channel("position")
	if ch == nil {
		t.Fatal("Channel(position) = nil")
	}
	want := []float32{1.5, -2.0, 0.25}
	for i, w := range want {
		if got := ch.Data()[slot*3+i]; got != w {
			t.Errorf("position[%d] = %v, want %v", i, got, w)
		}
	}
	if !ch.Dirty() {
		t.Error("payload channel not marked dirty")
	}

	if p.Channel("missing") != nil {
		t.Error("Channel(missing) should be nil")
	}
}

func TestSpringTriggerDelegatesToIntegrator(t *testing.T) {
	fake := &fakeIntegrator{}
	p := mustPool(t, 2, WithIntegrator(fake))

	cfg := SpringConfig{Stiffness: 200, Damping: 20}
	slot, ok := p.Trigger(TriggerOptions{Target: Target(2), Easing: EasingSpring, Spring: cfg})
	if !ok {
		t.Fatal("Trigger dropped")
	}
	if len(fake.calls) != 1 {
		t.Fatalf("integrator calls = %d, want 1", len(fake.calls))
	}
	call := fake.calls[0]
	if call.from != 0 || call.to != 2 || call.cfg != cfg {
		t.Errorf("Animate(%v, %v, %+v), want (0, 2, %+v)", call.from, call.to, call.cfg, cfg)
	}

	// The integrator's callbacks drive the slot.
	call.onUpdate(1.25)
	if got := p.Values().Data()[slot]; got != 1.25 {
		t.Errorf("value after onUpdate = %v, want 1.25", got)
	}
	call.onComplete()
	if p.Active().Data()[slot] != 0 || p.Values().Data()[slot] != 0 {
		t.Error("slot not freed by onComplete")
	}
}

func TestSpringSlotsUntouchedByAdvance(t *testing.T) {
	fake := &fakeIntegrator{}
	p := mustPool(t, 2, WithIntegrator(fake))

	slot, _ := p.Trigger(TriggerOptions{Easing: EasingSpring})
	fake.calls[0].onUpdate(0.6)
	p.Values().TakeDirty()

	// Advancing the manual path far into the future must not move or free
	// a spring-driven slot.
	p.Advance(time.Unix(0, 0))
	p.Advance(time.Unix(1000, 0))

	if got := p.Values().Data()[slot]; got != 0.6 {
		t.Errorf("spring slot value after Advance = %v, want 0.6", got)
	}
	if p.Active().Data()[slot] != 1 {
		t.Error("spring slot freed by the manual advance path")
	}
	if p.Values().Dirty() {
		t.Error("manual advance dirtied the value buffer for a spring-only pool")
	}
}

func TestExplicitZeroTargetIsNotDefault(t *testing.T) {
	p := mustPool(t, 1)
	p.Trigger(TriggerOptions{Target: Target(0), Duration: time.Second})

	start := time.Unix(0, 0)
	p.Advance(start)
	p.Advance(start.Add(500 * time.Millisecond))

	// Under target-zero-means-default semantics this would read 0.5.
	if got := p.Values().Data()[0]; got != 0 {
		t.Errorf("value at half duration = %v, want 0 for an explicit zero target", got)
	}
	if p.Active().Data()[0] != 1 {
		t.Error("zero-target animation freed early; it still runs its full duration")
	}

	p.Advance(start.Add(time.Second))
	if p.Active().Data()[0] != 0 {
		t.Error("slot not freed at the deadline")
	}
}

func TestSpringExplicitZeroTarget(t *testing.T) {
	fake := &fakeIntegrator{}
	p := mustPool(t, 1, WithIntegrator(fake))

	p.Trigger(TriggerOptions{Target: Target(0), Easing: EasingSpring})
	if len(fake.calls) != 1 {
		t.Fatalf("integrator calls = %d, want 1", len(fake.calls))
	}
	if got := fake.calls[0].to; got != 0 {
		t.Errorf("spring target = %v, want 0 (explicit, not DefaultTarget)", got)
	}
}

func TestTriggerDefaults(t *testing.T) {
	p := mustPool(t, 1)
	p.Trigger(TriggerOptions{})

	start := time.Unix(0, 0)
	p.Advance(start)
	p.Advance(start.Add(DefaultDuration / 2))

	got := float64(p.Values().Data()[0])
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("value at half default duration = %v, want 0.5 (linear to target 1)", got)
	}
}
