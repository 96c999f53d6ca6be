// Package atelier is a starter kit for pointer-driven generative sketches.
//
// # Overview
//
// atelier accumulates pointer motion into a decaying trail field and runs a
// fixed pool of slot animations, both backed by GPU-visible float buffers.
// It is designed to integrate with the GoGPU ecosystem: the trail field
// uploads as an RGBA32Float texture and the slot pool as a storage buffer,
// with CPU-side snapshot helpers for headless use.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/atelier"
//		"github.com/gogpu/atelier/pointer"
//	)
//
//	sk, err := atelier.NewSketch(atelier.Config{
//		Bounds: pointer.FixedBounds(pointer.Bounds{W: 800, H: 600}),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Feed pointer events and step frames.
//	sk.Pointer(pointer.Event{Kind: pointer.KindMove, X: 400, Y: 300})
//	sk.Step()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Sketch, Config
//   - frame: single-threaded frame loop with priority-ordered callbacks
//   - pointer: pointer event mirror with normalized and NDC coordinates
//   - field: decaying trail field accumulator
//   - anim: slot-based buffer animator (eased and spring-driven)
//   - render: GPU-visible buffers, targets, snapshots
//   - backend/wgpu: GPU upload and draw passes
//
// # Frame Model
//
// All state advances on explicit frame ticks; there are no internal
// goroutines or timers. Within a frame, simulation (spring integration,
// field advance, pool advance) runs before rendering.
package atelier

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
