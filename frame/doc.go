// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame drives atelier's per-frame simulation step.
//
// A [Loop] holds an ordered list of callbacks and invokes every one of them
// exactly once per [Loop.Step], in ascending priority order. All per-frame
// mutation in atelier (pointer sampling, trail field decay and deposit, slot
// pool advancement) happens inside these callbacks; the model is
// single-threaded and run-to-completion, with no locking and no suspension.
// Animations that span frames are state carried between invocations, not
// long-running tasks.
//
// Time comes from a [Clock]. [SystemClock] wraps the wall clock;
// [ManualClock] is stepped explicitly and makes tests and headless demo
// rendering fully deterministic.
package frame
