// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pointer normalizes raw pointer input for the simulation packages.
//
// The host (a windowing framework, or a scripted path in headless demos)
// delivers move/up/leave/blur events with raw device coordinates to a
// [Tracker]. The tracker resolves the target surface bounds and maintains
// two coordinate mirrors:
//
//   - a [0,2] per-axis position used by the trail field's symmetric grid
//     addressing, and
//   - a [-1,1] NDC position handed to shaders as a pointer-reactive uniform.
//
// Event kinds and coordinate conventions follow gio's io/pointer model.
package pointer
