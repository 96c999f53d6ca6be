// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"
)

// Buffer is a GPU-visible float32 array with a dirty flag.
//
// A Buffer is owned by exactly one writer (the trail field, or one channel
// of a slot pool) and mutated only on that writer's frame-advance path.
// Readers tolerate concurrent-with-next-frame staleness: the contract is
// "buffer marked dirty, re-uploaded before next draw", nothing more.
//
// The zero value is not usable; create Buffers with [NewBuffer].
type Buffer struct {
	data    []float32
	dirty   bool
	scratch []byte // reused by Bytes to avoid per-frame allocation
}

// NewBuffer creates a zero-filled buffer of n float32 values.
func NewBuffer(n int) *Buffer {
	return &Buffer{data: make([]float32, n)}
}

// Data returns the backing array. Callers mutate it in place and must call
// MarkDirty afterwards so the GPU layer re-uploads before the next draw.
func (b *Buffer) Data() []float32 {
	return b.data
}

// Len returns the number of float32 values in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// MarkDirty flags the buffer for re-upload. Fire-and-forget: there is no
// acknowledgment of when a read actually occurred.
func (b *Buffer) MarkDirty() {
	b.dirty = true
}

// Dirty reports whether the buffer has been mutated since the last upload.
func (b *Buffer) Dirty() bool {
	return b.dirty
}

// TakeDirty returns the dirty flag and clears it. The GPU layer calls this
// once per frame before deciding whether to re-upload.
func (b *Buffer) TakeDirty() bool {
	d := b.dirty
	b.dirty = false
	return d
}

// Bytes returns the buffer contents as little-endian bytes suitable for
// queue.WriteBuffer / queue.WriteTexture. The returned slice is reused
// across calls and is only valid until the next call to Bytes.
func (b *Buffer) Bytes() []byte {
	need := len(b.data) * 4
	if cap(b.scratch) < need {
		b.scratch = make([]byte, need)
	}
	out := b.scratch[:need]
	for i, v := range b.data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
