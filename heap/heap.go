// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heap implements the sbrk-style simulated heap the allocator grows
// into. The heap is a single contiguous, grow-only byte buffer; it never
// shrinks and never returns memory to the OS.
package heap

import (
	"fmt"

	"github.com/cznic/mathutil"
)

// MaxHeap is the maximum number of bytes a Heap may ever grow to.
const MaxHeap = 20 << 20 // 20 MiB

// ErrOOM is returned by Grow when satisfying the request would exceed
// MaxHeap.
type ErrOOM struct {
	Requested int
	Have      int
}

func (e *ErrOOM) Error() string {
	return fmt.Sprintf("heap: out of memory: requested %d bytes, only %d available", e.Requested, e.Have)
}

// Heap is a simulated memory region, modeled after the
// mem_sbrk/mem_reset_brk family of a malloc lab's memlib. Its zero value is
// not ready for use; construct one with New.
//
// A Heap is not safe for concurrent use. Exactly one logical owner (an
// Allocator, or the harness driving one) may call its methods at a time.
type Heap struct {
	buf []byte // len(buf) == current break; cap(buf) == MaxHeap, never reallocated
}

// New returns a Heap with no committed bytes.
func New() *Heap {
	return &Heap{buf: make([]byte, 0, MaxHeap)}
}

// Reset restores the heap to its freshly constructed state: the break moves
// back to the base and prior content is discarded. Callers must treat any
// offset obtained before Reset as invalid afterwards.
func (h *Heap) Reset() {
	h.buf = h.buf[:0]
}

// Grow advances the break by n bytes and returns the offset at which the
// newly committed region begins (i.e. the old break). n need not be a
// multiple of any particular size, though callers in this package only ever
// pass multiples of the word size.
func (h *Heap) Grow(n int) (int, error) {
	if n < 0 {
		panic("heap: negative grow")
	}

	old := len(h.buf)
	if old+n > cap(h.buf) {
		return 0, &ErrOOM{Requested: n, Have: mathutil.Max(cap(h.buf)-old, 0)}
	}

	h.buf = h.buf[:old+n]
	return old, nil
}

// Lo is the offset of the first committed byte. It is always 0: offsets into
// a Heap are relative addresses, not raw pointers, so they stay valid across
// Grow even though Grow never actually reallocates the backing array.
func (h *Heap) Lo() int { return 0 }

// Hi is the offset one past the last committed byte.
func (h *Heap) Hi() int { return len(h.buf) }

// Size is the number of bytes currently committed, Hi()-Lo().
func (h *Heap) Size() int { return len(h.buf) }

// Bytes returns the live, currently-committed region as a byte slice. The
// returned slice aliases the Heap's storage: writes through it are writes to
// the heap. Its length is the break at the time of the call; bytes committed
// by a later Grow are only visible through a fresh call to Bytes.
func (h *Heap) Bytes() []byte { return h.buf }

// InBounds reports whether the half-open range [lo, hi) lies entirely within
// the heap's committed region.
func (h *Heap) InBounds(lo, hi int) bool {
	return lo >= h.Lo() && hi <= h.Hi() && lo <= hi
}
