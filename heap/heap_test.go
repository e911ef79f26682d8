// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "testing"

func TestGrow(t *testing.T) {
	h := New()
	if g, e := h.Size(), 0; g != e {
		t.Fatal(g, e)
	}

	off, err := h.Grow(16)
	if err != nil {
		t.Fatal(err)
	}

	if g, e := off, 0; g != e {
		t.Fatal(g, e)
	}

	if g, e := h.Size(), 16; g != e {
		t.Fatal(g, e)
	}

	off, err = h.Grow(32)
	if err != nil {
		t.Fatal(err)
	}

	if g, e := off, 16; g != e {
		t.Fatal(g, e)
	}

	if g, e := h.Hi(), 48; g != e {
		t.Fatal(g, e)
	}
}

func TestGrowOOM(t *testing.T) {
	h := New()
	if _, err := h.Grow(MaxHeap); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Grow(1); err == nil {
		t.Fatal("expected an out-of-memory error")
	}
}

func TestReset(t *testing.T) {
	h := New()
	if _, err := h.Grow(64); err != nil {
		t.Fatal(err)
	}

	h.Bytes()[0] = 0xAB
	h.Reset()
	if g, e := h.Size(), 0; g != e {
		t.Fatal(g, e)
	}

	off, err := h.Grow(8)
	if err != nil {
		t.Fatal(err)
	}

	if g, e := off, 0; g != e {
		t.Fatal(g, e)
	}
}

// Growing must never reallocate the backing array: offsets handed out by
// Grow must stay valid (alias the same storage) across later growth.
func TestGrowStableBacking(t *testing.T) {
	h := New()
	off, err := h.Grow(8)
	if err != nil {
		t.Fatal(err)
	}

	p := &h.Bytes()[off]
	if _, err := h.Grow(MaxHeap - 8); err != nil {
		t.Fatal(err)
	}

	if p != &h.Bytes()[off] {
		t.Fatal("backing array moved on Grow")
	}
}
