// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import "testing"

func TestSizeAndAllocated(t *testing.T) {
	buf := make([]byte, 64)
	SetSizeAndAllocated(buf, 0, 32, true)

	if g, e := Size(buf, 0), int64(32); g != e {
		t.Fatal(g, e)
	}

	if g, e := Allocated(buf, 0), true; g != e {
		t.Fatal(g, e)
	}

	if g, e := EndSize(buf, 0), int64(32); g != e {
		t.Fatal(g, e)
	}

	if g, e := EndAllocated(buf, 0), true; g != e {
		t.Fatal(g, e)
	}
}

func TestSetSizePreservesAllocatedBit(t *testing.T) {
	buf := make([]byte, 64)
	SetSizeAndAllocated(buf, 0, 16, false)
	SetSize(buf, 0, 32)

	if g, e := Size(buf, 0), int64(32); g != e {
		t.Fatal(g, e)
	}

	if Allocated(buf, 0) {
		t.Fatal("SetSize flipped the allocated bit")
	}

	if g, e := EndSize(buf, 0), int64(32); g != e {
		t.Fatal(g, e)
	}
}

func TestSetAllocated(t *testing.T) {
	buf := make([]byte, 64)
	SetSizeAndAllocated(buf, 0, 32, false)
	SetAllocated(buf, 0, true)

	if !Allocated(buf, 0) {
		t.Fatal("expected allocated")
	}

	if !EndAllocated(buf, 0) {
		t.Fatal("expected end tag allocated")
	}

	if g, e := Size(buf, 0), int64(32); g != e {
		t.Fatal(g, e)
	}
}

func TestNextAndPrev(t *testing.T) {
	buf := make([]byte, 96)
	SetSizeAndAllocated(buf, 0, 32, true)
	SetSizeAndAllocated(buf, 32, 24, false)

	if g, e := Next(buf, 0), 32; g != e {
		t.Fatal(g, e)
	}

	if g, e := Prev(buf, 32), 0; g != e {
		t.Fatal(g, e)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	off := 16
	p := PayloadOffset(off)
	if g, e := ToBlockOffset(p), off; g != e {
		t.Fatal(g, e)
	}
}

func TestFlinkBlink(t *testing.T) {
	buf := make([]byte, 64)
	SetSizeAndAllocated(buf, 0, 32, false)
	SetFlink(buf, 0, 100)
	SetBlink(buf, 0, -1)

	if g, e := Flink(buf, 0), 100; g != e {
		t.Fatal(g, e)
	}

	if g, e := Blink(buf, 0), -1; g != e {
		t.Fatal(g, e)
	}
}
