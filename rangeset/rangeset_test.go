// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangeset

import "testing"

func TestInsertAndRemove(t *testing.T) {
	s := New()
	if err := s.Insert(0, 16, 8, 0, 1024); err != nil {
		t.Fatal(err)
	}

	if g, e := s.Len(), 1; g != e {
		t.Fatal(g, e)
	}

	if g, e := s.TotalSize(), 16; g != e {
		t.Fatal(g, e)
	}

	if err := s.Remove(0); err != nil {
		t.Fatal(err)
	}

	if g, e := s.Len(), 0; g != e {
		t.Fatal(g, e)
	}
}

func TestInsertRejectsOverlap(t *testing.T) {
	s := New()
	if err := s.Insert(0, 16, 8, 0, 1024); err != nil {
		t.Fatal(err)
	}

	if err := s.Insert(8, 24, 8, 0, 1024); err == nil {
		t.Fatal("expected an overlap error")
	}

	if g, e := s.Len(), 1; g != e {
		t.Fatal("a rejected insert must not mutate the set", g, e)
	}
}

func TestInsertAdjacentRangesDoNotOverlap(t *testing.T) {
	s := New()
	if err := s.Insert(0, 16, 8, 0, 1024); err != nil {
		t.Fatal(err)
	}

	if err := s.Insert(16, 32, 8, 0, 1024); err != nil {
		t.Fatalf("half-open adjacent ranges must not be treated as overlapping: %v", err)
	}
}

func TestInsertRejectsMisalignment(t *testing.T) {
	s := New()
	if err := s.Insert(4, 20, 8, 0, 1024); err == nil {
		t.Fatal("expected an alignment error")
	}
}

func TestInsertRejectsOutOfBounds(t *testing.T) {
	s := New()
	if err := s.Insert(1000, 1040, 8, 0, 1024); err == nil {
		t.Fatal("expected a bounds error for a range past heap.Hi()")
	}

	if err := s.Insert(-8, 8, 8, 0, 1024); err == nil {
		t.Fatal("expected a bounds error for a range before heap.Lo()")
	}
}

func TestInsertRejectsEmptyRange(t *testing.T) {
	s := New()
	if err := s.Insert(8, 8, 8, 0, 1024); err == nil {
		t.Fatal("expected an error for an empty range")
	}

	if err := s.Insert(16, 8, 8, 0, 1024); err == nil {
		t.Fatal("expected an error for an inverted range")
	}
}

func TestRemoveUnknownLo(t *testing.T) {
	s := New()
	if err := s.Remove(8); err == nil {
		t.Fatal("expected an error removing a lo that was never inserted")
	}
}

func TestSortedOrdering(t *testing.T) {
	s := New()
	if err := s.Insert(64, 72, 8, 0, 1024); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(0, 8, 8, 0, 1024); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(32, 40, 8, 0, 1024); err != nil {
		t.Fatal(err)
	}

	got := s.Sorted()
	want := []int{0, 32, 64}
	if g, e := len(got), len(want); g != e {
		t.Fatal(g, e)
	}

	for i, r := range got {
		if r.Lo != want[i] {
			t.Fatalf("index %d: got lo %d, want %d", i, r.Lo, want[i])
		}
	}
}
