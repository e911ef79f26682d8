// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rangeset tracks the set of (lo, hi) byte extents of the
// currently live allocations during a harness replay. It exists purely for
// the validation harness's bookkeeping: the allocator itself has no notion
// of a range set.
package rangeset

import (
	"fmt"
	"sort"

	"github.com/cznic/sortutil"
)

// ErrOverlap reports that a candidate range intersects an already-live one.
type ErrOverlap struct {
	Lo, Hi     int
	WithLo     int
	WithHi     int
}

func (e *ErrOverlap) Error() string {
	return fmt.Sprintf("rangeset: [%d, %d) overlaps existing live range [%d, %d)", e.Lo, e.Hi, e.WithLo, e.WithHi)
}

// ErrBounds reports that a candidate range falls outside the heap's
// committed region, or is misaligned, or is empty/inverted.
type ErrBounds struct {
	Lo, Hi   int
	HeapLo   int
	HeapHi   int
	Align    int
	Detail   string
}

func (e *ErrBounds) Error() string {
	return fmt.Sprintf("rangeset: range [%d, %d) invalid against heap [%d, %d) (align %d): %s", e.Lo, e.Hi, e.HeapLo, e.HeapHi, e.Align, e.Detail)
}

// ErrNotFound reports that Remove was asked for a lo that is not the start
// of any live range.
type ErrNotFound struct{ Lo int }

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("rangeset: no live range starting at %d", e.Lo)
}

// Range is one live extent, half-open [Lo, Hi).
type Range struct {
	Lo, Hi int
}

// Set is a collection of disjoint ranges keyed by their Lo, mirroring the
// free list's insert-by-key discipline but over an explicit map rather than
// an in-band linked structure, since ranges don't own any storage of their
// own to carry next/prev pointers in.
type Set struct {
	byLo map[int]Range
}

// New returns an empty Set.
func New() *Set {
	return &Set{byLo: make(map[int]Range)}
}

// Insert adds [lo, hi) to the set after checking alignment against align,
// containment within [heapLo, heapHi), and non-overlap with every range
// already present. On any check failure the set is left unmodified and the
// error identifies which check failed.
func (s *Set) Insert(lo, hi, align, heapLo, heapHi int) error {
	if hi <= lo {
		return &ErrBounds{Lo: lo, Hi: hi, HeapLo: heapLo, HeapHi: heapHi, Align: align, Detail: "empty or inverted range"}
	}

	if align > 0 && lo%align != 0 {
		return &ErrBounds{Lo: lo, Hi: hi, HeapLo: heapLo, HeapHi: heapHi, Align: align, Detail: "lo is misaligned"}
	}

	if lo < heapLo || hi > heapHi {
		return &ErrBounds{Lo: lo, Hi: hi, HeapLo: heapLo, HeapHi: heapHi, Align: align, Detail: "range escapes the committed heap"}
	}

	for _, r := range s.byLo {
		if lo < r.Hi && r.Lo < hi {
			return &ErrOverlap{Lo: lo, Hi: hi, WithLo: r.Lo, WithHi: r.Hi}
		}
	}

	s.byLo[lo] = Range{Lo: lo, Hi: hi}
	return nil
}

// Remove deletes the range starting at lo. It is an error to remove a lo
// that is not currently live.
func (s *Set) Remove(lo int) error {
	if _, ok := s.byLo[lo]; !ok {
		return &ErrNotFound{Lo: lo}
	}

	delete(s.byLo, lo)
	return nil
}

// Len reports the number of live ranges.
func (s *Set) Len() int { return len(s.byLo) }

// TotalSize returns the sum of (Hi - Lo) across every live range, the
// "total_live" figure the utilization pass tracks a running high-water mark
// of.
func (s *Set) TotalSize() int {
	total := 0
	for _, r := range s.byLo {
		total += r.Hi - r.Lo
	}
	return total
}

// Sorted returns the live ranges ordered by Lo, ascending. Used by the
// REPL's print command for a deterministic listing; Insert/Remove never
// need an ordering.
func (s *Set) Sorted() []Range {
	los := make(sortutil.Int64Slice, 0, len(s.byLo))
	for lo := range s.byLo {
		los = append(los, int64(lo))
	}
	sort.Sort(los)

	out := make([]Range, 0, len(los))
	for _, lo := range los {
		out = append(out, s.byLo[int(lo)])
	}
	return out
}
