// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package harness replays trace.Trace workloads against an allocator,
// checking correctness, measuring space utilization and throughput, and
// combining those into a single performance index - the three passes
// mirror the reference driver's eval_mm_valid / eval_mm_util / eval_mm_speed
// exactly, just run over a freshly constructed allocator.Allocator each
// time rather than a process-wide C global.
package harness

import (
	"math"

	"github.com/cznic/malloclab/allocator"
	"github.com/cznic/malloclab/bench"
	"github.com/cznic/malloclab/block"
	"github.com/cznic/malloclab/heap"
	"github.com/cznic/malloclab/rangeset"
	"github.com/cznic/malloclab/trace"
)

// REFThroughput and Weight parameterize the performance index, per
// spec.md's formula.
const (
	REFThroughput = 600_000
	Weight        = 0.80
)

// Options selects harness-level behavior, distinct from the
// allocator.Options the allocator under test is configured with.
type Options struct {
	// StaleSizeOnAddRange preserves a bookkeeping detail in the
	// utilization pass's realloc handling: whether the range inserted
	// after a realloc uses the operation's own size (the fixed
	// behavior) or a separately tracked "last seen size" variable
	// (mirroring the reference driver's reuse of a single stack
	// variable across the whole replay loop). Default false reads as
	// the fixed behavior; in the reference driver both variables are
	// assigned from the same trace field on every iteration, so they
	// are observationally identical here too - the flag exists to
	// surface the Open Question with a test, not because toggling it
	// changes any real outcome in this implementation.
	StaleSizeOnAddRange bool
}

// TraceResult is the combined outcome of running all three passes over one
// trace.
type TraceResult struct {
	Name       string
	Consistent bool
	Err        error
	Util       float64
	Ops        int
	Secs       float64
}

// Run replays tr through a fresh allocator three times - once per pass -
// and returns the combined result. A trace that fails the validity pass
// skips the other two and contributes Util 0, Ops 0.
func Run(tr *trace.Trace, opts allocator.Options, hopts Options) TraceResult {
	result := TraceResult{Name: tr.Name}

	h := heap.New()
	a := allocator.NewWithOptions(h, opts)
	if err := a.Init(); err != nil {
		result.Err = err
		return result
	}

	if err := ValidityPass(tr, a); err != nil {
		result.Err = err
		return result
	}
	result.Consistent = true

	hUtil := heap.New()
	aUtil := allocator.NewWithOptions(hUtil, opts)
	if err := aUtil.Init(); err != nil {
		result.Err = err
		result.Consistent = false
		return result
	}

	peak, err := UtilizationPass(tr, aUtil, hopts)
	if err != nil {
		result.Err = err
		result.Consistent = false
		return result
	}
	result.Util = float64(peak) / float64(hUtil.Size())

	hSpeed := heap.New()
	aSpeed := allocator.NewWithOptions(hSpeed, opts)
	if err := aSpeed.Init(); err != nil {
		result.Err = err
		result.Consistent = false
		return result
	}

	result.Ops = tr.NumOps
	result.Secs = bench.Elapsed(func() { SpeedPass(tr, aSpeed) }).Seconds()
	return result
}

// fill overwrites the payload at [ptr, ptr+size) with the low byte of id,
// the harness's data-preservation marker.
func fill(buf []byte, ptr, size, id int) {
	b := byte(id & 0xFF)
	for i := 0; i < size; i++ {
		buf[ptr+i] = b
	}
}

// checkFill verifies the first n bytes at ptr still equal the low byte of
// id, failing data-preservation across a realloc.
func checkFill(buf []byte, ptr, n, id int) bool {
	b := byte(id & 0xFF)
	for i := 0; i < n; i++ {
		if buf[ptr+i] != b {
			return false
		}
	}
	return true
}

// ValidityPass replays tr against a, checking malloc/realloc return values,
// range-set alignment/bounds/non-overlap, and realloc's data preservation.
func ValidityPass(tr *trace.Trace, a *allocator.Allocator) error {
	rs := rangeset.New()
	ptrs := make([]int, tr.NumIDs)
	sizes := make([]int, tr.NumIDs)
	for i := range ptrs {
		ptrs[i] = allocator.None
	}

	align := block.WordSize
	for i, op := range tr.Ops {
		switch op.Type {
		case trace.Alloc:
			p := a.Malloc(op.Size)
			if p == allocator.None && op.Size != 0 {
				return &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: "malloc returned None for a nonzero size"}
			}
			if op.Size == 0 {
				continue
			}

			if err := rs.Insert(p, p+op.Size, align, a.Heap().Lo(), a.Heap().Hi()); err != nil {
				return &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: err.Error()}
			}

			fill(a.Heap().Bytes(), p, op.Size, op.ID)
			ptrs[op.ID] = p
			sizes[op.ID] = op.Size

		case trace.Realloc:
			oldp := ptrs[op.ID]
			oldsize := sizes[op.ID]
			newp := a.Realloc(oldp, op.Size)
			if newp == allocator.None && op.Size != 0 {
				return &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: "realloc returned None for a nonzero size"}
			}
			if op.Size == 0 {
				ptrs[op.ID] = allocator.None
				continue
			}

			if oldp != allocator.None {
				if err := rs.Remove(oldp); err != nil {
					return &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: err.Error()}
				}
			}

			if err := rs.Insert(newp, newp+op.Size, align, a.Heap().Lo(), a.Heap().Hi()); err != nil {
				return &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: err.Error()}
			}

			preserve := oldsize
			if op.Size < preserve {
				preserve = op.Size
			}

			buf := a.Heap().Bytes()
			if !checkFill(buf, newp, preserve, op.ID) {
				return &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: "realloc did not preserve the old block's data"}
			}

			fill(buf, newp, op.Size, op.ID)
			ptrs[op.ID] = newp
			sizes[op.ID] = op.Size

		case trace.Free:
			p := ptrs[op.ID]
			if p != allocator.None {
				if err := rs.Remove(p); err != nil {
					return &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: err.Error()}
				}
			}
			a.Free(p)
			ptrs[op.ID] = allocator.None
		}
	}

	return nil
}

// UtilizationPass replays tr against a, tracking the high-water mark of
// total live payload bytes. It returns that peak; callers divide by the
// heap's final size to get a utilization ratio.
func UtilizationPass(tr *trace.Trace, a *allocator.Allocator, opts Options) (int, error) {
	rs := rangeset.New()
	ptrs := make([]int, tr.NumIDs)
	sizes := make([]int, tr.NumIDs)
	for i := range ptrs {
		ptrs[i] = allocator.None
	}

	align := block.WordSize
	peak := 0
	staleSize := 0 // mirrors the reference driver's reused "size" stack variable
	for i, op := range tr.Ops {
		staleSize = op.Size

		switch op.Type {
		case trace.Alloc:
			p := a.Malloc(op.Size)
			if p == allocator.None && op.Size != 0 {
				return peak, &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: "malloc returned None for a nonzero size"}
			}
			if op.Size == 0 {
				continue
			}

			rangeSize := op.Size
			if err := rs.Insert(p, p+rangeSize, align, a.Heap().Lo(), a.Heap().Hi()); err != nil {
				return peak, &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: err.Error()}
			}

			fill(a.Heap().Bytes(), p, op.Size, op.ID)
			ptrs[op.ID] = p
			sizes[op.ID] = op.Size
			if t := rs.TotalSize(); t > peak {
				peak = t
			}

		case trace.Realloc:
			oldp := ptrs[op.ID]
			newp := a.Realloc(oldp, op.Size)
			if newp == allocator.None && op.Size != 0 {
				return peak, &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: "realloc returned None for a nonzero size"}
			}
			if op.Size == 0 {
				ptrs[op.ID] = allocator.None
				continue
			}

			if oldp != allocator.None {
				if err := rs.Remove(oldp); err != nil {
					return peak, &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: err.Error()}
				}
			}

			rangeSize := op.Size
			if opts.StaleSizeOnAddRange {
				rangeSize = staleSize
			}

			if err := rs.Insert(newp, newp+rangeSize, align, a.Heap().Lo(), a.Heap().Hi()); err != nil {
				return peak, &ErrValidity{TraceName: tr.Name, OpIndex: i, Detail: err.Error()}
			}

			fill(a.Heap().Bytes(), newp, op.Size, op.ID)
			ptrs[op.ID] = newp
			sizes[op.ID] = op.Size
			if t := rs.TotalSize(); t > peak {
				peak = t
			}

		case trace.Free:
			p := ptrs[op.ID]
			if p != allocator.None {
				rs.Remove(p)
			}
			a.Free(p)
			ptrs[op.ID] = allocator.None
		}
	}

	return peak, nil
}

// SpeedPass replays tr against a with no bookkeeping at all beyond what's
// needed to target the right id - this is what the timer in Run wraps.
func SpeedPass(tr *trace.Trace, a *allocator.Allocator) {
	ptrs := make([]int, tr.NumIDs)
	for i := range ptrs {
		ptrs[i] = allocator.None
	}

	for _, op := range tr.Ops {
		switch op.Type {
		case trace.Alloc:
			ptrs[op.ID] = a.Malloc(op.Size)
		case trace.Realloc:
			ptrs[op.ID] = a.Realloc(ptrs[op.ID], op.Size)
		case trace.Free:
			a.Free(ptrs[op.ID])
			ptrs[op.ID] = allocator.None
		}
	}
}

// PerfIndex combines a set of TraceResults into the single performance
// index: 100 * (Weight * avg_util + (1-Weight) * throughput_score), where
// throughput_score = min(1, avg_throughput / REFThroughput). Traces that
// failed validity contribute 0 utilization and are excluded from the
// throughput sum entirely.
func PerfIndex(results []TraceResult) float64 {
	if len(results) == 0 {
		return 0
	}

	var sumUtil, sumOps, sumSecs float64
	for _, r := range results {
		if !r.Consistent {
			continue
		}
		sumUtil += r.Util
		sumOps += float64(r.Ops)
		sumSecs += r.Secs
	}

	avgUtil := sumUtil / float64(len(results))

	var throughputScore float64
	if sumSecs > 0 {
		avgThroughput := sumOps / sumSecs
		throughputScore = math.Min(1.0, avgThroughput/REFThroughput)
	}

	return 100 * (Weight*avgUtil + (1-Weight)*throughputScore)
}
