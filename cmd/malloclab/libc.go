// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cznic/malloclab/bench"
	"github.com/cznic/malloclab/harness"
	"github.com/cznic/malloclab/trace"
)

// EvalLibc times a trace against Go's own runtime allocator/GC as the
// stand-in for "system malloc" the reference driver's -l flag compares
// against: there is no libc malloc to call into from Go without cgo, and
// cgo is out of scope for a grow-only simulated heap harness. It never
// fails - make([]byte, n) either succeeds or the process is already out of
// memory - so Consistent is always true.
func EvalLibc(tr *trace.Trace) harness.TraceResult {
	blocks := make([][]byte, tr.NumIDs)

	d := bench.Elapsed(func() {
		for _, op := range tr.Ops {
			switch op.Type {
			case trace.Alloc:
				blocks[op.ID] = make([]byte, op.Size)
			case trace.Realloc:
				grown := make([]byte, op.Size)
				copy(grown, blocks[op.ID])
				blocks[op.ID] = grown
			case trace.Free:
				blocks[op.ID] = nil
			}
		}
	})

	return harness.TraceResult{
		Name:       tr.Name,
		Consistent: true,
		Ops:        tr.NumOps,
		Secs:       d.Seconds(),
	}
}
