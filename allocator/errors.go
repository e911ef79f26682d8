// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allocator

import "fmt"

// ErrInit reports that Init could not obtain heap space for a sentinel
// block. It wraps the underlying heap error (typically an out-of-memory
// condition, though on a freshly constructed Heap that should never
// actually happen).
type ErrInit struct {
	Sentinel string // "prologue" or "epilogue"
	Err      error
}

func (e *ErrInit) Error() string {
	return fmt.Sprintf("allocator: mm_init: %s: %v", e.Sentinel, e.Err)
}

func (e *ErrInit) Unwrap() error { return e.Err }
