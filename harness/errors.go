// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package harness

import "fmt"

// ErrValidity reports a failure found while replaying a trace: a malloc
// that unexpectedly returned None, a range-set violation, or a realloc that
// did not preserve the payload's prefix. Line matches the 1-based line
// number a reader would see in the trace file, accounting for the 4-line
// header.
type ErrValidity struct {
	TraceName string
	OpIndex   int
	Detail    string
}

func (e *ErrValidity) Error() string {
	return fmt.Sprintf("harness: %s: line %d: %s", e.TraceName, e.Line(), e.Detail)
}

// Line returns the 1-based line number of the failing operation within its
// trace file: 4 header lines, plus the operation's 0-based index, plus 1.
func (e *ErrValidity) Line() int { return e.OpIndex + 5 }
