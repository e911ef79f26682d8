// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allocator

import "github.com/cznic/malloclab/block"

// insertFreeBlock splices fb into the circular, doubly linked free list as
// the new head, LIFO-style: if the list is non-empty, fb goes between the
// prior head and the prior head's predecessor (the prior tail).
func (a *Allocator) insertFreeBlock(fb int) {
	buf := a.h.Bytes()
	if a.flistFirst == None {
		block.SetFlink(buf, fb, fb)
		block.SetBlink(buf, fb, fb)
		a.flistFirst = fb
		return
	}

	head := a.flistFirst
	tail := block.Blink(buf, head)
	block.SetFlink(buf, tail, fb)
	block.SetBlink(buf, fb, tail)
	block.SetFlink(buf, fb, head)
	block.SetBlink(buf, head, fb)
	a.flistFirst = fb
}

// pullFreeBlock removes fb from the free list.
func (a *Allocator) pullFreeBlock(fb int) {
	buf := a.h.Bytes()
	if block.Flink(buf, fb) == fb {
		a.flistFirst = None
		return
	}

	fblink := block.Blink(buf, fb)
	fbflink := block.Flink(buf, fb)
	block.SetFlink(buf, fblink, fbflink)
	block.SetBlink(buf, fbflink, fblink)
	if a.flistFirst == fb {
		a.flistFirst = fbflink
	}
}
