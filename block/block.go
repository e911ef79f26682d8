// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block implements the boundary-tagged block layout the allocator
// manages the heap as: pure accessors and mutators over a live heap byte
// slice, addressed by offset rather than by Go pointer so that they stay
// valid across heap growth.
//
// A block has the form
//
//	word 0      : header = size | allocated-bit
//	word 1..N-2 : payload (allocated) or flink, blink, ... (free)
//	word N-1    : footer = duplicate of header
//
// Every size here is the size of the whole block (header + payload/links +
// footer), never just the payload.
package block

import "encoding/binary"

const (
	// WordSize is the size of a header/footer/link word: 8 bytes, as on a
	// 64-bit platform.
	WordSize = 8
	// TagsSize is the combined size of a block's header and footer.
	TagsSize = 2 * WordSize
	// MinBlockSize is the smallest size any block, free or allocated, may
	// ever have: header + flink + blink + footer. A free block always has
	// room for its two free-list links.
	MinBlockSize = 4 * WordSize

	allocBit int64 = 1
)

func readWord(buf []byte, off int) int64 {
	return int64(binary.LittleEndian.Uint64(buf[off : off+WordSize]))
}

func writeWord(buf []byte, off int, v int64) {
	binary.LittleEndian.PutUint64(buf[off:off+WordSize], uint64(v))
}

// Size returns the total size of the block at off, with the allocated bit
// masked off.
func Size(buf []byte, off int) int64 {
	return readWord(buf, off) &^ allocBit
}

// Allocated reports whether the block at off is marked allocated.
func Allocated(buf []byte, off int) bool {
	return readWord(buf, off)&allocBit != 0
}

// footerOffset returns the offset of the footer word for a block of the
// given total size starting at off.
func footerOffset(off int, size int64) int {
	return off + int(size) - WordSize
}

// SetSize rewrites the size of the block at off, in both header and footer,
// preserving whatever allocated bit the block currently carries. size must
// be a multiple of the word size.
func SetSize(buf []byte, off int, size int64) {
	if size&(WordSize-1) != 0 {
		panic("block: size not word-aligned")
	}

	v := size | (readWord(buf, off) & allocBit)
	writeWord(buf, off, v)
	writeWord(buf, footerOffset(off, size), v)
}

// SetAllocated sets or clears the allocated bit of the block at off, in both
// header and footer.
func SetAllocated(buf []byte, off int, allocated bool) {
	size := Size(buf, off)
	v := size
	if allocated {
		v |= allocBit
	}
	writeWord(buf, off, v)
	writeWord(buf, footerOffset(off, size), v)
}

// SetSizeAndAllocated is the combined form of SetSize and SetAllocated,
// writing both header and footer exactly once.
func SetSizeAndAllocated(buf []byte, off int, size int64, allocated bool) {
	if size&(WordSize-1) != 0 {
		panic("block: size not word-aligned")
	}

	v := size
	if allocated {
		v |= allocBit
	}
	writeWord(buf, off, v)
	writeWord(buf, footerOffset(off, size), v)
}

// EndSize returns the block's size as recorded in its footer.
func EndSize(buf []byte, off int) int64 {
	return readWord(buf, footerOffset(off, Size(buf, off))) &^ allocBit
}

// EndAllocated reports the allocated bit as recorded in the block's footer.
func EndAllocated(buf []byte, off int) bool {
	return readWord(buf, footerOffset(off, Size(buf, off)))&allocBit != 0
}

// Next returns the offset of the physically next block.
func Next(buf []byte, off int) int {
	return off + int(Size(buf, off))
}

// Prev returns the offset of the physically previous block, found by
// reading the footer word immediately preceding off. Only valid when off is
// not the prologue.
func Prev(buf []byte, off int) int {
	prevFooter := off - WordSize
	prevSize := readWord(buf, prevFooter) &^ allocBit
	return off - int(prevSize)
}

// PayloadOffset converts a block offset to the offset of its first payload
// word.
func PayloadOffset(off int) int { return off + WordSize }

// ToBlockOffset converts a payload offset, as returned to callers of
// malloc/realloc, back to its owning block's offset.
func ToBlockOffset(payloadOff int) int { return payloadOff - WordSize }

// Flink returns the free-list forward link stored in the first payload word
// of the free block at off.
func Flink(buf []byte, off int) int {
	return int(readWord(buf, PayloadOffset(off)))
}

// SetFlink sets the free-list forward link of the free block at off.
func SetFlink(buf []byte, off int, next int) {
	writeWord(buf, PayloadOffset(off), int64(next))
}

// Blink returns the free-list backward link stored in the second payload
// word of the free block at off.
func Blink(buf []byte, off int) int {
	return int(readWord(buf, PayloadOffset(off)+WordSize))
}

// SetBlink sets the free-list backward link of the free block at off.
func SetBlink(buf []byte, off int, prev int) {
	writeWord(buf, PayloadOffset(off)+WordSize, int64(prev))
}
