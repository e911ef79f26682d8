// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl implements the interactive malloc debug shell: a tiny
// command loop over a live allocator.Allocator, grounded on the reference
// driver's own cmd_table dispatch (help/malloc/realloc/free/print/reset).
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cznic/malloclab/allocator"
	"github.com/cznic/malloclab/heap"
	"github.com/cznic/malloclab/rangeset"
)

// Shell is the REPL's state: a live allocator plus the id -> (ptr, size)
// bookkeeping a user's "malloc"/"realloc"/"free" commands operate on.
type Shell struct {
	h    *heap.Heap
	a    *allocator.Allocator
	opts allocator.Options

	ptrs  map[int]int
	sizes map[int]int
	rs    *rangeset.Set

	out io.Writer
}

// New constructs a Shell with a fresh heap and allocator.
func New(opts allocator.Options, out io.Writer) (*Shell, error) {
	s := &Shell{opts: opts, out: out}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shell) reset() error {
	s.h = heap.New()
	s.a = allocator.NewWithOptions(s.h, s.opts)
	s.ptrs = make(map[int]int)
	s.sizes = make(map[int]int)
	s.rs = rangeset.New()
	return s.a.Init()
}

// Run reads commands from in, one per line, until EOF, writing prompts and
// output to the Shell's configured writer.
func (s *Shell) Run(in io.Reader) error {
	fmt.Fprintln(s.out, "Welcome to the Malloc REPL. (Enter 'help' to see available commands.)")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "q" {
			return nil
		}

		if err := s.dispatch(fields); err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

func (s *Shell) dispatch(fields []string) error {
	switch fields[0] {
	case "help", "h":
		s.help()
		return nil
	case "malloc", "m":
		return s.malloc(fields[1:])
	case "realloc", "r":
		return s.realloc(fields[1:])
	case "free", "f":
		return s.free(fields[1:])
	case "print", "p":
		s.print()
		return nil
	case "reset":
		return s.reset()
	default:
		return fmt.Errorf("no valid command specified: %q", fields[0])
	}
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, "commands:")
	fmt.Fprintln(s.out, "  malloc|m <id> <size>    allocate size bytes, remember the result as id")
	fmt.Fprintln(s.out, "  realloc|r <id> <size>   resize id's block to size bytes")
	fmt.Fprintln(s.out, "  free|f <id>             free id's block")
	fmt.Fprintln(s.out, "  print|p                 list the currently live ids")
	fmt.Fprintln(s.out, "  reset                   reinitialize the heap and allocator")
	fmt.Fprintln(s.out, "  quit|q                  exit")
}

func parseIntArgs(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}

	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %v", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (s *Shell) malloc(args []string) error {
	v, err := parseIntArgs(args, 2)
	if err != nil {
		return err
	}
	id, size := v[0], v[1]

	p := s.a.Malloc(size)
	if p == allocator.None && size != 0 {
		return fmt.Errorf("malloc(%d) failed", size)
	}
	if size == 0 {
		return nil
	}

	if err := s.rs.Insert(p, p+size, 8, s.h.Lo(), s.h.Hi()); err != nil {
		return err
	}

	fillBuf(s.h.Bytes(), p, size, id)
	s.ptrs[id] = p
	s.sizes[id] = size
	fmt.Fprintf(s.out, "id %d -> ptr %d (size %d)\n", id, p, size)
	return nil
}

func (s *Shell) realloc(args []string) error {
	v, err := parseIntArgs(args, 2)
	if err != nil {
		return err
	}
	id, size := v[0], v[1]

	oldp, ok := s.ptrs[id]
	if !ok {
		return fmt.Errorf("id %d is not live", id)
	}

	newp := s.a.Realloc(oldp, size)
	if newp == allocator.None && size != 0 {
		return fmt.Errorf("realloc(%d, %d) failed", id, size)
	}
	if size == 0 {
		s.rs.Remove(oldp)
		delete(s.ptrs, id)
		delete(s.sizes, id)
		return nil
	}

	if err := s.rs.Remove(oldp); err != nil {
		return err
	}

	if err := s.rs.Insert(newp, newp+size, 8, s.h.Lo(), s.h.Hi()); err != nil {
		return err
	}

	fillBuf(s.h.Bytes(), newp, size, id)

	s.ptrs[id] = newp
	s.sizes[id] = size
	fmt.Fprintf(s.out, "id %d -> ptr %d (size %d)\n", id, newp, size)
	return nil
}

func (s *Shell) free(args []string) error {
	v, err := parseIntArgs(args, 1)
	if err != nil {
		return err
	}
	id := v[0]

	p, ok := s.ptrs[id]
	if !ok {
		return fmt.Errorf("id %d is not live", id)
	}

	s.rs.Remove(p)
	s.a.Free(p)
	delete(s.ptrs, id)
	delete(s.sizes, id)
	return nil
}

func (s *Shell) print() {
	fmt.Fprintf(s.out, "heap: [%d, %d) (%d bytes), %d live id(s)\n", s.h.Lo(), s.h.Hi(), s.h.Size(), s.rs.Len())
	for _, r := range s.rs.Sorted() {
		fmt.Fprintf(s.out, "  [%d, %d) size %d\n", r.Lo, r.Hi, r.Hi-r.Lo)
	}
}

func fillBuf(buf []byte, ptr, size, id int) {
	b := byte(id & 0xFF)
	for i := 0; i < size; i++ {
		buf[ptr+i] = b
	}
}
