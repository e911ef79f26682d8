// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cznic/malloclab/allocator"
)

func TestRunMallocFreePrintQuit(t *testing.T) {
	var out bytes.Buffer
	s, err := New(allocator.Options{}, &out)
	if err != nil {
		t.Fatal(err)
	}

	in := strings.NewReader("malloc 0 16\nprint\nfree 0\nquit\n")
	if err := s.Run(in); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	if !strings.Contains(got, "id 0 -> ptr") {
		t.Fatalf("missing malloc confirmation: %q", got)
	}
	if !strings.Contains(got, "live id(s)") {
		t.Fatalf("missing print output: %q", got)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	s, err := New(allocator.Options{}, &out)
	if err != nil {
		t.Fatal(err)
	}

	in := strings.NewReader("bogus\nquit\n")
	if err := s.Run(in); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "error:") {
		t.Fatal("expected an error line for an unknown command")
	}
}

func TestRunReallocPreservesID(t *testing.T) {
	var out bytes.Buffer
	s, err := New(allocator.Options{}, &out)
	if err != nil {
		t.Fatal(err)
	}

	in := strings.NewReader("malloc 0 16\nrealloc 0 64\nquit\n")
	if err := s.Run(in); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.ptrs[0]; !ok {
		t.Fatal("id 0 should still be live after realloc")
	}
	if s.sizes[0] != 64 {
		t.Fatalf("expected size 64, got %d", s.sizes[0])
	}
}

func TestRunResetClearsState(t *testing.T) {
	var out bytes.Buffer
	s, err := New(allocator.Options{}, &out)
	if err != nil {
		t.Fatal(err)
	}

	in := strings.NewReader("malloc 0 16\nreset\nprint\nquit\n")
	if err := s.Run(in); err != nil {
		t.Fatal(err)
	}

	if len(s.ptrs) != 0 {
		t.Fatal("reset should clear live ids")
	}
}
