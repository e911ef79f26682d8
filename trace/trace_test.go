// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trace

import (
	"strings"
	"testing"
)

const sample = `1024
2
5
1
a 0 16
a 1 32
r 0 64
f 1
f 0
`

func TestReadWellFormed(t *testing.T) {
	tr, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}

	if g, e := tr.SuggestedHeap, 1024; g != e {
		t.Fatal(g, e)
	}

	if g, e := tr.NumIDs, 2; g != e {
		t.Fatal(g, e)
	}

	if g, e := tr.NumOps, 5; g != e {
		t.Fatal(g, e)
	}

	if g, e := len(tr.Ops), 5; g != e {
		t.Fatal(g, e)
	}

	want := []Op{
		{Type: Alloc, ID: 0, Size: 16},
		{Type: Alloc, ID: 1, Size: 32},
		{Type: Realloc, ID: 0, Size: 64},
		{Type: Free, ID: 1},
		{Type: Free, ID: 0},
	}
	for i, op := range want {
		if g := tr.Ops[i]; g != op {
			t.Fatalf("op %d: got %+v, want %+v", i, g, op)
		}
	}
}

func TestReadTruncatedHeader(t *testing.T) {
	if _, err := Read(strings.NewReader("1024\n3\n")); err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestReadBogusOpType(t *testing.T) {
	bad := "1024\n1\n1\n1\nx 0 16\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for an unrecognized op type")
	}
}

func TestReadOpCountMismatch(t *testing.T) {
	bad := "1024\n1\n2\n1\na 0 16\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error when num_ops doesn't match the body")
	}
}

func TestReadIDCountMismatch(t *testing.T) {
	// header claims 3 ids but only id 0 is ever referenced
	bad := "1024\n3\n1\n1\na 0 16\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error when num_ids doesn't match the highest referenced id")
	}
}

func TestReadFreeWithExtraField(t *testing.T) {
	bad := "1024\n1\n1\n1\nf 0 16\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error: free takes only an id")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/a/trace.rep"); err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}
