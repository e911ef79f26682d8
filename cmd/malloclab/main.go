// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command malloclab replays ASCII allocator traces through the allocator
// package, reports correctness/utilization/throughput, and can drop into
// an interactive debug shell.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cznic/malloclab/allocator"
	"github.com/cznic/malloclab/harness"
	"github.com/cznic/malloclab/heap"
	"github.com/cznic/malloclab/repl"
	"github.com/cznic/malloclab/trace"
)

// defaultTraceFiles mirrors the reference driver's built-in trace list,
// used whenever -f is not given.
var defaultTraceFiles = []string{
	"amptjp-bal.rep", "cccp-bal.rep", "cp-decl-bal.rep", "expr-bal.rep",
	"random-bal.rep", "random2-bal.rep", "binary-bal.rep", "binary2-bal.rep",
	"coalescing-bal.rep", "coalescing2-bal.rep",
	"realloc-bal.rep", "realloc2-bal.rep",
}

func main() {
	log.SetFlags(0)

	var (
		file        = flag.String("f", "", "use <file> as the single trace file")
		traceDir    = flag.String("t", "testdata/traces", "directory to find default traces")
		runLibc     = flag.Bool("l", false, "also benchmark Go's own make([]byte, n)/GC as a libc-malloc stand-in")
		verbose     = flag.Bool("v", false, "print per-trace performance breakdowns")
		veryVerbose = flag.Bool("V", false, "print additional debug info")
		gradescope  = flag.Bool("G", false, "generate ./gradescope-report.txt")
		startRepl   = flag.Bool("r", false, "open the malloc REPL")
		alignOnly   = flag.Bool("a", false, "run the validity pass only, skip utilization/speed passes")
	)
	flag.Usage = usage
	flag.Parse()

	if *startRepl {
		s, err := repl.New(allocator.Options{}, os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
		if err := s.Run(os.Stdin); err != nil {
			log.Fatal(err)
		}
		return
	}

	var paths []string
	if *file != "" {
		paths = []string{*file}
	} else {
		for _, name := range defaultTraceFiles {
			paths = append(paths, filepath.Join(*traceDir, name))
		}
	}

	os.Exit(run(paths, *runLibc, *verbose, *veryVerbose, *gradescope, *alignOnly))
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: malloclab [-hvVlGra] [-f <file>] [-t <dir>]")
	fmt.Fprintln(os.Stderr, "Options")
	fmt.Fprintln(os.Stderr, "\t-f <file>  Use <file> as the trace file.")
	fmt.Fprintln(os.Stderr, "\t-r         Open the malloc REPL.")
	fmt.Fprintln(os.Stderr, "\t-G         Generates a ./gradescope-report.txt file.")
	fmt.Fprintln(os.Stderr, "\t-l         Also benchmark a libc-malloc stand-in.")
	fmt.Fprintln(os.Stderr, "\t-t <dir>   Directory to find default traces.")
	fmt.Fprintln(os.Stderr, "\t-v         Print per-trace performance breakdowns.")
	fmt.Fprintln(os.Stderr, "\t-V         Print additional debug info.")
	fmt.Fprintln(os.Stderr, "\t-a         Run the validity pass only.")
	flag.PrintDefaults()
}

func run(paths []string, runLibc, verbose, veryVerbose, gradescope, alignOnly bool) int {
	var results []harness.TraceResult
	var libcResults []harness.TraceResult

	for _, p := range paths {
		tr, err := trace.Load(p)
		if err != nil {
			log.Println("fatal:", err)
			return 1
		}

		if veryVerbose {
			fmt.Printf("Reading tracefile: %s\n", p)
		}

		if alignOnly {
			result := checkAlignmentOnly(tr)
			results = append(results, result)
			continue
		}

		result := harness.Run(tr, allocator.Options{}, harness.Options{})
		results = append(results, result)

		if runLibc {
			libcResults = append(libcResults, EvalLibc(tr))
		}
	}

	if verbose {
		printResults("mm malloc", results)
		if runLibc {
			printResults("libc malloc", libcResults)
		}
	}

	if gradescope {
		f, err := os.Create("gradescope-report.txt")
		if err != nil {
			log.Println("fatal:", err)
			return 1
		}
		defer f.Close()

		if err := harness.WriteGradescopeReport(f, results); err != nil {
			log.Println("fatal:", err)
			return 1
		}
	}

	for _, r := range results {
		if !r.Consistent {
			return 1
		}
	}
	return 0
}

func checkAlignmentOnly(tr *trace.Trace) harness.TraceResult {
	result := harness.TraceResult{Name: tr.Name, Consistent: true}
	if err := harness.ValidityPass(tr, mustInit()); err != nil {
		result.Consistent = false
		result.Err = err
	}
	return result
}

func mustInit() *allocator.Allocator {
	a := allocator.New(heap.New())
	if err := a.Init(); err != nil {
		log.Fatal(err)
	}
	return a
}

func printResults(label string, results []harness.TraceResult) {
	fmt.Printf("\nResults for %s:\n", label)
	for i, r := range results {
		status := "no"
		if r.Consistent {
			status = "yes"
		}
		fmt.Printf(" %-2d %-24s consistent %-4s util %5.1f%%\n", i, r.Name, status, r.Util*100)
	}

	idx := harness.PerfIndex(results)
	fmt.Printf("Performance index: %.1f\n", idx)
}
