// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package harness

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteGradescopeReport writes the `idx,trace_name,consistent,util,error_msg`
// CSV the reference driver's -G flag produces, util expressed as a
// percentage. Inconsistent traces get "-" in the util column, matching the
// reference's own placeholder.
func WriteGradescopeReport(w io.Writer, results []TraceResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"idx", "trace_name", "consistent", "util", "error_msg"}); err != nil {
		return err
	}

	for i, r := range results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}

		consistent := "0"
		util := "-"
		if r.Consistent {
			consistent = "1"
			util = strconv.FormatFloat(r.Util*100.0, 'f', -1, 64)
		}

		row := []string{strconv.Itoa(i), r.Name, consistent, util, errMsg}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
