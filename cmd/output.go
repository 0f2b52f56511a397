/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/pipeline"
)

// writeResults prints one row per column. explain adds the vote tally.
func writeResults(w io.Writer, results []pipeline.ColumnResult, explain bool) error {
	withDataType := false
	for _, r := range results {
		if r.DataType != "" {
			withDataType = true
			break
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "TABLE\tCOLUMN\t")
	if withDataType {
		fmt.Fprint(tw, "DATA TYPE\t")
	}
	fmt.Fprint(tw, "TYPE\tTIE RULE")
	if explain {
		fmt.Fprint(tw, "\tVOTES")
	}
	fmt.Fprintln(tw)

	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t", r.Table, r.Column)
		if withDataType {
			fmt.Fprintf(tw, "%s\t", r.DataType)
		}
		fmt.Fprintf(tw, "%s\t%s", r.Type(), r.Decision.TieRule)
		if explain {
			fmt.Fprintf(tw, "\t%s", r.Decision.Tally)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func writeAssignments(w io.Writer, report *pipeline.FileReport) {
	fmt.Fprintf(w, "%s -> %s\n", report.Input, report.Output)
	for _, a := range report.Assignments {
		if a.Kept() {
			continue
		}
		fmt.Fprintf(w, "  dropped %s (%s): %s\n", a.Column, a.Type, a.Dropped)
	}
}
