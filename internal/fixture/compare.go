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
package fixture

import (
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
)

// Mismatch is a column whose classification differs from its label. A missing side is "".
type Mismatch struct {
	Column   int
	Expected classifier.SemanticType
	Actual   classifier.SemanticType
}

// Report is the outcome of Compare.
type Report struct {
	Columns    int
	Matched    int
	Mismatches []Mismatch
}

// Compare scores actual against expected column by column.
func Compare(expected, actual []classifier.SemanticType) Report {
	r := Report{Columns: max(len(expected), len(actual))}
	for i := 0; i < r.Columns; i++ {
		var want, got classifier.SemanticType
		if i < len(expected) {
			want = expected[i]
		}
		if i < len(actual) {
			got = actual[i]
		}
		if want == got {
			r.Matched++
			continue
		}
		r.Mismatches = append(r.Mismatches, Mismatch{Column: i, Expected: want, Actual: got})
	}
	return r
}

// Accuracy is the matched fraction; an empty comparison scores 1.
func (r Report) Accuracy() float64 {
	if r.Columns == 0 {
		return 1
	}
	return float64(r.Matched) / float64(r.Columns)
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "matched %d/%d columns (%.1f%%)\n", r.Matched, r.Columns, r.Accuracy()*100)
	for _, m := range r.Mismatches {
		fmt.Fprintf(&b, "  column %d: expected %s, got %s\n", m.Column+1, orMissing(m.Expected), orMissing(m.Actual))
	}
	return b.String()
}

func orMissing(t classifier.SemanticType) string {
	if t == "" {
		return "(missing)"
	}
	return t.String()
}
