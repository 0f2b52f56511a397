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
package pipeline

import (
	"fmt"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
)

// ColumnResult is the classification of a single column.
type ColumnResult struct {
	Table    string // Table or file name
	Column   string // Header name, database column name, or column_N
	Index    int    // Zero-based position in the source
	DataType string // Declared type; empty for files
	Decision classifier.Decision
}

// Type returns the inferred semantic type.
func (r ColumnResult) Type() classifier.SemanticType {
	return r.Decision.Type
}

// Assignment records what Relabel did with a source column.
type Assignment struct {
	Index    int
	Column   string
	Type     classifier.SemanticType
	Position int    // output column, -1 when dropped
	Dropped  string // reason, empty when kept
}

// Kept reports whether the column made it into the relabeled table.
func (a Assignment) Kept() bool {
	return a.Position >= 0
}

// FileReport summarizes one ProcessFile run.
type FileReport struct {
	Input       string
	Output      string
	Results     []ColumnResult
	Assignments []Assignment
}

func columnName(header []string, i int) string {
	if i < len(header) && header[i] != "" {
		return header[i]
	}
	return fmt.Sprintf("column_%d", i+1)
}
