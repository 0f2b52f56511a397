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

// Package table reads and writes the header-less delimited contact files the classifier works on.
package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OriginalFilePrefix starts the first line of every relabeled file.
const OriginalFilePrefix = "Original File: "

// Options controls how a table is parsed or written.
type Options struct {
	Delimiter rune
	HasHeader bool
}

// Table is a parsed delimited file. Rows may be ragged; missing cells read as empty.
type Table struct {
	Name   string // base name of the source file
	Header []string
	Rows   [][]string
}

// Read parses the file at path.
func Read(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Parse reads a delimited table from r. Quotes are handled leniently.
func Parse(r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = delimiterOrDefault(opts.Delimiter, '|')
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	t := &Table{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if opts.HasHeader && t.Header == nil {
			t.Header = record
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// ColumnCount returns the width of the widest row or header.
func (t *Table) ColumnCount() int {
	n := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Column returns the raw values of column i in row order, padding short rows with "".
func (t *Table) Column(i int) []string {
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i >= 0 && i < len(row) {
			values[r] = row[i]
		}
	}
	return values
}

// Columns returns every column, as Column would.
func (t *Table) Columns() [][]string {
	cols := make([][]string, t.ColumnCount())
	for i := range cols {
		cols[i] = t.Column(i)
	}
	return cols
}

// Write emits the "Original File:" line when the table has a name, then the header and rows.
func (t *Table) Write(w io.Writer, opts Options) error {
	if t.Name != "" {
		if _, err := io.WriteString(w, OriginalFilePrefix+t.Name+"\n"); err != nil {
			return err
		}
	}
	writer := csv.NewWriter(w)
	writer.Comma = delimiterOrDefault(opts.Delimiter, ',')
	if len(t.Header) > 0 {
		if err := writer.Write(t.Header); err != nil {
			return err
		}
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteFile writes the table to path, replacing any existing file.
func (t *Table) WriteFile(path string, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := t.Write(f, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func delimiterOrDefault(r, def rune) rune {
	if r == 0 {
		return def
	}
	return r
}
