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
// Package fixture generates labelled contact tables and scores classifications against them.
package fixture

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/table"
)

// DefaultColumns is the column layout used when Options.Columns is empty.
var DefaultColumns = []classifier.SemanticType{
	classifier.Fullname, classifier.Email, classifier.Phone, classifier.Address,
	classifier.City, classifier.State, classifier.Zip, classifier.Country,
}

var generators = map[classifier.SemanticType]func(*gofakeit.Faker) string{
	classifier.Fullname:  func(f *gofakeit.Faker) string { return f.FirstName() + " " + f.LastName() },
	classifier.FirstName: func(f *gofakeit.Faker) string { return f.FirstName() },
	classifier.LastName:  func(f *gofakeit.Faker) string { return f.LastName() },
	classifier.Zip:       func(f *gofakeit.Faker) string { return f.Zip() },
	classifier.City:      func(f *gofakeit.Faker) string { return f.RandomString(cities) },
	classifier.State:     func(f *gofakeit.Faker) string { return f.StateAbr() },
	classifier.Address:   func(f *gofakeit.Faker) string { return f.Street() },
	classifier.Phone:     func(f *gofakeit.Faker) string { return f.Numerify(f.RandomString(phoneFormats)) },
	classifier.Country:   func(f *gofakeit.Faker) string { return f.RandomString(countries) },
	classifier.Email:     func(f *gofakeit.Faker) string { return f.Email() },
	classifier.Numeric:   func(f *gofakeit.Faker) string { return strconv.Itoa(f.Number(1, 99999)) },
}

// Phone numbers stay inside one assigned exchange so every generated number is dialable.
var phoneFormats = []string{"(650) 253-####", "650-253-####", "+1 650 253 ####"}

// Single-word cities; multi-word names read as Fullname.
var cities = []string{
	"Boston", "Seattle", "Denver", "Chicago", "Phoenix", "Atlanta", "Portland",
	"Pittsburgh", "Nashville", "Memphis", "Omaha", "Tucson", "Springfield",
}

var countries = []string{
	"USA", "United States", "Canada", "United Kingdom", "Germany", "France",
	"Australia", "Mexico", "Russia", "Ukraine",
}

// Options controls Generate.
type Options struct {
	Rows    int
	Columns []classifier.SemanticType
	Seed    uint64  // same seed, same fixture; zero picks a random seed
	Shuffle bool    // permute the column order
	Blanks  float64 // probability that a cell is left empty
}

// Fixture is a generated table together with the true type of each column.
type Fixture struct {
	Rows     [][]string
	Expected []classifier.SemanticType
}

// Generate builds a fixture. Unknown cannot be generated.
func Generate(opts Options) (*Fixture, error) {
	if opts.Rows <= 0 {
		return nil, fmt.Errorf("rows must be positive: %d", opts.Rows)
	}
	if opts.Blanks < 0 || opts.Blanks >= 1 {
		return nil, fmt.Errorf("blank ratio must be in [0, 1): %v", opts.Blanks)
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	columns = append([]classifier.SemanticType(nil), columns...)
	for _, c := range columns {
		if _, ok := generators[c]; !ok {
			return nil, fmt.Errorf("cannot generate values for %s", c)
		}
	}

	f := gofakeit.New(opts.Seed)
	if opts.Shuffle {
		f.ShuffleAnySlice(columns)
	}

	rows := make([][]string, opts.Rows)
	for r := range rows {
		row := make([]string, len(columns))
		for c, t := range columns {
			if opts.Blanks > 0 && f.Float64() < opts.Blanks {
				continue
			}
			row[c] = generators[t](f)
		}
		rows[r] = row
	}
	return &Fixture{Rows: rows, Expected: columns}, nil
}

// Table returns the fixture rows as an unnamed, header-less table.
func (fx *Fixture) Table() *table.Table {
	return &table.Table{Rows: fx.Rows}
}

// WriteTable writes the rows to path with the given delimiter.
func (fx *Fixture) WriteTable(path string, delimiter rune) error {
	return fx.Table().WriteFile(path, table.Options{Delimiter: delimiter})
}

// WriteExpected writes one label per line, in column order.
func WriteExpected(path string, labels []classifier.SemanticType) error {
	var b strings.Builder
	for _, l := range labels {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// ReadExpected reads a labels file. Blank lines and lines starting with # are skipped.
func ReadExpected(path string) ([]classifier.SemanticType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open expected labels %s: %w", path, err)
	}
	defer f.Close()

	var labels []classifier.SemanticType
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := classifier.ParseSemanticType(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		labels = append(labels, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expected labels %s: %w", path, err)
	}
	return labels, nil
}
