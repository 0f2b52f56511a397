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
package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

// letters covers the Latin and Cyrillic scripts; nothing else is recognized as a name or place.
const letters = `\p{Latin}\p{Cyrillic}`

// ShapeMatcher is a purely structural acceptance test for one SemanticType.
type ShapeMatcher struct {
	re        *regexp.Regexp
	minDigits int
	maxDigits int
}

// Match reports whether value has the expected surface shape. Blank input never matches.
func (m ShapeMatcher) Match(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || m.re == nil {
		return false
	}
	if !m.re.MatchString(value) {
		return false
	}
	if m.minDigits == 0 && m.maxDigits == 0 {
		return true
	}
	digits := countDigits(value)
	return digits >= m.minDigits && (m.maxDigits == 0 || digits <= m.maxDigits)
}

// PatternLibrary maps each SemanticType to its ShapeMatcher. It is built once and only read afterwards.
type PatternLibrary struct {
	matchers map[SemanticType]ShapeMatcher
}

// NewPatternLibrary returns the default matchers. They are deliberately permissive:
// validators and corpora prune the false positives.
func NewPatternLibrary() *PatternLibrary {
	name := regexp.MustCompile(`(?i)^[` + letters + `-]+[` + letters + `' .-]*$`)
	place := regexp.MustCompile(`(?i)^[` + letters + `][` + letters + `' .-]*$`)

	return &PatternLibrary{
		matchers: map[SemanticType]ShapeMatcher{
			Email:     {re: regexp.MustCompile(`(?i)^[^@\s]+@[^@\s]+\.[^@\s]+$`)},
			Phone:     {re: regexp.MustCompile(`^\+?[\d\s().-]+$`), minDigits: 7, maxDigits: 15},
			Zip:       {re: regexp.MustCompile(`^\d{5}(-\d{4})?$`)},
			State:     {re: place},
			Country:   {re: place},
			City:      {re: place},
			Fullname:  {re: name},
			FirstName: {re: name},
			LastName:  {re: name},
			Address:   {re: regexp.MustCompile(`(?i)^\d+\s+[\p{L}\p{N}_]+`)},
			Numeric:   {re: regexp.MustCompile(`^\d+$`)},
		},
	}
}

// ShapeMatches reports whether value has the surface shape of t. Types without a matcher never match.
func (p *PatternLibrary) ShapeMatches(t SemanticType, value string) bool {
	m, ok := p.matchers[t]
	if !ok {
		return false
	}
	return m.Match(value)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
