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
	"fmt"
	"strings"
)

// SemanticType is the inferred meaning of a column.
type SemanticType string

const (
	Fullname  SemanticType = "Fullname"
	FirstName SemanticType = "FirstName"
	LastName  SemanticType = "LastName"
	Zip       SemanticType = "Zip"
	City      SemanticType = "City"
	State     SemanticType = "State"
	Address   SemanticType = "Address"
	Phone     SemanticType = "Phone"
	Country   SemanticType = "Country"
	Email     SemanticType = "Email"
	Numeric   SemanticType = "Numeric"
	Unknown   SemanticType = "Unknown"
)

// AllTypes lists every SemanticType in declaration order.
var AllTypes = []SemanticType{
	Fullname, FirstName, LastName, Zip, City, State, Address, Phone, Country, Email, Numeric, Unknown,
}

// scoringOrder is the order in which the scorer tries candidate types for a value.
// The first type whose shape and semantic checks both pass receives the vote.
var scoringOrder = []SemanticType{
	Email, Phone, Zip, State, Country, Fullname, FirstName, LastName, City, Address,
}

func (t SemanticType) String() string {
	return string(t)
}

// ParseSemanticType resolves a label case-insensitively. "first name" and "first_name" are
// accepted for FirstName, and likewise for LastName.
func ParseSemanticType(s string) (SemanticType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	for _, t := range AllTypes {
		if strings.ToLower(string(t)) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown semantic type: %q", s)
}

// ColumnSample is the set of non-empty raw values drawn from one column.
// It is never mutated after construction.
type ColumnSample struct {
	values []string
}

// NewColumnSample copies the non-blank values out of raw. A limit of zero or less keeps every value.
func NewColumnSample(raw []string, limit int) ColumnSample {
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if strings.TrimSpace(v) == "" {
			continue
		}
		values = append(values, v)
		if limit > 0 && len(values) == limit {
			break
		}
	}
	return ColumnSample{values: values}
}

// Len returns the number of sampled values.
func (s ColumnSample) Len() int {
	return len(s.values)
}

// Values returns a copy of the sampled values in column order.
func (s ColumnSample) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// VoteTally counts votes per SemanticType and remembers the order in which each type
// received its first vote.
type VoteTally struct {
	order  []SemanticType
	counts map[SemanticType]int
}

// NewVoteTally returns an empty tally.
func NewVoteTally() *VoteTally {
	return &VoteTally{counts: make(map[SemanticType]int)}
}

// Add records one vote for t.
func (v *VoteTally) Add(t SemanticType) {
	if _, seen := v.counts[t]; !seen {
		v.order = append(v.order, t)
	}
	v.counts[t]++
}

// Count returns the votes for t; a type without an entry has zero votes.
func (v *VoteTally) Count(t SemanticType) int {
	return v.counts[t]
}

// Len returns the number of distinct types that received at least one vote.
func (v *VoteTally) Len() int {
	return len(v.order)
}

// Types returns the voted types in first-vote order.
func (v *VoteTally) Types() []SemanticType {
	out := make([]SemanticType, len(v.order))
	copy(out, v.order)
	return out
}

// Leaders returns the maximum vote count and every type that reached it, in first-vote order.
func (v *VoteTally) Leaders() (int, []SemanticType) {
	top := 0
	for _, t := range v.order {
		if v.counts[t] > top {
			top = v.counts[t]
		}
	}
	var leaders []SemanticType
	for _, t := range v.order {
		if v.counts[t] == top {
			leaders = append(leaders, t)
		}
	}
	return top, leaders
}

func (v *VoteTally) String() string {
	parts := make([]string, len(v.order))
	for i, t := range v.order {
		parts[i] = fmt.Sprintf("%s=%d", t, v.counts[t])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
