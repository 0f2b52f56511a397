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
	"strings"

	"go.uber.org/zap"
)

// streetKeywords mark a value as an address when nothing else matched.
var streetKeywords = []string{"street", "ave", "road"}

// Score casts one vote per sampled value and returns the column's tally.
func (c *Classifier) Score(sample ColumnSample) *VoteTally {
	tally := NewVoteTally()
	for _, raw := range sample.values {
		t := c.scoreValue(raw)
		tally.Add(t)
		c.observer.ObserveVote(t)
	}
	return tally
}

// scoreValue walks scoringOrder and returns the first type whose shape and semantic checks pass.
func (c *Classifier) scoreValue(raw string) SemanticType {
	v := normalize(raw)

	for _, t := range scoringOrder {
		if !c.patterns.ShapeMatches(t, v) {
			continue
		}
		switch t {
		case Phone:
			if ok, err := c.phone.IsValidPhone(v, c.region); !ok {
				c.reject("phone", v, err)
				continue
			}
		case Email:
			if ok, err := c.email.IsValidEmail(v); !ok {
				c.reject("email", v, err)
				continue
			}
		case State:
			if _, ok := c.corpora.StateRegion(v); !ok {
				continue
			}
		case Country:
			if _, ok := c.corpora.CountryRegion(v); !ok {
				continue
			}
		case Fullname:
			if len(strings.Fields(v)) < 2 {
				continue
			}
		case FirstName:
			if !c.corpora.IsFirstName(v) {
				continue
			}
		case LastName:
			if !c.corpora.IsLastName(v) {
				continue
			}
		case City:
			if !c.corpora.LooksLikeCity(raw) {
				continue
			}
		}
		return t
	}

	switch {
	case c.patterns.ShapeMatches(Numeric, v):
		return Numeric
	case containsAny(v, streetKeywords):
		return Address
	default:
		return Unknown
	}
}

func (c *Classifier) reject(validator, value string, err error) {
	if err == nil {
		err = &ValidationRejection{Validator: validator, Value: value, Reason: "rejected"}
	}
	c.logger.Warn("Value rejected by validator",
		zap.String("validator", validator),
		zap.String("value", value),
		zap.Error(err),
	)
	c.observer.ObserveRejection(validator)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
