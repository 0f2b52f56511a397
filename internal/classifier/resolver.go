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
	"go.uber.org/zap"
)

// RuleInsertionOrder names the fallback used when no tie rule applies.
const RuleInsertionOrder = "insertion-order"

// tieRule is one entry of the ordered tie-break policy. resolve may decline by returning false,
// in which case the next rule is tried.
type tieRule struct {
	name    string
	between [2]SemanticType
	resolve func(c *Classifier, sample ColumnSample) (SemanticType, bool)
}

// tieRules is evaluated top to bottom; the order changes results and must be preserved.
var tieRules = []tieRule{
	{name: "email-vs-phone", between: [2]SemanticType{Email, Phone}, resolve: resolveEmailPhone},
	{name: "city-vs-unknown", between: [2]SemanticType{City, Unknown}, resolve: resolveCityUnknown},
	{name: "first-vs-last-name", between: [2]SemanticType{FirstName, LastName}, resolve: resolveFirstLast},
}

// Resolve picks exactly one winner from types tied for the top vote count.
// It returns the winner and the name of the rule that decided it.
func (c *Classifier) Resolve(tied []SemanticType, sample ColumnSample) (SemanticType, string) {
	if len(tied) == 0 {
		return Unknown, RuleInsertionOrder
	}
	if len(tied) == 1 {
		return tied[0], ""
	}

	for _, rule := range tieRules {
		if !contains(tied, rule.between[0]) || !contains(tied, rule.between[1]) {
			continue
		}
		if winner, ok := rule.resolve(c, sample); ok {
			c.logger.Debug("Tie resolved",
				zap.String("rule", rule.name),
				zap.Stringers("tied", tied),
				zap.Stringer("winner", winner),
			)
			c.observer.ObserveTie(rule.name)
			return winner, rule.name
		}
	}

	c.logger.Debug("Tie resolved",
		zap.String("rule", RuleInsertionOrder),
		zap.Stringers("tied", tied),
		zap.Stringer("winner", tied[0]),
	)
	c.observer.ObserveTie(RuleInsertionOrder)
	return tied[0], RuleInsertionOrder
}

// resolveEmailPhone recounts structural matches only; validator verdicts are ignored here.
// Equal counts fall through to Phone.
func resolveEmailPhone(c *Classifier, sample ColumnSample) (SemanticType, bool) {
	emails, phones := 0, 0
	for _, raw := range sample.values {
		v := normalize(raw)
		if c.patterns.ShapeMatches(Email, v) {
			emails++
		}
		if c.patterns.ShapeMatches(Phone, v) {
			phones++
		}
	}
	if emails > phones {
		return Email, true
	}
	return Phone, true
}

// resolveCityUnknown declines unless some value is an exact corpus city.
func resolveCityUnknown(c *Classifier, sample ColumnSample) (SemanticType, bool) {
	for _, raw := range sample.values {
		if c.corpora.IsCity(raw) {
			return City, true
		}
	}
	return "", false
}

// resolveFirstLast recounts corpus hits; equal counts fall through to LastName.
func resolveFirstLast(c *Classifier, sample ColumnSample) (SemanticType, bool) {
	firsts, lasts := 0, 0
	for _, raw := range sample.values {
		if c.corpora.IsFirstName(raw) {
			firsts++
		}
		if c.corpora.IsLastName(raw) {
			lasts++
		}
	}
	if firsts > lasts {
		return FirstName, true
	}
	return LastName, true
}

func contains(types []SemanticType, t SemanticType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
