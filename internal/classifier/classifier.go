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

// Package classifier infers the semantic type of a table column by letting every sampled
// value vote for one candidate type and breaking ties with a fixed, ordered rule list.
package classifier

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRegion is the region used to parse phone numbers written in national format.
const DefaultRegion = "US"

// Config holds the tunables of a Classifier.
type Config struct {
	DefaultRegion string // region for national-format phone numbers
	SampleSize    int    // values sampled per column; 0 keeps every value
	Workers       int    // columns classified in parallel; 0 uses GOMAXPROCS
}

// Classifier is immutable after New and safe for concurrent use.
type Classifier struct {
	patterns   *PatternLibrary
	corpora    *ReferenceCorpora
	phone      PhoneValidator
	email      EmailValidator
	region     string
	sampleSize int
	workers    int
	logger     *zap.Logger
	observer   Observer
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger that receives validator rejections and tie decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers o to receive votes, rejections, ties and results.
func WithObserver(o Observer) Option {
	return func(c *Classifier) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithPhoneValidator replaces the libphonenumber-backed phone validator.
func WithPhoneValidator(v PhoneValidator) Option {
	return func(c *Classifier) { c.phone = v }
}

// WithEmailValidator replaces the syntax and public-suffix email validator.
func WithEmailValidator(v EmailValidator) Option {
	return func(c *Classifier) { c.email = v }
}

// WithCorpora replaces the built-in name, city and region dictionaries.
func WithCorpora(corpora *ReferenceCorpora) Option {
	return func(c *Classifier) { c.corpora = corpora }
}

// WithPatternLibrary replaces the default shape matchers.
func WithPatternLibrary(p *PatternLibrary) Option {
	return func(c *Classifier) { c.patterns = p }
}

// New builds a Classifier with the default pattern library, corpora and validators
// unless options replace them.
func New(cfg Config, opts ...Option) *Classifier {
	c := &Classifier{
		region:     cfg.DefaultRegion,
		sampleSize: cfg.SampleSize,
		workers:    cfg.Workers,
		logger:     zap.NewNop(),
		observer:   nopObserver{},
	}
	if c.region == "" {
		c.region = DefaultRegion
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.patterns == nil {
		c.patterns = NewPatternLibrary()
	}
	if c.corpora == nil {
		c.corpora = NewReferenceCorpora()
	}
	if c.phone == nil {
		c.phone = LibPhoneValidator{}
	}
	if c.email == nil {
		c.email = NewSyntaxEmailValidator()
	}
	return c
}

// Decision explains how a column's type was chosen.
type Decision struct {
	Type    SemanticType
	Tally   *VoteTally
	TieRule string // empty unless two or more types shared the top count
}

// Classify returns the semantic type of sample. It never fails; the worst outcome is Unknown.
func (c *Classifier) Classify(sample ColumnSample) SemanticType {
	return c.Explain(sample).Type
}

// Explain classifies sample and returns the tally and tie rule behind the result.
func (c *Classifier) Explain(sample ColumnSample) Decision {
	d := c.decide(sample)
	c.observer.ObserveResult(d.Type)
	return d
}

func (c *Classifier) decide(sample ColumnSample) Decision {
	if sample.Len() == 0 {
		return Decision{Type: Unknown, Tally: NewVoteTally()}
	}

	tally := c.Score(sample)
	if tally.Len() == 0 {
		return Decision{Type: Unknown, Tally: tally}
	}

	_, leaders := tally.Leaders()
	if len(leaders) == 1 {
		return Decision{Type: leaders[0], Tally: tally}
	}

	winner, rule := c.Resolve(leaders, sample)
	return Decision{Type: winner, Tally: tally, TieRule: rule}
}

// ClassifyColumns samples and classifies each column concurrently. Results keep column order.
func (c *Classifier) ClassifyColumns(ctx context.Context, columns [][]string) ([]Decision, error) {
	results := make([]Decision, len(columns))
	if len(columns) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(c.workers, len(columns)))

	for i, col := range columns {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Each goroutine owns index i, so no lock is needed.
			results[i] = c.Explain(NewColumnSample(col, c.sampleSize))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SampleSize returns the per-column sample cap; 0 means every value.
func (c *Classifier) SampleSize() int {
	return c.sampleSize
}

// Region returns the default phone region.
func (c *Classifier) Region() string {
	return c.region
}
