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

// Package metrics counts classification events in a private Prometheus registry and
// writes them in the text exposition format.
package metrics

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
)

// Prometheus metric names.
const (
	MetricVotesTotal      = "colclass_votes_total"
	MetricRejectionsTotal = "colclass_validator_rejections_total"
	MetricTiesTotal       = "colclass_ties_total"
	MetricColumnsTotal    = "colclass_columns_total"
)

// Recorder implements classifier.Observer. Safe for concurrent use.
type Recorder struct {
	registry   *prometheus.Registry
	votes      *prometheus.CounterVec
	rejections *prometheus.CounterVec
	ties       *prometheus.CounterVec
	columns    *prometheus.CounterVec
}

var _ classifier.Observer = (*Recorder)(nil)

// NewRecorder registers the classifier counters in a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricVotesTotal,
			Help: "Votes cast by sampled values, by semantic type.",
		}, []string{"type"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRejectionsTotal,
			Help: "Values whose shape matched but which a validator rejected.",
		}, []string{"validator"}),
		ties: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricTiesTotal,
			Help: "Tied tallies, by the rule that resolved them.",
		}, []string{"rule"}),
		columns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricColumnsTotal,
			Help: "Classified columns, by resulting semantic type.",
		}, []string{"type"}),
	}
	r.registry.MustRegister(r.votes, r.rejections, r.ties, r.columns)
	return r
}

func (r *Recorder) ObserveVote(t classifier.SemanticType) {
	r.votes.WithLabelValues(t.String()).Inc()
}

func (r *Recorder) ObserveRejection(validator string) {
	r.rejections.WithLabelValues(validator).Inc()
}

func (r *Recorder) ObserveTie(rule string) {
	r.ties.WithLabelValues(rule).Inc()
}

func (r *Recorder) ObserveResult(t classifier.SemanticType) {
	r.columns.WithLabelValues(t.String()).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteText writes every gathered family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes the text exposition to path, replacing any existing file.
func (r *Recorder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file %s: %w", path, err)
	}
	if err := r.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
