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
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/fixture"
)

var compareCmd = &cobra.Command{
	Use:     "compare <table-file> <labels-file>",
	Short:   "Score the classification of a table against its expected column types",
	Example: `colclass compare ./fixture.txt ./fixture.txt.labels --min-accuracy 0.9`,
	Args:    cobra.ExactArgs(2),
	RunE:    runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	minAccuracy, _ := cmd.Flags().GetFloat64("min-accuracy")

	expected, err := fixture.ReadExpected(args[1])
	if err != nil {
		return err
	}

	svc, err := newService(nil)
	if err != nil {
		return err
	}
	tbl, err := svc.ReadTable(args[0])
	if err != nil {
		return err
	}
	results, err := svc.ClassifyTable(cmd.Context(), tbl)
	if err != nil {
		return fmt.Errorf("classification of %s failed: %w", args[0], err)
	}

	actual := make([]classifier.SemanticType, len(results))
	for i, r := range results {
		actual[i] = r.Type()
	}
	report := fixture.Compare(expected, actual)
	fmt.Fprint(cmd.OutOrStdout(), report.String())

	appLogger.Info("Comparison completed",
		zap.Int("columns", report.Columns),
		zap.Int("matched", report.Matched),
		zap.Float64("accuracy", report.Accuracy()))

	if report.Accuracy() < minAccuracy {
		return fmt.Errorf("accuracy %.1f%% is below the minimum of %.1f%%", report.Accuracy()*100, minAccuracy*100)
	}
	return nil
}

func init() {
	compareCmd.Flags().Float64("min-accuracy", 1.0, "Fail when the fraction of correctly typed columns is lower")
}
