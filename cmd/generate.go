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
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/fixture"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/utils"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic contact table and its expected column types",
	Long: `Writes a header-less delimited file of fake contact data together with a labels file that
lists the true type of each column, one per line. Use the pair with the compare command.`,
	Example: `colclass generate --rows 500 --seed 7 --shuffle --out_file ./fixture.txt`,
	RunE:    runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	outputFile, _ := flags.GetString("out_file")
	expectedFile, _ := flags.GetString("expected")
	rows, _ := flags.GetInt("rows")
	seed, _ := flags.GetUint64("seed")
	shuffle, _ := flags.GetBool("shuffle")
	blanks, _ := flags.GetFloat64("blanks")
	columnsFlag, _ := flags.GetString("columns")

	if expectedFile == "" {
		expectedFile = outputFile + ".labels"
	}

	labels, err := utils.ParseOrder(columnsFlag)
	if err != nil {
		return fmt.Errorf("invalid --columns: %w", err)
	}
	columns := make([]classifier.SemanticType, len(labels))
	for i, l := range labels {
		columns[i] = classifier.SemanticType(l)
	}

	fx, err := fixture.Generate(fixture.Options{
		Rows:    rows,
		Columns: columns,
		Seed:    seed,
		Shuffle: shuffle,
		Blanks:  blanks,
	})
	if err != nil {
		return err
	}

	delim, _ := utf8.DecodeRuneInString(config.Current().Table.Delimiter)
	if err := fx.WriteTable(outputFile, delim); err != nil {
		return fmt.Errorf("failed to write fixture table: %w", err)
	}
	if err := fixture.WriteExpected(expectedFile, fx.Expected); err != nil {
		return fmt.Errorf("failed to write expected labels: %w", err)
	}

	appLogger.Info("Fixture generated",
		zap.String("table", outputFile),
		zap.String("expected", expectedFile),
		zap.Int("rows", rows),
		zap.Int("columns", len(fx.Expected)))
	fmt.Fprintf(cmd.OutOrStdout(), "Fixture written to: %s (labels: %s)\n", outputFile, expectedFile)
	return nil
}

func init() {
	generateCmd.Flags().StringP("out_file", "o", "", "File to write the generated table to")
	generateCmd.Flags().String("expected", "", "File to write the expected labels to (defaults to <out_file>.labels)")
	generateCmd.Flags().Int("rows", 100, "Number of rows")
	generateCmd.Flags().Uint64("seed", 0, "Random seed (0 = random)")
	generateCmd.Flags().Bool("shuffle", false, "Shuffle the column order")
	generateCmd.Flags().Float64("blanks", 0, "Probability that a cell is left empty")
	generateCmd.Flags().String("columns", "", "Comma-separated column types (defaults to Fullname,Email,Phone,Address,City,State,Zip,Country)")
	_ = generateCmd.MarkFlagRequired("out_file")
}
