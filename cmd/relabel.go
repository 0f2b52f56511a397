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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/utils"
)

var relabelCmd = &cobra.Command{
	Use:   "relabel <file>...",
	Short: "Rewrite delimited files with a typed header row",
	Long: `Classifies every column of each file and writes a copy whose first line names the source file,
followed by a header row of semantic types in --order. When two columns receive the same type the
first one is kept. Columns whose type is not listed in --order are dropped.`,
	Example: `colclass relabel ./leads.txt --order "Fullname,Email,Phone" --out_file ./leads.csv`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRelabel,
}

func runRelabel(cmd *cobra.Command, args []string) error {
	outputFile := cmd.Flag("out_file").Value.String()
	if outputFile != "" && len(args) > 1 {
		return fmt.Errorf("--out_file can only be used with a single input file")
	}
	assumeYes, _ := cmd.Flags().GetBool("yes")

	svc, err := newService(nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	for _, path := range args {
		target := outputFile
		if target == "" {
			target = utils.GetDefaultOutputFilePath(path)
		}
		if _, statErr := os.Stat(target); statErr == nil && !assumeYes {
			question := fmt.Sprintf("%s already exists. Overwrite?", target)
			if !utils.ConfirmAction(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
				appLogger.Info("Relabel skipped by user", zap.String("file", path))
				continue
			}
		} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return fmt.Errorf("failed to check output file: %w", statErr)
		}

		report, err := svc.ProcessFile(ctx, path, target)
		if err != nil {
			return fmt.Errorf("relabel of %s failed: %w", path, err)
		}
		writeAssignments(cmd.OutOrStdout(), report)
	}

	appLogger.Info("Relabel operation completed", zap.Int("files", len(args)))
	return nil
}

func init() {
	relabelCmd.Flags().StringP("out_file", "o", "", "Output file (single input only; defaults to processed_<name> next to the input)")
	relabelCmd.Flags().BoolP("yes", "y", false, "Overwrite existing output files without asking")
}
