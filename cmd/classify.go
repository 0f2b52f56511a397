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
)

var classifyCmd = &cobra.Command{
	Use:     "classify <file>...",
	Short:   "Print the inferred type of every column of delimited files",
	Long:    `Reads each file, samples every column, and prints the semantic type chosen for it together with the tie rule that decided it, if any.`,
	Example: `colclass classify ./leads.txt --delimiter '|' --sample-size 500 --explain`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	svc, err := newService(nil)
	if err != nil {
		return err
	}
	explain, _ := cmd.Flags().GetBool("explain")
	ctx := cmd.Context()

	for _, path := range args {
		appLogger.Info("Classifying file", zap.String("file", path))
		tbl, err := svc.ReadTable(path)
		if err != nil {
			return err
		}
		results, err := svc.ClassifyTable(ctx, tbl)
		if err != nil {
			return fmt.Errorf("classification of %s failed: %w", path, err)
		}
		if err := writeResults(cmd.OutOrStdout(), results, explain); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	classifyCmd.Flags().Bool("explain", false, "Also print the vote tally of each column")
}
